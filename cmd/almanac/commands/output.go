package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/almanac/am"
	"github.com/teranos/almanac/display"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/pipeline"
	"github.com/teranos/almanac/store"
)

const shortIDLength = 8

func wantJSON(cmd *cobra.Command) bool {
	return display.ShouldOutputJSON(cmd)
}

// printRuns writes runs as JSON or as a table.
func printRuns(w io.Writer, asJSON bool, runs []*store.Run) error {
	if asJSON {
		return display.OutputJSON(w, runs)
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status = fmt.Sprintf("%s: %s", r.Status, firstLine(r.Error))
		}
		rows = append(rows, []string{
			r.Strategy,
			formatValue(r.Value),
			strconv.FormatUint(r.Candidates, 10),
			fmt.Sprintf("%dms", r.DurationMS),
			shortID(r.ID),
			status,
		})
	}
	return display.Table(w, []string{"STRATEGY", "VALUE", "CANDIDATES", "DURATION", "RUN", "STATUS"}, rows)
}

// printPipelineSummary writes the stage chain with rule and seed counts.
func printPipelineSummary(w io.Writer, p *pipeline.Pipeline) {
	rules := 0
	for _, stage := range p.Stages() {
		rules += stage.Len()
	}
	pterm.Info.WithWriter(w).Printfln("Pipeline %s: %d stages, %d rules, %d seeds, %d seed intervals",
		strings.Join(p.Chain(), " -> "), len(p.Stages()), rules, len(p.Seeds()), p.Domain().Len())
}

// printResolveConfig writes the effective search settings.
func printResolveConfig(w io.Writer, cfg *am.Config, bounded bool, verbosity int) {
	bound := "unbounded"
	if bounded {
		bound = strconv.FormatUint(cfg.Resolve.Bound, 10)
	}
	pterm.Info.WithWriter(w).Printfln("Resolve settings: bound %s, workers %d, shard size %d, budget %d, verbosity %s",
		bound, cfg.EffectiveWorkers(), cfg.Resolve.ShardSize, cfg.Resolve.Budget, logger.LevelName(verbosity))
}

// printTiming writes how long one run took and how many candidates it tried.
func printTiming(w io.Writer, run *store.Run) {
	pterm.Info.WithWriter(w).Printfln("%s %s after %d candidates in %dms",
		run.Strategy, run.Status, run.Candidates, run.DurationMS)
}

// printError writes err and its hints without stopping the command. With
// JSON logs the error is logged instead so log consumers see one stream.
func printError(w io.Writer, err error) {
	if logger.JSONOutput {
		logger.Errorw("Command failed",
			logger.FieldError, err.Error(),
			logger.FieldHints, errors.GetAllHints(err))
		return
	}
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(w).Println(hint)
	}
}

func formatValue(v *uint64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(*v, 10)
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
