package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/almanac/display"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/pipeline"
)

type convertOptions struct {
	root    *rootOptions
	reverse bool
	trace   bool
	from    string
	format  string
}

// conversion is the JSON shape of a convert result.
type conversion struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Input  uint64          `json:"input"`
	Output uint64          `json:"output"`
	Steps  []pipeline.Step `json:"steps,omitempty"`
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	o := &convertOptions{root: root}

	cmd := &cobra.Command{
		Use:   "convert <value> [file|-]",
		Short: "Map a single value through the stage chain",
		Long: `Map a value from the start domain to the end of the chain, or back
with --reverse. --trace shows the value in every domain along the way.

Examples:
  almanac convert 79 input.txt                   # seed 79 -> location
  almanac convert 82 input.txt --reverse         # location 82 -> seed
  almanac convert 74 input.txt --from light      # start mid-chain
  almanac convert 79 input.txt --trace`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&o.reverse, "reverse", "r", false, "Map from the end domain back toward the start")
	cmd.Flags().BoolVar(&o.trace, "trace", false, "Show the value in every domain")
	cmd.Flags().StringVar(&o.from, "from", "", "Domain label to start from (default resolve.start_label, or resolve.end_label with --reverse)")
	cmd.Flags().StringVar(&o.format, "format", "", "Input format: text, yaml, toml (default from file extension)")

	return cmd
}

func (o *convertOptions) run(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.WithHint(
			errors.Newf("invalid value %q", args[0]),
			"values are unsigned 64-bit integers")
	}

	path := stdinSource
	if len(args) == 2 {
		path = args[1]
	}
	in, _, err := readInput(path, o.format, cmd.InOrStdin())
	if err != nil {
		return err
	}
	p, err := buildPipeline(in, o.root.cfg)
	if err != nil {
		return err
	}

	// -vvv shows the trace without --trace
	if o.root.shouldOutput(logger.OutputTrace) {
		o.trace = true
	}
	result := o.convert(p, value)

	if wantJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), result)
	}
	if !o.trace {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), result.Output)
		return err
	}

	rows := make([][]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		rows = append(rows, []string{step.Label, strconv.FormatUint(step.Value, 10)})
	}
	return display.Table(cmd.OutOrStdout(), []string{"DOMAIN", "VALUE"}, rows)
}

func (o *convertOptions) convert(p *pipeline.Pipeline, value uint64) conversion {
	from := o.from
	if from == "" {
		from = p.StartLabel()
		if o.reverse {
			from = p.EndLabel()
		}
	}

	steps := p.TraceFrom(value, from)
	if o.reverse {
		steps = p.ReverseTraceFrom(value, from)
	}

	last := steps[len(steps)-1]
	result := conversion{From: from, To: last.Label, Input: value, Output: last.Value}
	if o.trace {
		result.Steps = steps
	}
	return result
}
