package commands

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/almanac/display"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/store"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded resolution runs",
		Long: `Inspect runs recorded by 'almanac solve --record' (or store.enabled).

Examples:
  almanac runs ls                          # Latest runs
  almanac runs ls --strategy parallel      # Only parallel scans
  almanac runs show 3f2a9c1e               # One run, by ID prefix
  almanac runs prune --older-than 720h     # Forget runs older than 30 days`,
	}

	cmd.AddCommand(newRunsListCmd(root))
	cmd.AddCommand(newRunsShowCmd(root))
	cmd.AddCommand(newRunsPruneCmd(root))
	return cmd
}

// openRuns opens the configured run store. The caller closes the database.
func openRuns(root *rootOptions) (*store.Store, *sql.DB, error) {
	db, err := store.OpenWithMigrations(root.cfg.Store.Path, logger.ComponentLogger("store"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open run store")
	}
	return store.New(db, nil), db, nil
}

func newRunsListCmd(root *rootOptions) *cobra.Command {
	var filter store.ListFilter

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List runs, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, db, err := openRuns(root)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := runs.ListRuns(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if list == nil {
				list = []*store.Run{}
			}
			if wantJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return err
			}

			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{
					shortID(r.ID),
					r.CreatedAt.Local().Format(time.DateTime),
					r.Strategy,
					formatValue(r.Value),
					fmt.Sprintf("%dms", r.DurationMS),
					r.Status,
					r.Source,
				})
			}
			return display.Table(cmd.OutOrStdout(),
				[]string{"RUN", "CREATED", "STRATEGY", "VALUE", "DURATION", "STATUS", "SOURCE"}, rows)
		},
	}

	cmd.Flags().StringVar(&filter.InputDigest, "digest", "", "Only runs on the input with this digest")
	cmd.Flags().StringVar(&filter.Strategy, "strategy", "", "Only runs of this strategy")
	cmd.Flags().IntVar(&filter.Limit, "limit", store.DefaultListLimit, "Maximum number of runs")
	return cmd
}

func newRunsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run",
		Long:  "Show one run. Any unique prefix of the run ID is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, db, err := openRuns(root)
			if err != nil {
				return err
			}
			defer db.Close()

			r, err := runs.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), r)
			}

			rows := [][]string{
				{"id", r.ID},
				{"created", r.CreatedAt.Local().Format(time.RFC3339)},
				{"source", r.Source},
				{"input digest", r.InputDigest},
				{"strategy", r.Strategy},
				{"value", formatValue(r.Value)},
				{"candidates", strconv.FormatUint(r.Candidates, 10)},
				{"duration", fmt.Sprintf("%dms", r.DurationMS)},
				{"status", r.Status},
			}
			if r.Error != "" {
				rows = append(rows, []string{"error", r.Error})
			}
			keys := make([]string, 0, len(r.Options))
			for k := range r.Options {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				rows = append(rows, []string{"option " + k, r.Options[k]})
			}
			return display.Table(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, rows)
		},
	}
}

func newRunsPruneCmd(root *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.WithHint(
					errors.New("--older-than must be positive"),
					"for example: --older-than 720h")
			}
			runs, db, err := openRuns(root)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := runs.DeleteRunsBefore(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), map[string]int64{"deleted": n})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", n)
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Delete runs created longer ago than this")
	return cmd
}
