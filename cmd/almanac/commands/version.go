package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/almanac/display"
	"github.com/teranos/almanac/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show almanac version information",
		Long:  `Display version, build time, commit hash, and platform information for the almanac binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if wantJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
