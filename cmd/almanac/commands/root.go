// Package commands implements the almanac command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/almanac/am"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
)

// rootOptions carries global flags and the loaded configuration to every
// subcommand.
type rootOptions struct {
	verbose    int
	json       bool
	configPath string
	cfg        *am.Config
}

// NewRootCmd builds the almanac command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "almanac",
		Short: "Almanac - staged range remapping and minimization",
		Long: `Almanac - staged range remapping and minimization.

Reads an almanac (seed values plus a chain of range-mapping stages) and
finds the lowest value reachable at the end of the chain.

Available commands:
  solve    - Find the minimum end-domain value
  convert  - Map a single value through the chain
  runs     - Inspect recorded resolution runs
  am       - Manage almanac configuration ("I am")
  version  - Show version information

Examples:
  almanac solve input.txt                       # Reverse scan over seed ranges
  almanac solve input.txt --strategy all        # Compare every strategy
  almanac convert 79 input.txt --trace          # Show each stage of a conversion
  almanac solve input.txt --record && almanac runs ls`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Read configuration from this file only")

	rootCmd.AddCommand(newSolveCmd(opts))
	rootCmd.AddCommand(newConvertCmd(opts))
	rootCmd.AddCommand(newRunsCmd(opts))
	rootCmd.AddCommand(newAmCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// init loads configuration and sets up logging.
func (o *rootOptions) init() error {
	var (
		cfg *am.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = am.LoadFromFile(o.configPath)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	o.cfg = cfg

	if err := logger.Initialize(cfg.Log.JSON, o.verbosity()); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// verbosity is the higher of -v and log.verbosity.
func (o *rootOptions) verbosity() int {
	if o.cfg != nil && o.cfg.Log.Verbosity > o.verbose {
		return o.cfg.Log.Verbosity
	}
	return o.verbose
}

// shouldOutput reports whether a category of CLI output is shown at the
// current verbosity.
func (o *rootOptions) shouldOutput(category logger.OutputCategory) bool {
	return logger.ShouldOutput(o.verbosity(), category)
}
