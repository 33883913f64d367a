package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/almanac/am"
	"github.com/teranos/almanac/display"
	"github.com/teranos/almanac/errors"
)

func newAmCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Manage almanac configuration",
		Long: `am - Manage almanac configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (ALMANAC_* prefix)
3. Project config (./am.toml, searched up from the working directory)
4. User config (~/.almanac/am.toml)
5. System config (/etc/almanac/config.toml)
6. Default values

Examples:
  almanac am show                    # Show current configuration
  almanac am show --format json      # Show configuration in JSON format
  almanac am get resolve.strategy    # Get specific config value
  almanac am validate                # Validate current configuration
  almanac am where                   # Show which config files exist`,
	}

	cmd.AddCommand(newAmShowCmd(root))
	cmd.AddCommand(newAmGetCmd(root))
	cmd.AddCommand(newAmValidateCmd(root))
	cmd.AddCommand(newAmWhereCmd())
	return cmd
}

func newAmShowCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current almanac configuration from all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return display.OutputJSON(out, root.cfg)

			case "yaml":
				data, err := yaml.Marshal(root.cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				_, err = fmt.Fprintf(out, "# almanac configuration\n%s", data)
				return err

			case "toml":
				data, err := toml.Marshal(root.cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to TOML")
				}
				_, err = fmt.Fprintf(out, "# almanac configuration\n%s", data)
				return err

			default:
				return errors.WithHint(
					errors.Newf("unsupported format: %s", format),
					"supported formats: toml, json, yaml")
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	return cmd
}

func newAmGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific configuration value",
		Long:  "Get a specific configuration value using dot notation (e.g., resolve.strategy, store.path)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			// --config reads one file only, so look the key up in what was loaded
			if root.configPath != "" {
				value, ok := root.cfg.Lookup(key)
				if !ok {
					return errors.NewNotFoundError("configuration key %q", key)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			}

			if !am.IsSet(key) {
				return errors.NewNotFoundError("configuration key %q", key)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
			return err
		},
	}
}

func newAmValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.cfg.Validate(); err != nil {
				return errors.Wrap(err, "configuration validation failed")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
			return err
		},
	}
}

func newAmWhereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Show where configuration is loaded from",
		Long: `Show the configuration cascade and which files were checked,
lowest precedence first. ALMANAC_* environment variables override all files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := am.SearchPaths()
			if wantJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), paths)
			}

			rows := make([][]string, 0, len(paths))
			for _, p := range paths {
				state := "missing"
				if p.Exists {
					state = "loaded"
				}
				rows = append(rows, []string{p.Source, p.Path, state})
			}
			return display.Table(cmd.OutOrStdout(), []string{"SOURCE", "PATH", "STATE"}, rows)
		},
	}
}
