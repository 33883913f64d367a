// Package am loads almanac configuration ("I am") from defaults, TOML files
// and ALMANAC_* environment variables using viper.
package am

// Config represents the almanac configuration
type Config struct {
	Resolve ResolveConfig `mapstructure:"resolve" toml:"resolve" yaml:"resolve" json:"resolve"`
	Store   StoreConfig   `mapstructure:"store" toml:"store" yaml:"store" json:"store"`
	Log     LogConfig     `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics" yaml:"metrics" json:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch" toml:"watch" yaml:"watch" json:"watch"`
}

// ResolveConfig configures the minimization search
type ResolveConfig struct {
	Strategy          string  `mapstructure:"strategy" toml:"strategy" yaml:"strategy" json:"strategy"`                                             // direct, reverse, parallel, forward
	Bound             uint64  `mapstructure:"bound" toml:"bound" yaml:"bound" json:"bound"`                                                         // last reverse scan candidate (0 = unbounded)
	Workers           int     `mapstructure:"workers" toml:"workers" yaml:"workers" json:"workers"`                                                 // parallel scan goroutines (0 = logical CPUs)
	ShardSize         uint64  `mapstructure:"shard_size" toml:"shard_size" yaml:"shard_size" json:"shard_size"`                                     // candidates per parallel block
	Budget            uint64  `mapstructure:"budget" toml:"budget" yaml:"budget" json:"budget"`                                                     // forward enumeration cap (0 = unlimited)
	StartLabel        string  `mapstructure:"start_label" toml:"start_label" yaml:"start_label" json:"start_label"`                                 // forward traversal entry domain
	EndLabel          string  `mapstructure:"end_label" toml:"end_label" yaml:"end_label" json:"end_label"`                                         // reverse traversal entry domain
	StrictRules       bool    `mapstructure:"strict_rules" toml:"strict_rules" yaml:"strict_rules" json:"strict_rules"`                             // reject overlapping rules
	ProgressPerSecond float64 `mapstructure:"progress_per_second" toml:"progress_per_second" yaml:"progress_per_second" json:"progress_per_second"` // progress log rate (0 = off)
}

// StoreConfig configures the run history database
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" yaml:"verbosity" json:"verbosity"`
}

// MetricsConfig configures the Prometheus endpoint served during watch mode
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Address string `mapstructure:"address" toml:"address" yaml:"address" json:"address"`
}

// WatchConfig configures re-solving on input changes
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
