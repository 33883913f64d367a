package am

import "github.com/spf13/viper"

// Default values
const (
	DefaultStrategy          = "reverse"
	DefaultShardSize         = 1 << 16
	DefaultStartLabel        = "seed"
	DefaultEndLabel          = "location"
	DefaultProgressPerSecond = 1.0
	DefaultStorePath         = "almanac.db"
	DefaultMetricsAddress    = ":9877"
	DefaultDebounceMS        = 500
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("resolve.strategy", DefaultStrategy)
	v.SetDefault("resolve.bound", 0)   // unbounded
	v.SetDefault("resolve.workers", 0) // logical CPU count
	v.SetDefault("resolve.shard_size", DefaultShardSize)
	v.SetDefault("resolve.budget", 0)
	v.SetDefault("resolve.start_label", DefaultStartLabel)
	v.SetDefault("resolve.end_label", DefaultEndLabel)
	v.SetDefault("resolve.strict_rules", false)
	v.SetDefault("resolve.progress_per_second", DefaultProgressPerSecond)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", DefaultStorePath)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", DefaultMetricsAddress)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// BindEnvVars binds keys whose environment names do not follow the
// ALMANAC_<SECTION>_<KEY> pattern.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("store.path", "ALMANAC_STORE_PATH", "ALMANAC_DB_PATH")
}
