package am

import (
	"strings"

	"github.com/teranos/almanac/errors"
)

var validStrategies = []string{"direct", "reverse", "parallel", "forward"}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	strategy := strings.ToLower(c.Resolve.Strategy)
	valid := false
	for _, s := range validStrategies {
		if strategy == s {
			valid = true
			break
		}
	}
	if !valid {
		return errors.WithHintf(
			errors.Newf("resolve.strategy %q is not a known strategy", c.Resolve.Strategy),
			"valid strategies: %s", strings.Join(validStrategies, ", "))
	}

	// Workers: 0 = one per logical CPU, negative = invalid
	if c.Resolve.Workers < 0 {
		return errors.Newf("resolve.workers must be >= 0, got %d", c.Resolve.Workers)
	}
	if c.Resolve.ShardSize == 0 {
		return errors.New("resolve.shard_size must be > 0")
	}
	if c.Resolve.StartLabel == "" || c.Resolve.EndLabel == "" {
		return errors.New("resolve.start_label and resolve.end_label cannot be empty")
	}
	if c.Resolve.ProgressPerSecond < 0 {
		return errors.Newf("resolve.progress_per_second must be >= 0, got %f", c.Resolve.ProgressPerSecond)
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path cannot be empty when store is enabled")
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.New("metrics.address cannot be empty when metrics are enabled")
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
