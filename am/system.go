package am

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/teranos/almanac/errors"
)

// logicalCPUs is swapped out in tests.
var logicalCPUs = func() (int, error) {
	n, err := cpu.Counts(true)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count logical CPUs")
	}
	return n, nil
}

// EffectiveWorkers resolves resolve.workers: a positive value is used as is,
// zero means one worker per logical CPU. If the CPU count cannot be read,
// GOMAXPROCS is used instead.
func (c *Config) EffectiveWorkers() int {
	if c.Resolve.Workers > 0 {
		return c.Resolve.Workers
	}
	n, err := logicalCPUs()
	if err != nil || n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
