package resolver

import (
	"math"
	"runtime"

	"go.uber.org/zap"

	"github.com/teranos/almanac/logger"
)

const (
	// DefaultShardSize is the number of candidates a parallel worker claims at once.
	DefaultShardSize uint64 = 1 << 16

	// DefaultProgressPerSecond caps progress log lines per second.
	DefaultProgressPerSecond = 1.0

	// checkEvery is how many candidates a scan loop visits between context checks.
	checkEvery = 1 << 12
)

// Option configures a search.
type Option func(*config)

type config struct {
	start   uint64
	bound   uint64
	bounded bool

	workers   int
	shardSize uint64
	budget    uint64

	progressPerSecond float64
	logger            *zap.SugaredLogger
	metrics           *Metrics
}

func newConfig(opts []Option) config {
	cfg := config{
		shardSize:         DefaultShardSize,
		progressPerSecond: DefaultProgressPerSecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shardSize == 0 {
		cfg.shardSize = DefaultShardSize
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	return cfg
}

// last returns the greatest candidate a reverse scan may visit.
func (c config) last() uint64 {
	if c.bounded {
		return c.bound
	}
	return math.MaxUint64
}

func (c config) log() *zap.SugaredLogger {
	if c.logger != nil {
		return c.logger
	}
	return logger.ComponentLogger("resolver")
}

// WithStart sets the first candidate of a reverse scan. Defaults to 0.
func WithStart(start uint64) Option {
	return func(c *config) { c.start = start }
}

// WithBound sets the last candidate (inclusive) of a reverse scan. Without a
// bound the scan runs up to MaxUint64.
func WithBound(bound uint64) Option {
	return func(c *config) {
		c.bound = bound
		c.bounded = true
	}
}

// WithWorkers sets the number of goroutines of the parallel reverse scan.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithShardSize sets the block size handed to parallel workers.
func WithShardSize(n uint64) Option {
	return func(c *config) { c.shardSize = n }
}

// WithBudget caps the number of seed values the forward enumeration visits.
// Zero means unlimited.
func WithBudget(n uint64) Option {
	return func(c *config) { c.budget = n }
}

// WithProgress sets how many progress lines per second long scans may log.
// Zero disables progress logging.
func WithProgress(perSecond float64) Option {
	return func(c *config) { c.progressPerSecond = perSecond }
}

// WithLogger sets the logger. Defaults to the "resolver" component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics records runs into m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
