// Package resolver finds the smallest end-domain value a pipeline can reach.
//
// Four strategies are available:
//
//   - direct: convert each explicit seed forward and keep the minimum.
//   - reverse: walk end-domain candidates upward, map each one back to the
//     start domain and stop at the first that lands in a seed range.
//   - parallel: the reverse scan split into blocks across goroutines.
//   - forward: enumerate every value of every seed range forward. Only
//     practical on small inputs, mostly useful to cross-check the others.
//
// The reverse strategies assume every stage is a bijection on the values
// involved; on other inputs their answer may differ from forward.
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/pipeline"
)

// Strategy names a minimization method.
type Strategy string

// Known strategies.
const (
	StrategyDirect   Strategy = "direct"
	StrategyReverse  Strategy = "reverse"
	StrategyParallel Strategy = "parallel"
	StrategyForward  Strategy = "forward"
)

// Strategies returns every known strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyDirect, StrategyReverse, StrategyParallel, StrategyForward}
}

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies() {
		if s == known {
			return s, nil
		}
	}
	return "", errors.WithHint(
		errors.Newf("unknown strategy %q", name),
		"valid strategies: direct, reverse, parallel, forward")
}

// Result is the outcome of one resolution.
type Result struct {
	Strategy   Strategy      `json:"strategy"`
	Value      uint64        `json:"value"`
	Candidates uint64        `json:"candidates"`
	Duration   time.Duration `json:"duration_ns"`
}

// Resolver runs strategies against one pipeline with a fixed set of options.
type Resolver struct {
	pipeline *pipeline.Pipeline
	cfg      config
}

// New creates a resolver for p.
func New(p *pipeline.Pipeline, opts ...Option) *Resolver {
	return &Resolver{pipeline: p, cfg: newConfig(opts)}
}

// Pipeline returns the pipeline being resolved.
func (r *Resolver) Pipeline() *pipeline.Pipeline {
	return r.pipeline
}

// Resolve runs strategy s. Run IDs and components attached to ctx with the
// logger package show up on every log line of the run.
func (r *Resolver) Resolve(ctx context.Context, s Strategy) (*Result, error) {
	log := logger.LoggerFromContext(ctx, r.cfg.log()).With(logger.FieldStrategy, string(s))
	prog := newProgress(r.cfg.progressPerSecond, log)

	if s == StrategyParallel {
		log.Debugw("Starting parallel scan",
			logger.FieldWorkers, r.cfg.workers,
			logger.FieldShardSize, r.cfg.shardSize)
	}

	started := time.Now()
	var (
		value   uint64
		visited uint64
		err     error
	)
	switch s {
	case StrategyDirect:
		value, visited, err = direct(r.pipeline)
	case StrategyReverse:
		value, visited, err = reverseScan(ctx, r.pipeline, r.cfg, prog)
	case StrategyParallel:
		value, visited, err = parallelReverseScan(ctx, r.pipeline, r.cfg, prog)
	case StrategyForward:
		value, visited, err = forwardRanges(ctx, r.pipeline, r.cfg, prog)
	default:
		_, err = ParseStrategy(string(s))
		return nil, err
	}
	elapsed := time.Since(started)

	r.cfg.metrics.observe(s, visited, elapsed, err)

	if err != nil {
		log.Debugw("Resolution failed",
			logger.FieldCandidates, visited,
			logger.FieldDurationMS, elapsed.Milliseconds(),
			logger.FieldError, err.Error())
		return nil, err
	}

	log.Infow("Resolved",
		logger.FieldValue, value,
		logger.FieldCandidates, visited,
		logger.FieldDurationMS, elapsed.Milliseconds())

	return &Result{
		Strategy:   s,
		Value:      value,
		Candidates: visited,
		Duration:   elapsed,
	}, nil
}
