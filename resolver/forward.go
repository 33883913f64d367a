package resolver

import (
	"context"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/pipeline"
)

// MinimumForwardRanges converts every value of every seed range and returns
// the smallest result. It is exhaustive and slow on real inputs; use
// WithBudget to cap the work.
func MinimumForwardRanges(ctx context.Context, p *pipeline.Pipeline, opts ...Option) (uint64, error) {
	cfg := newConfig(opts)
	value, _, err := forwardRanges(ctx, p, cfg, newProgress(cfg.progressPerSecond, cfg.log()))
	return value, err
}

func forwardRanges(ctx context.Context, p *pipeline.Pipeline, cfg config, prog *progress) (uint64, uint64, error) {
	var (
		best    uint64
		found   bool
		visited uint64
	)

	for _, iv := range p.Domain().Intervals() {
		if iv.Length == 0 {
			continue
		}
		for x := iv.Start; ; x++ {
			if cfg.budget > 0 && visited >= cfg.budget {
				return 0, visited, errors.WithDetailf(
					errors.Wrapf(errors.ErrSearchBudgetExceeded, "forward enumeration stopped at seed %d", x),
					"budget %d, seed domain holds %d values", cfg.budget, p.Domain().Size())
			}
			visited++
			if visited%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return 0, visited, errors.Wrapf(err, "forward enumeration stopped at seed %d", x)
				}
				prog.report(x, visited)
			}

			if v := p.Convert(x); !found || v < best {
				best, found = v, true
			}
			if x == iv.Last() {
				break
			}
		}
	}

	if !found {
		return 0, visited, errors.WithHint(
			errors.Wrap(errors.ErrEmptyInput, "forward enumeration"),
			"the almanac defines no non-empty seed ranges")
	}
	return best, visited, nil
}
