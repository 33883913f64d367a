package resolver

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/pipeline"
)

// MinimumReverseScan walks output candidates upward from the start candidate
// and returns the first whose reverse image is a legal seed. Because the
// candidates are visited in increasing order, the first hit is the minimum.
func MinimumReverseScan(ctx context.Context, p *pipeline.Pipeline, opts ...Option) (uint64, error) {
	cfg := newConfig(opts)
	value, _, err := reverseScan(ctx, p, cfg, newProgress(cfg.progressPerSecond, cfg.log()))
	return value, err
}

// MinimumReverseScanParallel splits the candidate range into blocks of
// ShardSize handed out in increasing order to Workers goroutines. Blocks
// starting above the best hit so far are skipped.
func MinimumReverseScanParallel(ctx context.Context, p *pipeline.Pipeline, opts ...Option) (uint64, error) {
	cfg := newConfig(opts)
	value, _, err := parallelReverseScan(ctx, p, cfg, newProgress(cfg.progressPerSecond, cfg.log()))
	return value, err
}

func hit(p *pipeline.Pipeline, candidate uint64) bool {
	return p.ValueInSeedDomain(p.ReverseConvert(candidate))
}

func checkDomain(p *pipeline.Pipeline) error {
	if p.Domain().Len() == 0 {
		return errors.WithHint(
			errors.Wrap(errors.ErrEmptyInput, "reverse scan"),
			"the almanac defines no seed ranges")
	}
	return nil
}

func noSolution(first, last uint64) error {
	return errors.Wrapf(errors.ErrNoSolutionFound, "candidates [%d, %d]", first, last)
}

func reverseScan(ctx context.Context, p *pipeline.Pipeline, cfg config, prog *progress) (uint64, uint64, error) {
	if err := checkDomain(p); err != nil {
		return 0, 0, err
	}
	first, last := cfg.start, cfg.last()
	if first > last {
		return 0, 0, noSolution(first, last)
	}

	var visited uint64
	for c := first; ; c++ {
		visited++
		if visited%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, visited, errors.Wrapf(err, "reverse scan stopped at candidate %d", c)
			}
			prog.report(c, visited)
		}
		if hit(p, c) {
			return c, visited, nil
		}
		if c == last {
			return 0, visited, noSolution(first, last)
		}
	}
}

func parallelReverseScan(ctx context.Context, p *pipeline.Pipeline, cfg config, prog *progress) (uint64, uint64, error) {
	if err := checkDomain(p); err != nil {
		return 0, 0, err
	}
	first, last := cfg.start, cfg.last()
	if first > last {
		return 0, 0, noSolution(first, last)
	}

	shard := cfg.shardSize
	lastBlock := (last - first) / shard
	workers := cfg.workers
	if lastBlock < uint64(workers-1) {
		workers = int(lastBlock + 1)
	}

	var (
		next    atomic.Uint64
		best    atomic.Uint64
		found   atomic.Bool
		visited atomic.Uint64
	)

	best.Store(math.MaxUint64)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				b := next.Add(1) - 1
				if b > lastBlock {
					return nil
				}
				lo := first + b*shard
				// Blocks are claimed in increasing order, so every later
				// block starts above this one too.
				if found.Load() && lo > best.Load() {
					return nil
				}
				hi := last
				if last-lo >= shard {
					hi = lo + shard - 1
				}

				n, err := scanBlock(gctx, p, lo, hi, &best, &found)
				total := visited.Add(n)
				if err != nil {
					return err
				}
				prog.report(hi, total)
			}
		})
	}

	if err := g.Wait(); err != nil {
		return 0, visited.Load(), errors.Wrap(err, "parallel reverse scan")
	}
	if !found.Load() {
		return 0, visited.Load(), noSolution(first, last)
	}
	return best.Load(), visited.Load(), nil
}

// scanBlock scans [lo, hi] and lowers best on a hit. It gives up early once
// another worker has found something below the current candidate.
func scanBlock(ctx context.Context, p *pipeline.Pipeline, lo, hi uint64, best *atomic.Uint64, found *atomic.Bool) (uint64, error) {
	var n uint64
	for c := lo; ; c++ {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
			if found.Load() && c > best.Load() {
				return n, nil
			}
		}
		if hit(p, c) {
			storeMin(best, found, c)
			return n, nil
		}
		if c == hi {
			return n, nil
		}
	}
}

// storeMin lowers best to v. best starts at MaxUint64; found is set only
// after best holds the hit, so readers that see found also see a valid best.
func storeMin(best *atomic.Uint64, found *atomic.Bool, v uint64) {
	for {
		cur := best.Load()
		if v >= cur || best.CompareAndSwap(cur, v) {
			break
		}
	}
	found.Store(true)
}
