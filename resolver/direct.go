package resolver

import (
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/pipeline"
)

// MinimumDirect converts every explicit seed and returns the smallest result.
func MinimumDirect(p *pipeline.Pipeline) (uint64, error) {
	value, _, err := direct(p)
	return value, err
}

func direct(p *pipeline.Pipeline) (uint64, uint64, error) {
	seeds := p.Seeds()
	if len(seeds) == 0 {
		return 0, 0, errors.WithHint(
			errors.Wrap(errors.ErrEmptyInput, "direct minimization"),
			"the almanac lists no seed values")
	}

	best := p.Convert(seeds[0])
	for _, seed := range seeds[1:] {
		if v := p.Convert(seed); v < best {
			best = v
		}
	}
	return best, uint64(len(seeds)), nil
}
