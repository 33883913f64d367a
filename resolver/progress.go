package resolver

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/almanac/logger"
)

// progress logs scan position at a bounded rate. A nil *progress is valid and
// silent.
type progress struct {
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

func newProgress(perSecond float64, log *zap.SugaredLogger) *progress {
	if perSecond <= 0 {
		return nil
	}
	return &progress{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		log:     log,
	}
}

func (p *progress) report(candidate, visited uint64) {
	if p == nil || !p.limiter.Allow() {
		return
	}
	p.log.Infow("Scan progress",
		logger.FieldCandidate, candidate,
		logger.FieldCandidates, visited)
}
