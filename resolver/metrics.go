package resolver

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/teranos/almanac/errors"
)

const (
	metricsNamespace = "almanac"
	metricsSubsystem = "resolver"
)

// Run outcomes as recorded in the outcome label.
const (
	OutcomeFound      = "found"
	OutcomeNoSolution = "no_solution"
	OutcomeEmpty      = "empty_input"
	OutcomeBudget     = "budget_exceeded"
	OutcomeCanceled   = "canceled"
	OutcomeError      = "error"
)

// Metrics holds the resolver's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	// RunsTotal counts resolutions.
	// Labels: strategy, outcome
	RunsTotal *prometheus.CounterVec

	// CandidatesTotal counts values visited by searches.
	// Labels: strategy
	CandidatesTotal *prometheus.CounterVec

	// DurationSeconds measures resolution wall time.
	// Labels: strategy
	DurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the resolver collectors and registers them with reg.
// Registering twice with the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "runs_total",
				Help:      "Total resolutions by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		CandidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "candidates_total",
				Help:      "Total candidate values visited by strategy",
			},
			[]string{"strategy"},
		),
		DurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "duration_seconds",
				Help:      "Resolution duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
			[]string{"strategy"},
		),
	}
}

func (m *Metrics) observe(s Strategy, candidates uint64, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(s), outcome(err)).Inc()
	m.CandidatesTotal.WithLabelValues(string(s)).Add(float64(candidates))
	m.DurationSeconds.WithLabelValues(string(s)).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, errors.ErrNoSolutionFound):
		return OutcomeNoSolution
	case errors.Is(err, errors.ErrEmptyInput):
		return OutcomeEmpty
	case errors.Is(err, errors.ErrSearchBudgetExceeded):
		return OutcomeBudget
	case errors.IsAny(err, context.Canceled, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
