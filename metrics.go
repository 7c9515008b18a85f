package rocket

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by a Runner.
type Metrics struct {
	Runs      *prometheus.CounterVec
	Durations *prometheus.HistogramVec
	Samples   *prometheus.GaugeVec
}

// NewMetrics registers the scenario collectors against reg, the default
// registerer if nil. Registering twice on the same registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rocket_scenario_runs_total",
		Help: "Scenario runs, labeled by scenario and outcome.",
	}, []string{"scenario", "outcome"})
	if err := register(reg, &runs); err != nil {
		return nil, err
	}
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rocket_scenario_duration_seconds",
		Help:    "Wall clock duration of scenario runs.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"scenario"})
	if err := register(reg, &durations); err != nil {
		return nil, err
	}
	samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rocket_scenario_samples",
		Help: "Number of samples produced by the last successful run of a scenario.",
	}, []string{"scenario"})
	if err := register(reg, &samples); err != nil {
		return nil, err
	}
	return &Metrics{Runs: runs, Durations: durations, Samples: samples}, nil
}

// register swaps c for the already registered collector of the same type, if any.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				*c = existing
				return nil
			}
			return fmt.Errorf("collector %T already registered with an incompatible type", *c)
		}
		return err
	}
	return nil
}

// Outcome labels an error by its sentinel.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, ErrOutOfDomain):
		return "out_of_domain"
	case errors.Is(err, ErrUndefinedResult):
		return "undefined_result"
	case errors.Is(err, ErrNonConvergence):
		return "non_convergence"
	default:
		return "error"
	}
}

func (m *Metrics) observe(s Scenario, seconds float64, samples int, err error) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(s.String(), Outcome(err)).Inc()
	m.Durations.WithLabelValues(s.String()).Observe(seconds)
	if err == nil {
		m.Samples.WithLabelValues(s.String()).Set(float64(samples))
	}
}
