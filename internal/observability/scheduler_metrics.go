package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LocalizationCollector exposes Prometheus metrics for the localization
// engine: per-tick search duration, how often the bounded step budget is
// exhausted before every candidate point is placed, and the count of
// agents currently flagged invalid (off-road or not localizable). This
// replaces the teacher's path-computation/contact-window collector with
// the scheduler core's own hard numerical subsystem.
type LocalizationCollector struct {
	gatherer prometheus.Gatherer

	SearchDuration       prometheus.Histogram
	BudgetExhaustedTotal prometheus.Counter
	InvalidAgents        prometheus.Gauge
}

// NewLocalizationCollector registers localization metrics against the
// provided registerer.
func NewLocalizationCollector(reg prometheus.Registerer) (*LocalizationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searchHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "localization_search_duration_seconds",
		Help:    "Duration of one agent's per-tick lane-containment search.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
	searchHistogram, err := registerHistogram(reg, searchHistogram, "localization_search_duration_seconds")
	if err != nil {
		return nil, err
	}

	budgetExhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "localization_step_budget_exhausted_total",
		Help: "Cumulative number of searches that exhausted their bounded step budget before placing every candidate point.",
	})
	budgetExhausted, err = registerCounter(reg, budgetExhausted, "localization_step_budget_exhausted_total")
	if err != nil {
		return nil, err
	}

	invalidAgents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "localization_invalid_agents",
		Help: "Number of agents currently flagged invalid by localization (off-road or not localizable).",
	})
	invalidAgents, err = registerGauge(reg, invalidAgents, "localization_invalid_agents")
	if err != nil {
		return nil, err
	}

	return &LocalizationCollector{
		gatherer:             gatherer,
		SearchDuration:       searchHistogram,
		BudgetExhaustedTotal: budgetExhausted,
		InvalidAgents:        invalidAgents,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *LocalizationCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveSearch records one agent's search duration.
func (c *LocalizationCollector) ObserveSearch(d time.Duration) {
	if c == nil || c.SearchDuration == nil {
		return
	}
	c.SearchDuration.Observe(d.Seconds())
}

// IncBudgetExhausted increments the step-budget-exhausted counter.
func (c *LocalizationCollector) IncBudgetExhausted() {
	if c == nil || c.BudgetExhaustedTotal == nil {
		return
	}
	c.BudgetExhaustedTotal.Inc()
}

// SetInvalidAgents updates the invalid-agent gauge.
func (c *LocalizationCollector) SetInvalidAgents(n int) {
	if c == nil || c.InvalidAgents == nil {
		return
	}
	c.InvalidAgents.Set(float64(n))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
