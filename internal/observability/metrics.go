package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunCollector bundles the Prometheus metrics exported for one slave
// invocation: tick throughput, agent population, and the scheduler's own
// failure/abort outcomes. It is the adapted successor of the teacher's
// NBI-surface collector (request counts/durations, scenario gauges),
// retargeted from RPC/scenario metrics to scheduler-loop metrics; the
// register-with-AlreadyRegisteredError-tolerance pattern is unchanged.
type RunCollector struct {
	gatherer prometheus.Gatherer

	TickDuration   prometheus.Histogram
	ActiveAgents   prometheus.Gauge
	SpawnedAgents  prometheus.Counter
	RemovedAgents  prometheus.Counter
	CollisionCount prometheus.Counter
	AbortsTotal    *prometheus.CounterVec
}

// NewRunCollector registers the run-level metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tickDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_tick_duration_seconds",
		Help:    "Wall-clock time spent executing one scheduler tick (all task phases).",
		Buckets: prometheus.DefBuckets,
	}), "scheduler_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	activeAgents, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_active_agents",
		Help: "Number of agents currently registered in the world.",
	}), "scheduler_active_agents")
	if err != nil {
		return nil, err
	}

	spawned, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_agents_spawned_total",
		Help: "Cumulative number of agents SpawnControl instantiated.",
	}), "scheduler_agents_spawned_total")
	if err != nil {
		return nil, err
	}

	removed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_agents_removed_total",
		Help: "Cumulative number of agents removed from the world (invalid, collided, or expired).",
	}), "scheduler_agents_removed_total")
	if err != nil {
		return nil, err
	}

	collisions, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_collisions_total",
		Help: "Cumulative number of agent-pair collision events reported to the run result.",
	}), "scheduler_collisions_total")
	if err != nil {
		return nil, err
	}

	aborts, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_aborts_total",
		Help: "Cumulative number of runs ending in an abort, labeled by classification.",
	}, []string{"reason"}), "scheduler_aborts_total")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:       gatherer,
		TickDuration:   tickDuration,
		ActiveAgents:   activeAgents,
		SpawnedAgents:  spawned,
		RemovedAgents:  removed,
		CollisionCount: collisions,
		AbortsTotal:    aborts,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler for the run collector.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick records one tick's wall-clock execution duration in seconds.
func (c *RunCollector) ObserveTick(seconds float64) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(seconds)
}

// SetActiveAgents updates the current agent-population gauge.
func (c *RunCollector) SetActiveAgents(n int) {
	if c == nil || c.ActiveAgents == nil {
		return
	}
	c.ActiveAgents.Set(float64(n))
}

// IncSpawned increments the cumulative spawned-agent counter.
func (c *RunCollector) IncSpawned(n int) {
	if c == nil || c.SpawnedAgents == nil || n <= 0 {
		return
	}
	c.SpawnedAgents.Add(float64(n))
}

// IncRemoved increments the cumulative removed-agent counter.
func (c *RunCollector) IncRemoved(n int) {
	if c == nil || c.RemovedAgents == nil || n <= 0 {
		return
	}
	c.RemovedAgents.Add(float64(n))
}

// IncCollisions increments the cumulative collision counter.
func (c *RunCollector) IncCollisions(n int) {
	if c == nil || c.CollisionCount == nil || n <= 0 {
		return
	}
	c.CollisionCount.Add(float64(n))
}

// IncAbort increments the abort counter for the given classification
// (e.g. "AbortInvocation", "AbortSimulation").
func (c *RunCollector) IncAbort(reason string) {
	if c == nil || c.AbortsTotal == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	c.AbortsTotal.WithLabelValues(reason).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
