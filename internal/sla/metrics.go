package sla

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRecomputeTotal        = "sla_recompute_total"
	MetricRecomputeErrors       = "sla_recompute_errors_total"
	MetricRecomputeDuration     = "sla_recompute_duration_seconds"
	MetricLastRecomputeUnix     = "sla_last_recompute_timestamp"
	MetricLastRecomputeOrgCount = "sla_last_recompute_org_count"
)

// Metrics contains Prometheus metrics for SLA recomputation. All
// operations are thread-safe.
type Metrics struct {
	recomputeTotal        prometheus.Counter
	recomputeErrors       prometheus.Counter
	recomputeDuration     prometheus.Histogram
	lastRecomputeUnix     prometheus.Gauge
	lastRecomputeOrgCount prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all collectors
// initialized. Call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		recomputeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRecomputeTotal,
			Help: "Total number of SLA recomputation cycles",
		}),
		recomputeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRecomputeErrors,
			Help: "Total number of SLA recomputation errors",
		}),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRecomputeDuration,
			Help:    "Histogram of SLA recomputation cycle duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}),
		lastRecomputeUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRecomputeUnix,
			Help: "Unix timestamp of the last SLA recomputation cycle",
		}),
		lastRecomputeOrgCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRecomputeOrgCount,
			Help: "Number of organisations processed in the last SLA recomputation cycle",
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.recomputeTotal,
		m.recomputeErrors,
		m.recomputeDuration,
		m.lastRecomputeUnix,
		m.lastRecomputeOrgCount,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncRecomputeTotal increments the recompute cycle counter.
func (m *Metrics) IncRecomputeTotal() {
	m.recomputeTotal.Inc()
}

// IncRecomputeErrors increments the recompute error counter.
func (m *Metrics) IncRecomputeErrors() {
	m.recomputeErrors.Inc()
}

// ObserveRecomputeDuration records a cycle duration sample.
func (m *Metrics) ObserveRecomputeDuration(seconds float64) {
	m.recomputeDuration.Observe(seconds)
}

// SetLastRecomputeTimestamp sets the last cycle timestamp gauge.
func (m *Metrics) SetLastRecomputeTimestamp(timestamp float64) {
	m.lastRecomputeUnix.Set(timestamp)
}

// SetLastRecomputeOrgCount sets the last cycle org count gauge.
func (m *Metrics) SetLastRecomputeOrgCount(count float64) {
	m.lastRecomputeOrgCount.Set(count)
}
