package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the impact engine.
// All recording methods are nil-safe so the engine can run without metrics
// (the MCP binary only wires them when a metrics address is configured).
type Metrics struct {
	EngineOps     *prometheus.CounterVec   // labels: op, outcome={ok,no_data,error}
	StoreQueries  *prometheus.CounterVec   // labels: query, outcome={ok,error}
	StoreDuration *prometheus.HistogramVec // labels: query
	Inconsistent  prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EngineOps,
		m.StoreQueries,
		m.StoreDuration,
		m.Inconsistent,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EngineOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aos",
			Name:      "engine_ops_total",
			Help:      "Engine operations by name and outcome.",
		}, []string{"op", "outcome"}),
		StoreQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aos",
			Name:      "store_queries_total",
			Help:      "Impact store queries by name and outcome.",
		}, []string{"query", "outcome"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aos",
			Name:      "store_query_duration_seconds",
			Help:      "Impact store query duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"query"}),
		Inconsistent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aos",
			Name:      "aggregation_inconsistencies_total",
			Help:      "Admin breakdown totals that disagreed with the expected impact total.",
		}),
	}
}

// ObserveOp records one engine operation outcome.
func (m *Metrics) ObserveOp(op, outcome string) {
	if m == nil {
		return
	}
	m.EngineOps.WithLabelValues(op, outcome).Inc()
}

// ObserveQuery records one store query with its duration.
func (m *Metrics) ObserveQuery(query string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreQueries.WithLabelValues(query, outcome).Inc()
	m.StoreDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// ObserveInconsistency records a failed breakdown-vs-total cross-check.
func (m *Metrics) ObserveInconsistency() {
	if m == nil {
		return
	}
	m.Inconsistent.Inc()
}
