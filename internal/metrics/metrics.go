package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for store operations
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeConstraint  = "constraint"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

// Metrics holds the application's prometheus collectors
type Metrics struct {
	gatherer prometheus.Gatherer

	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Record store operations by table and outcome.",
		}, []string{"op", "table", "outcome"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Record store statement latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op", "table"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.StoreOperations, m.StoreLatency, m.HTTPRequests, m.HTTPLatency)
	return m
}

// NewDefault registers on a fresh registry that also carries the Go runtime and
// process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// ObserveStore records one store operation. A nil receiver is a no-op.
func (m *Metrics) ObserveStore(op, table, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(op, table, outcome).Inc()
	m.StoreLatency.WithLabelValues(op, table).Observe(time.Since(started).Seconds())
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
