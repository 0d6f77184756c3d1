// Package metrics exposes Prometheus instrumentation for the ledger
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the service
type Registry struct {
	// Ledger mutation metrics
	Mutations *prometheus.CounterVec

	// Settlement engine metrics
	Computations prometheus.Counter

	// Cache performance metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec

	// Export metrics
	Exports *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all service metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairshare_ledger_mutations_total",
				Help: "Total number of ledger mutations by operation and status",
			},
			[]string{"operation", "status"},
		),

		Computations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fairshare_settlement_computations_total",
				Help: "Total number of settlement plan computations",
			},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fairshare_summary_cache_hits_total",
				Help: "Total number of settlement cache hits",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fairshare_summary_cache_misses_total",
				Help: "Total number of settlement cache misses",
			},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fairshare_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method, path and status",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"method", "path", "status"},
		),

		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairshare_exports_total",
				Help: "Total number of summary exports by target and status",
			},
			[]string{"target", "status"},
		),

		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(
		r.Mutations,
		r.Computations,
		r.CacheHits,
		r.CacheMisses,
		r.RequestDuration,
		r.Exports,
	)

	return r
}

// Handler returns an HTTP handler serving the registered metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveMutation records the outcome of a ledger mutation.
func (r *Registry) ObserveMutation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.Mutations.WithLabelValues(operation, status).Inc()
}
