package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed at /metrics. They mirror
// the engine's internal stats but follow Prometheus conventions so existing
// dashboards can consume them.
type Metrics struct {
	registry        *prometheus.Registry
	searches        *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	contextRequests prometheus.Counter
	ingestedDocs    prometheus.Counter
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atsume_searches_total",
			Help: "Total searches served, by search type.",
		}, []string{"type"}),
		searchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atsume_search_duration_seconds",
			Help:    "Search latency, by search type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		contextRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "atsume_context_requests_total",
			Help: "Total context assembly requests served.",
		}),
		ingestedDocs: factory.NewCounter(prometheus.CounterOpts{
			Name: "atsume_ingested_documents_total",
			Help: "Total documents ingested.",
		}),
	}
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(searchType string, seconds float64) {
	m.searches.WithLabelValues(searchType).Inc()
	m.searchDuration.WithLabelValues(searchType).Observe(seconds)
}
