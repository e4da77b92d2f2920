// Package observability provides Prometheus metrics for the dashboard.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nftdash"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// API client metrics
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// View metrics
	FetchTotal     *prometheus.CounterVec
	StaleDiscarded *prometheus.CounterVec

	// Enrichment metrics
	EnrichmentTotal *prometheus.CounterVec
	CacheHits       prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics registers all metrics with reg. When reg is nil a private
// registry is created so repeated construction in tests never collides.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of analytics API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_errors_total",
			Help:      "Failed analytics API requests by kind",
		}, []string{"endpoint", "kind"}),
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "fetch_total",
			Help:      "View fetch completions by outcome",
		}, []string{"view", "outcome"}),
		StaleDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "stale_discarded_total",
			Help:      "Fetch completions dropped because a newer fetch superseded them",
		}, []string{"view"}),
		EnrichmentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "resolutions_total",
			Help:      "NFT detail resolutions by outcome",
		}, []string{"outcome"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "cache_hits_total",
			Help:      "NFT detail lookups served from cache",
		}),
		registry: reg,
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records the duration of one API call.
func (m *Metrics) ObserveRequest(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RequestFailed counts a failed API call.
func (m *Metrics) RequestFailed(endpoint, kind string) {
	if m == nil {
		return
	}
	m.RequestErrors.WithLabelValues(endpoint, kind).Inc()
}

// FetchCompleted counts a view fetch completion.
func (m *Metrics) FetchCompleted(view, outcome string) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(view, outcome).Inc()
}

// Stale counts a discarded fetch completion.
func (m *Metrics) Stale(view string) {
	if m == nil {
		return
	}
	m.StaleDiscarded.WithLabelValues(view).Inc()
}

// Enrichment counts an NFT detail resolution.
func (m *Metrics) Enrichment(outcome string, cached bool) {
	if m == nil {
		return
	}
	m.EnrichmentTotal.WithLabelValues(outcome).Inc()
	if cached {
		m.CacheHits.Inc()
	}
}
