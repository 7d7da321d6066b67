package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the server's Prometheus collectors, kept on their own
// registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	ViewBuildsTotal   *prometheus.CounterVec
	RateLimitedTotal  prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parroquias_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		RequestDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parroquias_http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		ViewBuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parroquias_view_builds_total",
			Help: "View builds by view and outcome",
		}, []string{"view", "outcome"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parroquias_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationMs,
		m.ViewBuildsTotal,
		m.RateLimitedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
