package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	ProviderAttempts *prometheus.CounterVec
	RateLimited      *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roast_requests_total",
			Help: "Pipeline requests by task and HTTP status.",
		}, []string{"task", "status"}),
		ProviderAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roast_provider_attempts_total",
			Help: "Generative provider attempts by task and outcome.",
		}, []string{"task", "outcome"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roast_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"task"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roast_request_duration_seconds",
			Help:    "Pipeline duration by task.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"task"}),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.ProviderAttempts,
		m.RateLimited,
		m.RequestDuration,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) ObserveRequest(task string, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(task, status).Inc()
	m.RequestDuration.WithLabelValues(task).Observe(seconds)
}

func (m *Metrics) ObserveAttempt(task, outcome string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(task, outcome).Inc()
}

func (m *Metrics) ObserveRateLimited(task string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(task).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
