package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	GenerationRequests *prometheus.CounterVec
	GenerationTokens   prometheus.Counter
	StoreRetries       prometheus.Counter
	RateLimited        prometheus.Counter
}

// NewMetrics registers and returns the service metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cvwizard_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cvwizard_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		GenerationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cvwizard_generation_requests_total",
			Help: "Text generation attempts by outcome (generated, fallback, limited)",
		}, []string{"outcome"}),
		GenerationTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "cvwizard_generation_tokens_total",
			Help: "Tokens reported by the generation service",
		}),
		StoreRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "cvwizard_store_retries_total",
			Help: "Record store calls retried after 429/5xx or transport errors",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "cvwizard_rate_limited_total",
			Help: "Requests rejected by the generation rate limiter",
		}),
	}
}
