package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_gallery_http_requests_total",
		Help: "Number of HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edu_gallery_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_gallery_logins_total",
		Help: "Login attempts by kind (user/admin) and outcome.",
	}, []string{"kind", "outcome"})

	TelemetryDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edu_gallery_telemetry_drops_total",
		Help: "Best-effort access/launch log calls that failed and were dropped.",
	})
)
