package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCallLatency tracks provider round trips in milliseconds.
	LLMCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_llm_call_latency_ms",
			Help:    "Language model call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"provider", "status"},
	)

	// DispatchCount counts dispatched tasks by outcome.
	DispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_dispatch_total",
			Help: "Total number of dispatched copilot tasks",
		},
		[]string{"task", "source", "reason"},
	)

	// HTTPRequestDuration is recorded by the HTTP middleware.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordLLMCallLatency records one provider call.
func RecordLLMCallLatency(provider, status string, latency time.Duration) {
	LLMCallLatency.WithLabelValues(provider, status).Observe(float64(latency.Milliseconds()))
}

// RecordDispatch counts one dispatch outcome.
func RecordDispatch(task, source, reason string) {
	if reason == "" {
		reason = "none"
	}
	DispatchCount.WithLabelValues(task, source, reason).Inc()
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
