package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks request counts and latency per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	panics   *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	panics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_panics_recovered_total",
		Help: "Handler panics turned into 500 responses, by route.",
	}, []string{"route"})
	reg.MustRegister(requests, duration, panics)
	return &HTTPMetrics{requests: requests, duration: duration, panics: panics}
}

// Observe records one finished request.
func (h *HTTPMetrics) Observe(route, method string, status int, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = normalizeLabel(route)
	h.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	h.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncPanic counts a recovered handler panic.
func (h *HTTPMetrics) IncPanic(route string) {
	if h == nil || h.panics == nil {
		return
	}
	h.panics.WithLabelValues(normalizeLabel(route)).Inc()
}
