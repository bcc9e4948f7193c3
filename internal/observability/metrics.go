package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus instruments for the HTTP and notification paths.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	notifyTotal     *prometheus.CounterVec
	cacheTotal      *prometheus.CounterVec
}

// NewMetrics registers instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Requests rejected with a domain error code.",
		}, []string{"path", "method", "code"}),
		notifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_attempts_total",
			Help: "Notification attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		cacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
	}
}

// RecordRequest observes one completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a request rejected with a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(path, method, code).Inc()
}

// RecordNotification counts one channel attempt.
func (m *Metrics) RecordNotification(channel, outcome string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordCache counts a cache lookup outcome (hit, miss, bypass).
func (m *Metrics) RecordCache(namespace, outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(namespace, outcome).Inc()
}
