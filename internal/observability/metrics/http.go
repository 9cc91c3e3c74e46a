// http.go: metrics for the HTTP API
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for HTTP request handling
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers new HTTP metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() error {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"method", "path"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "path"},
	)

	return nil
}

// Describe implements the prometheus.Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.responseSize.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.responseSize.Collect(ch)
}

// RecordRequest increments the request counter
func (m *HTTPMetrics) RecordRequest(method, path, status string) {
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRequestDuration records the time taken to serve a request
func (m *HTTPMetrics) RecordRequestDuration(method, path string, seconds float64) {
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordResponseSize records the size of a response
func (m *HTTPMetrics) RecordResponseSize(method, path string, bytes float64) {
	m.responseSize.WithLabelValues(method, path).Observe(bytes)
}
