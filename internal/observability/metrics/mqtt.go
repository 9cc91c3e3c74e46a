// mqtt.go: metrics for the MQTT alert publisher
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MQTTMetrics contains Prometheus metrics for MQTT operations
type MQTTMetrics struct {
	registry *prometheus.Registry

	connectionStatus       prometheus.Gauge
	messagesDeliveredTotal prometheus.Counter
	errorsTotal            *prometheus.CounterVec
	messageSize            prometheus.Histogram
	reconnectAttemptsTotal prometheus.Counter
}

// NewMQTTMetrics creates and registers new MQTT metrics
func NewMQTTMetrics(registry *prometheus.Registry) (*MQTTMetrics, error) {
	m := &MQTTMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MQTTMetrics) initMetrics() error {
	m.connectionStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mqtt_connection_status",
			Help: "Current MQTT connection status (1 = connected, 0 = disconnected)",
		},
	)

	m.messagesDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_messages_delivered_total",
			Help: "Total number of MQTT messages delivered",
		},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqtt_errors_total",
			Help: "Total number of MQTT errors",
		},
		[]string{"type"}, // type: connection, publish
	)

	m.messageSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mqtt_message_size_bytes",
			Help:    "Size of published MQTT messages",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	m.reconnectAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_reconnect_attempts_total",
			Help: "Total number of MQTT reconnection attempts",
		},
	)

	return nil
}

// Describe implements the prometheus.Collector interface
func (m *MQTTMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.connectionStatus.Describe(ch)
	m.messagesDeliveredTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.messageSize.Describe(ch)
	m.reconnectAttemptsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *MQTTMetrics) Collect(ch chan<- prometheus.Metric) {
	m.connectionStatus.Collect(ch)
	m.messagesDeliveredTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.messageSize.Collect(ch)
	m.reconnectAttemptsTotal.Collect(ch)
}

// UpdateConnectionStatus updates the connection status gauge
func (m *MQTTMetrics) UpdateConnectionStatus(connected bool) {
	if connected {
		m.connectionStatus.Set(1)
	} else {
		m.connectionStatus.Set(0)
	}
}

// IncrementMessagesDelivered increments the delivered message counter
func (m *MQTTMetrics) IncrementMessagesDelivered() {
	m.messagesDeliveredTotal.Inc()
}

// IncrementErrors increments the error counter for the given error type
func (m *MQTTMetrics) IncrementErrors(errorType string) {
	m.errorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveMessageSize records the size of a published message
func (m *MQTTMetrics) ObserveMessageSize(sizeBytes float64) {
	m.messageSize.Observe(sizeBytes)
}

// IncrementReconnectAttempts increments the reconnect attempt counter
func (m *MQTTMetrics) IncrementReconnectAttempts() {
	m.reconnectAttemptsTotal.Inc()
}
