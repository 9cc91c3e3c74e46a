// analysis.go: metrics for the video analysis pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics contains Prometheus metrics for analysis operations
type AnalysisMetrics struct {
	registry *prometheus.Registry

	analysesTotal           *prometheus.CounterVec
	analysisDuration        *prometheus.HistogramVec
	incidentsGeneratedTotal *prometheus.CounterVec
	peopleCountGauge        prometheus.Gauge
	overallDensityGauge     prometheus.Gauge
}

// NewAnalysisMetrics creates and registers new analysis metrics
func NewAnalysisMetrics(registry *prometheus.Registry) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AnalysisMetrics) initMetrics() error {
	m.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of video analyses",
		},
		[]string{"status"}, // status: success, error
	)

	m.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Time taken to analyze a video",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	m.incidentsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incidents_generated_total",
			Help: "Total number of incidents generated by analyses",
		},
		[]string{"severity"},
	)

	m.peopleCountGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_last_people_count",
			Help: "People count of the most recent analysis",
		},
	)

	m.overallDensityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_last_overall_density",
			Help: "Overall crowd density of the most recent analysis",
		},
	)

	return nil
}

// Describe implements the prometheus.Collector interface
func (m *AnalysisMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.analysesTotal.Describe(ch)
	m.analysisDuration.Describe(ch)
	m.incidentsGeneratedTotal.Describe(ch)
	m.peopleCountGauge.Describe(ch)
	m.overallDensityGauge.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *AnalysisMetrics) Collect(ch chan<- prometheus.Metric) {
	m.analysesTotal.Collect(ch)
	m.analysisDuration.Collect(ch)
	m.incidentsGeneratedTotal.Collect(ch)
	m.peopleCountGauge.Collect(ch)
	m.overallDensityGauge.Collect(ch)
}

// RecordAnalysis increments the analysis counter for the given status
func (m *AnalysisMetrics) RecordAnalysis(status string) {
	m.analysesTotal.WithLabelValues(status).Inc()
}

// RecordAnalysisDuration records the time taken to analyze a video
func (m *AnalysisMetrics) RecordAnalysisDuration(provider string, seconds float64) {
	m.analysisDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordIncident increments the generated incident counter for a severity
func (m *AnalysisMetrics) RecordIncident(severity string) {
	m.incidentsGeneratedTotal.WithLabelValues(severity).Inc()
}

// UpdateAnalysisGauges updates the gauges describing the most recent analysis
func (m *AnalysisMetrics) UpdateAnalysisGauges(peopleCount int, overallDensity float64) {
	m.peopleCountGauge.Set(float64(peopleCount))
	m.overallDensityGauge.Set(overallDensity)
}
