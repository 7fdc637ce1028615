package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Analysis Metrics
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	ModelEntities        prometheus.Gauge
	ModelConcaveLinks    prometheus.Gauge
	ModelPockets         prometheus.Gauge
	ModelLoadedTimestamp prometheus.Gauge
	ReloadsTotal         *prometheus.CounterVec

	// Query Metrics
	PocketQueriesTotal *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Notification Metrics
	NotificationsTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initAnalysisMetrics()
	r.initQueryMetrics()
	r.initHTTPMetrics()
	r.initNotifyMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
