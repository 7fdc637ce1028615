package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pockets_analyses_total",
			Help: "Total number of pocket analysis runs",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pockets_analysis_duration_seconds",
			Help:    "Pocket analysis duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.ModelEntities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pockets_model_entities",
			Help: "Entities in the most recently analysed model",
		},
	)

	r.ModelConcaveLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pockets_model_concave_links",
			Help: "Distinct concave entity pairs in the most recently analysed model",
		},
	)

	r.ModelPockets = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pockets_model_pockets",
			Help: "Pockets found in the most recently analysed model",
		},
	)

	r.ModelLoadedTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pockets_model_loaded_timestamp_seconds",
			Help: "Unix time the current model was loaded",
		},
	)

	r.ReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pockets_reloads_total",
			Help: "Model reload attempts by trigger and status",
		},
		[]string{"trigger", "status"},
	)
}
