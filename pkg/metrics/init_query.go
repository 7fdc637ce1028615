package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.PocketQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pockets_queries_total",
			Help: "Pocket lookups served, by surface and result",
		},
		[]string{"surface", "result"},
	)
}

func (r *Registry) initNotifyMetrics() {
	r.NotificationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pockets_notifications_total",
			Help: "Model loaded notifications published",
		},
		[]string{"status"},
	)
}
