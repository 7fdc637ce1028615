package metrics

import (
	"runtime"
	"time"
)

// RecordAnalysis records one analysis run. On success the model gauges are
// replaced with the new model's figures.
func (r *Registry) RecordAnalysis(status string, duration time.Duration, entities, concaveLinks, pockets int) {
	r.AnalysesTotal.WithLabelValues(status).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())

	if status != "success" {
		return
	}
	r.ModelEntities.Set(float64(entities))
	r.ModelConcaveLinks.Set(float64(concaveLinks))
	r.ModelPockets.Set(float64(pockets))
	r.ModelLoadedTimestamp.Set(float64(time.Now().Unix()))
}

// RecordReload records a reload attempt triggered by "signal", "api" or "startup".
func (r *Registry) RecordReload(trigger, status string) {
	r.ReloadsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordPocketQuery records a lookup; hit tells whether the entity was in a pocket.
func (r *Registry) RecordPocketQuery(surface string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.PocketQueriesTotal.WithLabelValues(surface, result).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordResponseSize records the body size of an HTTP response
func (r *Registry) RecordResponseSize(method, route string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, route).Observe(size)
}

// IncHTTPRequestsInFlight marks an HTTP request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks an HTTP request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordNotification records a publish attempt
func (r *Registry) RecordNotification(status string) {
	r.NotificationsTotal.WithLabelValues(status).Inc()
}

// UpdateSystemMetrics samples process figures
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
