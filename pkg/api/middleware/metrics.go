package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// MetricsRecorder is an interface for recording HTTP metrics.
// *metrics.Registry implements it.
type MetricsRecorder interface {
	RecordHTTPRequest(method, route, status string, duration time.Duration)
	RecordResponseSize(method, route string, size float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()
}

// RouteFunc maps a request to a bounded route label, e.g. "/api/v1/pockets/{n}".
type RouteFunc func(*http.Request) string

// Metrics tracks HTTP request metrics. route keeps label cardinality
// bounded; a nil route labels every request with its raw path.
func Metrics(recorder MetricsRecorder, route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			recorder.IncHTTPRequestsInFlight()
			defer recorder.DecHTTPRequestsInFlight()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			label := r.URL.Path
			if route != nil {
				label = route(r)
			}
			recorder.RecordHTTPRequest(r.Method, label, strconv.Itoa(rec.statusCode), time.Since(start))
			recorder.RecordResponseSize(r.Method, label, float64(rec.bytesWritten))
		})
	}
}
