package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
)

// Logging logs one line per request with status and latency. Requests
// answered with 5xx are logged at error level.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", rec.statusCode),
				logging.Int("bytes", rec.bytesWritten),
				logging.Latency(time.Since(start)),
			}
			if id := GetRequestID(r); id != "" {
				fields = append(fields, logging.String("request_id", id))
			}

			if rec.statusCode >= http.StatusInternalServerError {
				logger.Error("request failed", fields...)
				return
			}
			logger.Debug("request served", fields...)
		})
	}
}
