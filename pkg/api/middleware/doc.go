// Package middleware provides the HTTP middleware of the pocket API server.
//
// Files by concern:
//
//   - recovery.go: panic recovery
//   - logging.go: structured request logging
//   - cors.go: Cross-Origin Resource Sharing
//   - body_limit.go: request body size limit
//   - request_id.go: request ID generation and propagation
//   - ratelimit.go: per-client token bucket, used to throttle model reloads
//   - metrics.go: HTTP metrics with bounded route labels
//
// Every middleware has the form func(http.Handler) http.Handler:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.CORS(middleware.NewCORSConfig("*"))(handler)
package middleware
