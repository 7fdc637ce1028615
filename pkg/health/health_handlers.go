package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTPHandler returns an HTTP handler for the health check endpoint.
// Degraded still answers 200.
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return hc.handler(hc.Check, false)
}

// ReadinessHandler returns an HTTP handler for readiness checks
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return hc.handler(hc.CheckReadiness, true)
}

// LivenessHandler returns an HTTP handler for liveness checks
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return hc.handler(hc.CheckLiveness, true)
}

// handler serves one check set. Strict sets are binary: anything short of
// healthy is 503.
func (hc *HealthChecker) handler(run func(context.Context) Response, strict bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := run(r.Context())

		code := http.StatusOK
		switch {
		case response.Status == StatusUnhealthy:
			code = http.StatusServiceUnavailable
		case strict && response.Status != StatusHealthy:
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(response)
	}
}
