package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/api/middleware"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the full HTTP surface with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	// Pocket queries
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/pockets", s.handlePockets)
	mux.HandleFunc("GET /api/v1/pockets/{n}", s.handlePocket)
	mux.HandleFunc("GET /api/v1/entities/{id}", s.handleEntity)

	// Model reload
	reload := middleware.RateLimit(s.reloadLimiter, s.logger)(http.HandlerFunc(s.handleReload))
	mux.Handle("POST /api/v1/reload", reload)

	// GraphQL endpoint
	mux.Handle("/graphql", s.graphqlHandler)

	route := func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	}

	var h http.Handler = mux
	h = middleware.BodySizeLimit(s.cfg.MaxBodyBytes)(h)
	h = middleware.CORS(middleware.NewCORSConfig(s.cfg.CORSOrigin))(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.Metrics(s.metrics, route)(h)
	h = middleware.PanicRecovery(s.logger)(h)
	return h
}

// Index returns the index being served, or nil before the first load
func (s *Server) Index() *pocket.Index {
	return s.holder.Current()
}

// Metrics returns the server's metrics registry
func (s *Server) Metrics() *metrics.Registry {
	return s.metrics
}

// LastReloadError returns the error of the most recent reload, nil if it succeeded
func (s *Server) LastReloadError() error {
	s.lastErrMu.RLock()
	defer s.lastErrMu.RUnlock()
	return s.lastErr
}

// RunSystemMetrics samples process metrics every interval until ctx is done
func (s *Server) RunSystemMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.metrics.UpdateSystemMetrics(s.startTime)
	for {
		select {
		case <-ticker.C:
			s.metrics.UpdateSystemMetrics(s.startTime)
		case <-ctx.Done():
			return
		}
	}
}
