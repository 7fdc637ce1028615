package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/api/middleware"
	"github.com/dd0wney/cluso-pockets/pkg/graphql"
	"github.com/dd0wney/cluso-pockets/pkg/health"
	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
)

// NewServer creates a server with no model loaded. Call Reload to load one.
func NewServer(cfg Config, opts ...Option) (*Server, error) {
	if cfg.ModelDir == "" {
		return nil, errors.New("model directory is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		cfg:       cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger = s.logger.With(logging.Component("api"))
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}

	schema, err := graphql.GenerateSchema(&s.holder, graphql.SchemaConfig{Metrics: s.metrics})
	if err != nil {
		return nil, fmt.Errorf("generate GraphQL schema: %w", err)
	}
	// CORS is applied by the middleware chain
	s.graphqlHandler = graphql.NewGraphQLHandler(schema, graphql.WithCORSOrigin(""))

	if cfg.ReloadPerMinute > 0 {
		burst := cfg.ReloadPerMinute / 3
		if burst < 1 {
			burst = 1
		}
		s.reloadLimiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.ReloadPerMinute, burst))
	}

	s.initHealthChecks()
	return s, nil
}

func (s *Server) initHealthChecks() {
	hc := health.NewHealthChecker()

	hc.RegisterCheck("model", health.ModelCheck(s.holder.Current))
	hc.RegisterCheck("reload", health.ReloadCheck(s.LastReloadError))
	hc.RegisterCheck("memory", health.MemoryCheck(health.MemoryStats))

	hc.RegisterReadinessCheck("model", health.ModelCheck(s.holder.Current))

	hc.RegisterLivenessCheck("process", health.SimpleCheck("process"))

	s.healthChecker = hc
}
