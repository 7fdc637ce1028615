package api

import (
	"sync"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/api/middleware"
	"github.com/dd0wney/cluso-pockets/pkg/graphql"
	"github.com/dd0wney/cluso-pockets/pkg/health"
	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
)

// Config is what the server needs to load and serve a model
type Config struct {
	ModelDir        string
	Delimiter       string
	StrictNeighbors bool
	CORSOrigin      string
	ReloadPerMinute int   // 0 disables reload throttling
	MaxBodyBytes    int64 // 0 uses 1 MiB
}

// Server serves pocket queries for the most recently loaded model
type Server struct {
	cfg            Config
	holder         pocket.Holder
	logger         logging.Logger
	metrics        *metrics.Registry
	notifier       notify.Notifier
	healthChecker  *health.HealthChecker
	graphqlHandler *graphql.GraphQLHandler
	reloadLimiter  *middleware.RateLimiter
	startTime      time.Time

	reloadMu sync.Mutex // Serialises reloads

	lastErrMu sync.RWMutex
	lastErr   error // Outcome of the most recent reload
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the registry exposed on /metrics
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithNotifier sets where model-loaded events are published
func WithNotifier(n notify.Notifier) Option {
	return func(s *Server) { s.notifier = n }
}
