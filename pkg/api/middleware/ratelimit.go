package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64       // Rate of token replenishment
	BurstSize         int           // Maximum burst size (bucket capacity)
	ClientExpiration  time.Duration // Idle buckets older than this are swept
	MaxClients        int           // Upper bound on tracked clients
}

// PerMinute returns a config allowing n requests per minute with a burst of burst.
func PerMinute(n, burst int) *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: float64(n) / 60,
		BurstSize:         burst,
		ClientExpiration:  10 * time.Minute,
		MaxClients:        10000,
	}
}

// tokenBucket implements the token bucket rate limiting algorithm
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	config  RateLimitConfig
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*tokenBucket
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = PerMinute(6, 2)
	}
	return &RateLimiter{
		config:  *config,
		now:     time.Now,
		clients: make(map[string]*tokenBucket),
	}
}

// Allow reports whether the client may proceed, consuming a token if so.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	bucket, ok := rl.clients[clientID]
	if !ok {
		if rl.config.MaxClients > 0 && len(rl.clients) >= rl.config.MaxClients {
			rl.sweep(now)
			if len(rl.clients) >= rl.config.MaxClients {
				return false
			}
		}
		bucket = &tokenBucket{tokens: float64(rl.config.BurstSize), lastRefill: now}
		rl.clients[clientID] = bucket
	}

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * rl.config.RequestsPerSecond
	if bucket.tokens > float64(rl.config.BurstSize) {
		bucket.tokens = float64(rl.config.BurstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

// sweep drops idle buckets. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for id, b := range rl.clients {
		if now.Sub(b.lastRefill) > rl.config.ClientExpiration {
			delete(rl.clients, id)
		}
	}
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// ClientIP identifies a client by the remote address host.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit applies limiter per client. A nil limiter disables limiting.
func RateLimit(limiter *RateLimiter, logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientIP(r)
			if !limiter.Allow(clientID) {
				logger.Warn("rate limit exceeded",
					logging.String("client", clientID), logging.String("path", r.URL.Path))

				retry := 1
				if rps := limiter.config.RequestsPerSecond; rps > 0 && rps < 1 {
					retry = int(1/rps + 0.5)
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
