package health

import (
	"context"
	"time"
)

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime:   time.Now(),
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a check reported by the overall health endpoint
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.register(hc.checks, name, check)
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.register(hc.readyChecks, name, check)
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.register(hc.liveChecks, name, check)
}

func (hc *HealthChecker) register(set map[string]CheckFunc, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	set[name] = check
}

// Check performs all health checks
func (hc *HealthChecker) Check(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.checks)
}

// CheckReadiness performs readiness checks
func (hc *HealthChecker) CheckReadiness(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.readyChecks)
}

// CheckLiveness performs liveness checks
func (hc *HealthChecker) CheckLiveness(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.liveChecks)
}

// Uptime returns how long the checker has existed.
func (hc *HealthChecker) Uptime() time.Duration {
	return time.Since(hc.startTime)
}

func (hc *HealthChecker) performChecks(ctx context.Context, set map[string]CheckFunc) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(set)),
		Uptime:    hc.Uptime().Seconds(),
	}

	for name, checkFunc := range set {
		start := time.Now()
		check := checkFunc(ctx)
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}

		response.Checks[name] = check
		response.Status = worst(response.Status, check.Status)
	}

	return response
}

// worst returns the more severe of two statuses
func worst(a, b Status) Status {
	if a == StatusUnhealthy || b == StatusUnhealthy {
		return StatusUnhealthy
	}
	if a == StatusDegraded || b == StatusDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}
