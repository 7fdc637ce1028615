package health

import (
	"context"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/pocket"
)

// SimpleCheck returns a check that always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{Name: name, Status: StatusHealthy}
	}
}

// ModelCheck reports whether an analysed model is being served. No index
// means the service cannot answer pocket queries and is unhealthy.
func ModelCheck(current func() *pocket.Index) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: "model"}

		ix := current()
		if ix == nil {
			check.Status = StatusUnhealthy
			check.Message = "No model loaded"
			return check
		}

		stats := ix.Stats()
		check.Status = StatusHealthy
		check.Message = "Model loaded"
		check.Details = map[string]any{
			"run_id":    ix.RunID(),
			"loaded_at": ix.CreatedAt().UTC().Format(time.RFC3339),
			"entities":  stats.Entities,
			"pockets":   stats.Pockets,
		}
		return check
	}
}

// ReloadCheck reports the outcome of the most recent reload. A failed reload
// while an older model is still served is degraded, not unhealthy.
func ReloadCheck(lastErr func() error) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: "reload"}
		if err := lastErr(); err != nil {
			check.Status = StatusDegraded
			check.Message = "Last reload failed"
			check.Details = map[string]any{"error": err.Error()}
			return check
		}
		check.Status = StatusHealthy
		check.Message = "Last reload succeeded"
		return check
	}
}

// MemoryStats reads heap figures from the runtime.
func MemoryStats() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys == 0 {
			check.Status = StatusHealthy
			check.Message = "Memory usage unknown"
			return check
		}

		if usage := float64(alloc) / float64(sys) * 100; usage > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
