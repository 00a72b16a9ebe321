package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the outcome of one check.
type HealthCheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker performs one check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth summarizes every registered check.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthRegistry runs named health checks.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces the checker for name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Check runs every checker sequentially in name order.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	out := OverallHealth{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]HealthCheckResult, len(names)),
	}
	for _, name := range names {
		start := time.Now()
		result := checkers[name](ctx)
		result.Duration = time.Since(start)
		out.Checks[name] = result

		switch result.Status {
		case HealthStatusUnhealthy:
			out.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if out.Status == HealthStatusHealthy {
				out.Status = HealthStatusDegraded
			}
		}
	}
	return out
}

// Handler serves the overall health as JSON. Unhealthy maps to 503.
func (r *HealthRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		health := r.Check(req.Context())
		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
}

// PingChecker reports failure of ping with the given status. Use
// HealthStatusUnhealthy for required dependencies such as the database and
// HealthStatusDegraded for optional ones such as Redis or the broker.
func PingChecker(name string, failure HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failure, Message: name + ": " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy}
	}
}
