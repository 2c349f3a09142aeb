package observability

import (
	"context"
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

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthChecker is a function that performs a health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth is the aggregate served by `flowstate health`, the MCP
// health tool and the worker's /healthz.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthRegistry holds the checks of the store, broker and background
// components of one process.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry. With no checks registered
// the process reports healthy.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces the checker for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// GetOverallHealth runs every check concurrently. Any unhealthy component
// makes the process unhealthy; otherwise any degraded one degrades it.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			result := checker(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	return OverallHealth{
		Status:    worstStatus(results),
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func worstStatus(results map[string]HealthCheckResult) HealthStatus {
	status := HealthStatusHealthy
	for _, result := range results {
		switch result.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// PingChecker reports failure as the given status when ping returns an
// error. Required dependencies fail as unhealthy, optional ones as degraded.
func PingChecker(component string, failure HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{
				Status:  failure,
				Message: component + " check failed: " + err.Error(),
			}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " healthy",
		}
	}
}

// StoreHealthChecker checks the activity store. The store is required.
func StoreHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("store", HealthStatusUnhealthy, ping)
}

// RabbitMQHealthChecker checks the event broker. Events are best effort, so
// a broker failure only degrades the service.
func RabbitMQHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("rabbitmq", HealthStatusDegraded, ping)
}

// RunningChecker reports whether a background component is running.
func RunningChecker(component string, isRunning func() bool) HealthChecker {
	return func(context.Context) HealthCheckResult {
		if !isRunning() {
			return HealthCheckResult{
				Status:  HealthStatusUnhealthy,
				Message: component + " is not running",
			}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " running",
		}
	}
}
