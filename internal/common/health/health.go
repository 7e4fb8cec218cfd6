// Package health serves liveness and readiness endpoints backed by
// dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp       Status = "UP"
	StatusDegraded Status = "DEGRADED"
	StatusDown     Status = "DOWN"
)

// Check represents a single health check
type Check struct {
	Name   string         `json:"name"`
	Status Status         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
}

// HealthResponse represents the health endpoint response
type HealthResponse struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks,omitempty"`
}

// CheckFunc performs one health check. It must return before ctx ends.
type CheckFunc func(ctx context.Context) Check

// DefaultCheckTimeout bounds each check run by the handlers
const DefaultCheckTimeout = 2 * time.Second

// Checker manages health checks for the application
type Checker struct {
	mu              sync.RWMutex
	livenessChecks  []CheckFunc
	readinessChecks []CheckFunc
	timeout         time.Duration
}

// NewChecker creates a new health checker
func NewChecker() *Checker {
	return &Checker{timeout: DefaultCheckTimeout}
}

// AddLivenessCheck adds a liveness check
func (c *Checker) AddLivenessCheck(check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.livenessChecks = append(c.livenessChecks, check)
}

// AddReadinessCheck adds a readiness check
func (c *Checker) AddReadinessCheck(check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readinessChecks = append(c.readinessChecks, check)
}

// run executes checks concurrently. Any DOWN check makes the response DOWN;
// a DEGRADED check only degrades it.
func (c *Checker) run(ctx context.Context, checks []CheckFunc) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make([]Check, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check CheckFunc) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, check)
	}
	wg.Wait()

	response := HealthResponse{Status: StatusUp, Checks: results}
	for _, check := range results {
		switch check.Status {
		case StatusDown:
			response.Status = StatusDown
		case StatusDegraded:
			if response.Status == StatusUp {
				response.Status = StatusDegraded
			}
		}
	}
	return response
}

func (c *Checker) snapshot(liveness, readiness bool) []CheckFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var checks []CheckFunc
	if liveness {
		checks = append(checks, c.livenessChecks...)
	}
	if readiness {
		checks = append(checks, c.readinessChecks...)
	}
	return checks
}

// GetLiveness returns the liveness status
func (c *Checker) GetLiveness(ctx context.Context) HealthResponse {
	return c.run(ctx, c.snapshot(true, false))
}

// GetReadiness returns the readiness status
func (c *Checker) GetReadiness(ctx context.Context) HealthResponse {
	return c.run(ctx, c.snapshot(false, true))
}

// GetHealth returns the combined health status
func (c *Checker) GetHealth(ctx context.Context) HealthResponse {
	return c.run(ctx, c.snapshot(true, true))
}

// HandleHealth handles the /q/health endpoint
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, c.GetHealth(r.Context()))
}

// HandleLive handles the /q/health/live endpoint
func (c *Checker) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, c.GetLiveness(r.Context()))
}

// HandleReady handles the /q/health/ready endpoint
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, c.GetReadiness(r.Context()))
}

func writeResponse(w http.ResponseWriter, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	if response.Status == StatusDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

// PingCheck reports a dependency UP when ping succeeds
func PingCheck(name string, ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		if err := ping(ctx); err != nil {
			return Check{
				Name:   name,
				Status: StatusDown,
				Data:   map[string]any{"error": err.Error()},
			}
		}
		return Check{Name: name, Status: StatusUp}
	}
}

// MongoDBCheck creates a health check for MongoDB
func MongoDBCheck(ping func(ctx context.Context) error) CheckFunc {
	return PingCheck("MongoDB", ping)
}

// RedisCheck creates a health check for the Redis lock backend
func RedisCheck(ping func(ctx context.Context) error) CheckFunc {
	return PingCheck("Redis", ping)
}

// BreakerCheck reports a notification transport whose circuit breaker is
// open as DEGRADED. Deliveries are best effort, so an open breaker never
// takes the service out of rotation.
func BreakerCheck(transport string, state func() string) CheckFunc {
	return func(ctx context.Context) Check {
		s := state()
		check := Check{
			Name:   "Notifications",
			Status: StatusUp,
			Data:   map[string]any{"transport": transport, "breaker": s},
		}
		if s == "open" {
			check.Status = StatusDegraded
		}
		return check
	}
}
