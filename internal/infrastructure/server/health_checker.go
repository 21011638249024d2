package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "UP"
	HealthStatusDown HealthStatus = "DOWN"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// HealthReport represents the overall health report
type HealthReport struct {
	Status     string                      `json:"status"`
	Timestamp  time.Time                   `json:"timestamp"`
	Components map[string]*ComponentHealth `json:"components"`
}

// HealthCheckFunc defines the signature for health check functions
type HealthCheckFunc func(ctx context.Context) error

// Pinger is anything that can report reachability, such as a document store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker runs registered checks concurrently and aggregates them.
type HealthChecker struct {
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]HealthCheckFunc
}

// NewHealthChecker creates a health checker whose checks each get timeout to finish.
func NewHealthChecker(logger *zap.Logger, timeout time.Duration) *HealthChecker {
	return &HealthChecker{
		logger:  logger,
		timeout: timeout,
		checks:  make(map[string]HealthCheckFunc),
	}
}

// RegisterHealthCheck registers a named check
func (hc *HealthChecker) RegisterHealthCheck(name string, check HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// RegisterPinger registers p.Ping as a named check.
func (hc *HealthChecker) RegisterPinger(name string, p Pinger) {
	hc.RegisterHealthCheck(name, p.Ping)
}

// CheckHealth performs all health checks
func (hc *HealthChecker) CheckHealth(ctx context.Context) *HealthReport {
	hc.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	report := &HealthReport{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]*ComponentHealth, len(checks)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			health := &ComponentHealth{
				Status:    HealthStatusUp,
				Timestamp: start.UTC(),
				Duration:  time.Since(start),
			}
			if err != nil {
				health.Status = HealthStatusDown
				health.Error = err.Error()
				hc.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			}

			mu.Lock()
			report.Components[name] = health
			if health.Status == HealthStatusDown {
				report.Status = "down"
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return report
}

// Handler serves the health report, answering 503 when any component is down.
func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := hc.CheckHealth(c.Request.Context())
		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
