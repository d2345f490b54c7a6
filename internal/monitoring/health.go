package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

var startTime = time.Now()

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck is the result of one check.
type HealthCheck struct {
	Name     string                 `json:"name"`
	Status   HealthStatus           `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Duration time.Duration          `json:"duration"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Critical bool                   `json:"critical"`
}

// HealthChecker defines the interface for health check functions
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
	Name() string
	IsCritical() bool
}

// HealthCheckFunc is a function that implements HealthChecker
type HealthCheckFunc struct {
	name     string
	checkFn  func(ctx context.Context) HealthCheck
	critical bool
}

// Check executes the health check function
func (h *HealthCheckFunc) Check(ctx context.Context) HealthCheck {
	return h.checkFn(ctx)
}

// Name returns the health check name
func (h *HealthCheckFunc) Name() string {
	return h.name
}

// IsCritical returns whether this check is critical
func (h *HealthCheckFunc) IsCritical() bool {
	return h.critical
}

// NewHealthCheckFunc creates a new health check function
func NewHealthCheckFunc(
	name string,
	critical bool,
	checkFn func(ctx context.Context) HealthCheck,
) *HealthCheckFunc {
	return &HealthCheckFunc{
		name:     name,
		checkFn:  checkFn,
		critical: critical,
	}
}

// HealthMonitor runs registered checks on demand.
type HealthMonitor struct {
	checks  map[string]HealthChecker
	mutex   sync.RWMutex
	logger  logging.Logger
	timeout time.Duration
	version string
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
	GoVersion string                 `json:"go_version"`
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor(logger logging.Logger, version string) *HealthMonitor {
	return &HealthMonitor{
		checks:  make(map[string]HealthChecker),
		logger:  logger.WithComponent("health"),
		timeout: 5 * time.Second,
		version: version,
	}
}

// RegisterCheck registers a health check, replacing one with the same name.
func (hm *HealthMonitor) RegisterCheck(checker HealthChecker) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()
	hm.checks[checker.Name()] = checker
}

// Check runs every registered check concurrently and aggregates the results.
func (hm *HealthMonitor) Check(ctx context.Context) HealthResponse {
	hm.mutex.RLock()
	checks := make([]HealthChecker, 0, len(hm.checks))
	for _, checker := range hm.checks {
		checks = append(checks, checker)
	}
	hm.mutex.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, hm.timeout)
	defer cancel()

	var wg sync.WaitGroup
	resultsChan := make(chan HealthCheck, len(checks))
	for _, checker := range checks {
		wg.Add(1)
		go func(checker HealthChecker) {
			defer wg.Done()

			start := time.Now()
			result := checker.Check(ctx)
			result.Name = checker.Name()
			result.Critical = checker.IsCritical()
			result.Duration = time.Since(start)
			resultsChan <- result
		}(checker)
	}
	wg.Wait()
	close(resultsChan)

	results := make(map[string]HealthCheck, len(checks))
	for result := range resultsChan {
		results[result.Name] = result
		if result.Status != HealthStatusHealthy {
			hm.logger.Warn(ctx, nil, "Health check failed",
				"name", result.Name,
				"status", string(result.Status),
				"message", result.Message)
		}
	}

	return HealthResponse{
		Status:    overallStatus(results),
		Timestamp: time.Now(),
		Version:   hm.version,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Checks:    results,
		GoVersion: runtime.Version(),
	}
}

// overallStatus is unhealthy if a critical check is, degraded if any other
// check is not healthy.
func overallStatus(checks map[string]HealthCheck) HealthStatus {
	status := HealthStatusHealthy
	for _, check := range checks {
		switch {
		case check.Critical && check.Status == HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case check.Status != HealthStatusHealthy:
			status = HealthStatusDegraded
		}
	}
	return status
}

// HTTPHandler returns an HTTP handler for health checks
func (hm *HealthMonitor) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(health); err != nil {
			hm.logger.Error(r.Context(), err, "Failed to encode health response")
		}
	}
}

// LibraryHealthChecker reports whether every page has a loaded document.
func LibraryHealthChecker(lib *pages.Library) HealthChecker {
	return NewHealthCheckFunc("content", true, func(ctx context.Context) HealthCheck {
		want := len(pages.All())
		got := lib.Count()
		check := HealthCheck{
			Status:   HealthStatusHealthy,
			Message:  "All pages loaded",
			Metadata: map[string]interface{}{"pages": got},
		}
		if got < want {
			check.Status = HealthStatusUnhealthy
			check.Message = fmt.Sprintf("%d of %d pages loaded", got, want)
		}
		return check
	})
}

// DirectoryHealthChecker reports whether a content directory is readable.
// A missing directory only degrades the service since embedded content
// still serves.
func DirectoryHealthChecker(path string) HealthChecker {
	return NewHealthCheckFunc("content_dir", false, func(ctx context.Context) HealthCheck {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			return HealthCheck{Status: HealthStatusDegraded, Message: fmt.Sprintf("Cannot read content directory: %v", err)}
		case !info.IsDir():
			return HealthCheck{Status: HealthStatusDegraded, Message: path + " is not a directory"}
		}
		return HealthCheck{Status: HealthStatusHealthy, Message: "Content directory is readable"}
	})
}

// GoroutineHealthChecker degrades when the goroutine count looks like a
// leak.
func GoroutineHealthChecker(limit int) HealthChecker {
	return NewHealthCheckFunc("goroutines", false, func(ctx context.Context) HealthCheck {
		n := runtime.NumGoroutine()
		check := HealthCheck{
			Status:   HealthStatusHealthy,
			Message:  "Goroutine count normal",
			Metadata: map[string]interface{}{"count": n},
		}
		if n > limit {
			check.Status = HealthStatusDegraded
			check.Message = fmt.Sprintf("High goroutine count: %d", n)
		}
		return check
	})
}
