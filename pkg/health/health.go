// Package health probes the external dependencies a run needs (Postgres,
// Redis, Kafka) before any work starts, and serves the same probes over HTTP
// next to the metrics endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

// Status is the health of a dependency or of the whole run.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Pinger is satisfied by every dependency client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check probes one dependency.
type Check func(ctx context.Context) error

// ComponentHealth is the outcome of one check.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency"`
}

// Report aggregates every check.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Checker runs registered checks concurrently, each under its own deadline.
type Checker struct {
	timeout time.Duration
	mu      sync.RWMutex
	checks  map[string]Check
	logger  *slog.Logger
}

// NewChecker creates a Checker whose checks each get timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		timeout: timeout,
		checks:  make(map[string]Check),
		logger:  slog.Default().With("component", "health"),
	}
}

// Register adds a named check.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RegisterPinger adds a check calling p.Ping.
func (c *Checker) RegisterPinger(name string, p Pinger) {
	c.Register(name, p.Ping)
}

// Run executes every check and returns the report. The overall status is
// down if any component is down.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := resilience.WithTimeout(ctx, c.timeout, name, check)
			result := ComponentHealth{
				Status:  StatusUp,
				Latency: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				result.Status = StatusDown
				result.Message = err.Error()
			}
			mu.Lock()
			report.Components[name] = result
			if result.Status == StatusDown {
				report.Status = StatusDown
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return report
}

// Preflight runs every check and fails with ErrDependencyDown naming each
// unreachable dependency. The report is returned either way.
func (c *Checker) Preflight(ctx context.Context) (Report, error) {
	report := c.Run(ctx)
	if report.Status == StatusUp {
		c.logger.Info("dependencies reachable", "count", len(report.Components))
		return report, nil
	}
	var down []string
	for name, comp := range report.Components {
		if comp.Status == StatusDown {
			c.logger.Error("dependency unreachable", "dependency", name, "error", comp.Message)
			down = append(down, name+" ("+comp.Message+")")
		}
	}
	slices.Sort(down)
	return report, apperrors.Newf(apperrors.ErrDependencyDown, apperrors.ExitDependency,
		"%s", strings.Join(down, "; "))
}

// LiveHandler always answers 200 while the process runs.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	}
}

// ReadyHandler answers 200 when every dependency is up and 503 otherwise.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUp {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	}
}
