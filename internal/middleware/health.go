package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

// HealthChecker is one dependency probed by /health and /ready
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function, e.g. a storage ping
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the history database
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// runChecks probes every checker in parallel and collects per-name results.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) map[string]CheckStatus {
	var (
		mu  sync.Mutex
		out = make(map[string]CheckStatus, len(checkers))
	)
	g, ctx := errgroup.WithContext(ctx)
	for name, checker := range checkers {
		g.Go(func() error {
			st := CheckStatus{Status: "healthy"}
			if err := checker.Check(ctx); err != nil {
				st = CheckStatus{Status: "unhealthy", Message: err.Error()}
			}
			mu.Lock()
			out[name] = st
			mu.Unlock()
			// never abort the siblings
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func failing(checks map[string]CheckStatus) []string {
	var names []string
	for name, st := range checks {
		if st.Status != "healthy" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HealthHandler reports every dependency, 503 when any of them is down
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    runChecks(ctx, checkers),
		}
		statusCode := http.StatusOK
		if len(failing(health.Checks)) > 0 {
			health.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
		writeStatus(w, statusCode, health)
	}
}

// ReadinessHandler only names the failing dependencies
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		down := failing(runChecks(ctx, checkers))
		if len(down) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "failing": down})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready", "timestamp": time.Now()})
	}
}

// LivenessHandler process is up
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
