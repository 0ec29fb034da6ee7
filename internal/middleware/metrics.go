package middleware

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics process-wide counters served on /metrics
type Metrics struct {
	requests       atomic.Uint64
	inFlight       atomic.Int64
	succeeded      atomic.Uint64
	failed         atomic.Uint64
	scansSubmitted atomic.Uint64
	scansRunning   atomic.Int64
	scansCompleted atomic.Uint64
	scansFailed    atomic.Uint64
	scansAbandoned atomic.Uint64
	corrections    atomic.Uint64
	exports        atomic.Uint64
	started        time.Time
}

var globalMetrics = &Metrics{started: time.Now()}

// ScanStarted a submission was accepted for a new generation
func ScanStarted() {
	globalMetrics.scansSubmitted.Add(1)
	globalMetrics.scansRunning.Add(1)
}

// ScanCompleted the running generation finished with results
func ScanCompleted() {
	globalMetrics.scansCompleted.Add(1)
	globalMetrics.scansRunning.Add(-1)
}

// ScanFailed the running generation failed
func ScanFailed() {
	globalMetrics.scansFailed.Add(1)
	globalMetrics.scansRunning.Add(-1)
}

// ScanAbandoned the running generation was superseded or abandoned
func ScanAbandoned() {
	globalMetrics.scansAbandoned.Add(1)
	globalMetrics.scansRunning.Add(-1)
}

func IncrementCorrections() { globalMetrics.corrections.Add(1) }

func IncrementExports() { globalMetrics.exports.Add(1) }

// Snapshot current counter values plus runtime stats
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests": map[string]any{
			"total":       m.requests.Load(),
			"in_progress": m.inFlight.Load(),
			"success":     m.succeeded.Load(),
			"failed":      m.failed.Load(),
		},
		"scans": map[string]any{
			"submitted": m.scansSubmitted.Load(),
			"running":   m.scansRunning.Load(),
			"completed": m.scansCompleted.Load(),
			"failed":    m.scansFailed.Load(),
			"abandoned": m.scansAbandoned.Load(),
		},
		"corrections_served": m.corrections.Load(),
		"exports_total":      m.exports.Load(),
		"uptime_seconds":     time.Since(m.started).Seconds(),
		"memory": map[string]any{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"num_gc":      mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// GetMetrics snapshot of the process-wide counters
func GetMetrics() map[string]any {
	return globalMetrics.Snapshot()
}

// MetricsMiddleware counts requests, 4xx and 5xx as failed
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.requests.Add(1)
		globalMetrics.inFlight.Add(1)
		defer globalMetrics.inFlight.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			globalMetrics.succeeded.Add(1)
		} else {
			globalMetrics.failed.Add(1)
		}
	})
}

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, GetMetrics())
}
