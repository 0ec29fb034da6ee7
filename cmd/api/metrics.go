package main

import (
	"sync"

	appscans "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/scans"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/middleware"
)

// lifecycleMetrics turns controller snapshots into scan counters. Snapshots
// from older generations are ignored.
type lifecycleMetrics struct {
	mu     sync.Mutex
	gen    uint64
	active bool

	started, completed, failed, abandoned func()
}

func newLifecycleMetrics() *lifecycleMetrics {
	return &lifecycleMetrics{
		started:   middleware.ScanStarted,
		completed: middleware.ScanCompleted,
		failed:    middleware.ScanFailed,
		abandoned: middleware.ScanAbandoned,
	}
}

func (m *lifecycleMetrics) observe(s appscans.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Generation < m.gen {
		return
	}
	if s.Generation > m.gen {
		if m.active {
			m.abandoned()
			m.active = false
		}
		m.gen = s.Generation
	}
	switch s.State {
	case appscans.StateSubmitting, appscans.StatePolling:
		if !m.active {
			m.started()
			m.active = true
		}
	case appscans.StateCompleted:
		if m.active {
			m.completed()
			m.active = false
		}
	case appscans.StateFailed:
		if m.active {
			m.failed()
			m.active = false
		}
	}
}
