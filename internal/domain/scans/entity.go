package scans

import (
	"time"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// Status enum
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SourceKind how the code was handed to the backend
type SourceKind string

const (
	SourceRepository SourceKind = "repository"
	SourceInline     SourceKind = "inline"
)

// Scan is the history record written when a scan reaches a terminal state.
type Scan struct {
	ID          analysis.ScanID       `json:"id"`
	Generation  uint64                `json:"generation"`
	Source      SourceKind            `json:"source"`
	Target      string                `json:"target,omitempty"`
	Language    analysis.Language     `json:"language"`
	Status      Status                `json:"status"`
	Message     string                `json:"message,omitempty"`
	Files       int                   `json:"files"`
	Summary     *analysis.ScanSummary `json:"summary,omitempty"`
	TriggeredAt time.Time             `json:"triggered_at"`
	FinishedAt  time.Time             `json:"finished_at"`
}

// DurationMS wall time between submit and the terminal poll.
func (s *Scan) DurationMS() int64 {
	if s.FinishedAt.IsZero() || s.TriggeredAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.TriggeredAt).Milliseconds()
}
