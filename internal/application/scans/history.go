package scans

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gitsight/go-vcsurl"
	"github.com/hashicorp/go-hclog"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
)

const recordTimeout = 5 * time.Second

// HistoryRecorder persists terminal scans and their failures. Persistence
// problems are logged and never reach the lifecycle.
type HistoryRecorder struct {
	Scans    domain.Repository
	Failures scanerrors.Repository
	Logger   hclog.Logger
}

func (h *HistoryRecorder) Record(ctx context.Context, snap Snapshot, results *analysis.ScanResults) {
	logger := h.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	rec := historyRecord(snap, results)
	if h.Scans != nil && rec.ID != "" {
		if err := h.Scans.Save(ctx, rec); err != nil {
			logger.Warn("failed to save scan history", "scan_id", rec.ID, "error", err)
		}
	}
	if h.Failures != nil && snap.Err != nil {
		if err := h.Failures.Save(ctx, failureRecord(snap)); err != nil {
			logger.Warn("failed to save scan failure", "scan_id", snap.Job.ID, "error", err)
		}
	}
}

func historyRecord(snap Snapshot, results *analysis.ScanResults) *domain.Scan {
	rec := &domain.Scan{
		ID:          snap.Job.ID,
		Generation:  snap.Generation,
		Language:    snap.Request.Language,
		Status:      domain.StatusCompleted,
		Message:     snap.Job.Message,
		TriggeredAt: snap.StartedAt,
		FinishedAt:  snap.FinishedAt,
	}
	if snap.Request.RepositoryURL != "" {
		rec.Source = domain.SourceRepository
		rec.Target = RepositoryLabel(snap.Request.RepositoryURL)
	} else {
		rec.Source = domain.SourceInline
	}
	if snap.State == StateFailed {
		rec.Status = domain.StatusFailed
		rec.Message = snap.Error
	}
	if results != nil {
		rec.Files = len(results.Files)
		rec.Summary = results.Summary
	}
	return rec
}

func failureRecord(snap Snapshot) *scanerrors.ScanError {
	e := &scanerrors.ScanError{
		ScanID:    string(snap.Job.ID),
		Message:   snap.Error,
		Phase:     "poll",
		CreatedAt: snap.FinishedAt,
	}
	if snap.Job.ID == "" {
		e.Phase = "submit"
	}

	var (
		pe *analysis.ProtocolError
		te *analysis.TransportError
		sf *analysis.ScanFailure
	)
	details := map[string]any{}
	switch {
	case errors.As(snap.Err, &sf):
		e.Kind = scanerrors.KindScan
	case errors.As(snap.Err, &pe):
		e.Kind = scanerrors.KindProtocol
		details["field"] = pe.Field
	case errors.As(snap.Err, &te):
		e.Kind = scanerrors.KindTransport
		if te.StatusCode != 0 {
			details["status_code"] = te.StatusCode
		}
	default:
		e.Kind = scanerrors.KindTransport
	}
	if len(details) > 0 {
		b, _ := json.Marshal(details)
		e.DetailsJSON = string(b)
	}
	return e
}

// RepositoryLabel shortens a repository URL to host/owner/name when it is a
// recognised VCS URL, otherwise returns it unchanged.
func RepositoryLabel(raw string) string {
	info, err := vcsurl.Parse(raw)
	if err != nil || info.ID == "" {
		return raw
	}
	return info.ID
}
