package scans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/exports"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
)

// Service is the presentation-facing use-case layer over one Controller.
// Exporter and the repositories are optional.
type Service struct {
	Controller *Controller
	Exporter   analysis.Exporter
	Exports    exports.Repository
	History    domain.Repository
	Failures   scanerrors.Repository
	Clock      application.Clock
}

// Submit starts a new scan and supersedes the current one.
func (s *Service) Submit(ctx context.Context, req analysis.ScanRequest) (analysis.ScanID, uint64, error) {
	return s.Controller.Submit(ctx, req)
}

// Current snapshot of the lifecycle
func (s *Service) Current() Snapshot {
	return s.Controller.Snapshot()
}

// Abandon the scan being tracked
func (s *Service) Abandon() {
	s.Controller.Abandon()
}

// Results of the current scan, only once completed
func (s *Service) Results() (*analysis.ScanResults, error) {
	return s.Controller.Results()
}

// Correction returns the synthesized correction for a file of the current
// scan, computing it on first access.
func (s *Service) Correction(name string) (analysis.SynthesizedCorrection, error) {
	if _, err := s.Controller.Results(); err != nil {
		return analysis.SynthesizedCorrection{}, err
	}
	corr, ok, err := s.Controller.Cache().Correction(name)
	if err != nil {
		return analysis.SynthesizedCorrection{}, err
	}
	if !ok {
		return analysis.SynthesizedCorrection{}, analysis.ErrNoCorrection
	}
	return corr, nil
}

// Export uploads the patched source of a file and records the export.
func (s *Service) Export(ctx context.Context, name string) (*exports.Export, error) {
	if s.Exporter == nil {
		return nil, analysis.ErrExportDisabled
	}
	snap := s.Controller.Snapshot()
	corr, err := s.Correction(name)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	key := fmt.Sprintf("%s/%s-%s", snap.Job.ID, id, corr.FileName)
	url, err := s.Exporter.Export(ctx, key, []byte(corr.Text()))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", corr.FileName, err)
	}

	e := &exports.Export{
		ID:             exports.ExportID(id),
		ScanID:         string(snap.Job.ID),
		FileName:       corr.FileName,
		ObjectURL:      url,
		HasExplicitFix: corr.HasExplicitFix,
		CreatedAt:      s.now(),
	}
	if s.Exports != nil {
		if err := s.Exports.Save(ctx, e); err != nil {
			return e, fmt.Errorf("record export %s: %w", corr.FileName, err)
		}
	}
	return e, nil
}

// ListExports page through recorded exports
func (s *Service) ListExports(ctx context.Context, page, pageSize int) (*exports.Page, error) {
	if s.Exports == nil {
		return &exports.Page{Page: page, PageSize: pageSize}, nil
	}
	list, err := s.Exports.Paginate(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &exports.Page{Data: list, Page: page, PageSize: pageSize}, nil
}

// Latest ambil N scan terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if s.History == nil {
		return nil, nil
	}
	return s.History.Latest(ctx, limit)
}

// Get ambil 1 scan by id
func (s *Service) Get(ctx context.Context, id string) (*domain.Scan, error) {
	if s.History == nil {
		return nil, analysis.ErrHistoryNotFound
	}
	return s.History.Get(ctx, id)
}

// FailuresOf lists logged failures of one scan
func (s *Service) FailuresOf(ctx context.Context, scanID string, limit int) ([]*scanerrors.ScanError, error) {
	if s.Failures == nil {
		return nil, nil
	}
	return s.Failures.ListByScan(ctx, scanID, limit)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}
