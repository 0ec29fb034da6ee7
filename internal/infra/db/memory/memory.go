// Package memory keeps history, failures and exports in process memory. It
// backs the service when no database is configured and doubles as a test
// fixture.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/exports"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
)

// ScanRepository in-memory scans.Repository
type ScanRepository struct {
	mu    sync.RWMutex
	byID  map[string]*scans.Scan
	order []string
}

func NewScanRepository() *ScanRepository {
	return &ScanRepository{byID: map[string]*scans.Scan{}}
}

func (r *ScanRepository) Save(_ context.Context, s *scans.Scan) error {
	cp := *s
	if cp.TriggeredAt.IsZero() {
		cp.TriggeredAt = time.Now()
	}
	if s.Summary != nil {
		sum := *s.Summary
		cp.Summary = &sum
	}
	id := string(s.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = &cp
	return nil
}

func (r *ScanRepository) Get(_ context.Context, id string) (*scans.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, analysis.ErrHistoryNotFound
	}
	cp := *s
	return &cp, nil
}

// Latest newest first by TriggeredAt, insertion order breaks ties
func (r *ScanRepository) Latest(_ context.Context, limit int) ([]*scans.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	out := make([]*scans.Scan, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		cp := *r.byID[r.order[i]]
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ScanErrorRepository in-memory scanerrors.Repository
type ScanErrorRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []*scanerrors.ScanError
}

func NewScanErrorRepository() *ScanErrorRepository { return &ScanErrorRepository{} }

func (r *ScanErrorRepository) Save(_ context.Context, e *scanerrors.ScanError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	cp := *e
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.items = append(r.items, &cp)
	return nil
}

func (r *ScanErrorRepository) ListByScan(_ context.Context, scanID string, limit int) ([]*scanerrors.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*scanerrors.ScanError
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].ScanID == scanID {
			cp := *r.items[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ExportRepository in-memory exports.Repository
type ExportRepository struct {
	mu    sync.RWMutex
	items []*exports.Export
}

func NewExportRepository() *ExportRepository { return &ExportRepository{} }

func (r *ExportRepository) Save(_ context.Context, e *exports.Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	for i, it := range r.items {
		if it.ID == e.ID {
			r.items[i] = &cp
			return nil
		}
	}
	r.items = append(r.items, &cp)
	return nil
}

// Paginate newest first
func (r *ExportRepository) Paginate(_ context.Context, page, pageSize int) ([]*exports.Export, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	offset := (page - 1) * pageSize
	var out []*exports.Export
	for i := len(r.items) - 1 - offset; i >= 0 && len(out) < pageSize; i-- {
		cp := *r.items[i]
		out = append(out, &cp)
	}
	return out, nil
}
