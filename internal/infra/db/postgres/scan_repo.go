package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
)

type ScanRepository struct{ db *sql.DB }

func NewScanRepository(db *sql.DB) *ScanRepository { return &ScanRepository{db: db} }

const scanColumns = `id, generation, source, target, language, status, message, files,
       total, critical, high, medium, low, has_summary, triggered_at, finished_at`

// Save insert/update Scan record
func (r *ScanRepository) Save(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO sca_scans
(id, generation, source, target, language, status, message, files,
 total, critical, high, medium, low, has_summary, triggered_at, finished_at, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,
        $9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (id) DO UPDATE SET
 generation = EXCLUDED.generation,
 status = EXCLUDED.status,
 message = EXCLUDED.message,
 files = EXCLUDED.files,
 total = EXCLUDED.total,
 critical = EXCLUDED.critical,
 high = EXCLUDED.high,
 medium = EXCLUDED.medium,
 low = EXCLUDED.low,
 has_summary = EXCLUDED.has_summary,
 finished_at = EXCLUDED.finished_at,
 duration_ms = EXCLUDED.duration_ms;`

	triggered := s.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	finished := s.FinishedAt
	if finished.IsZero() {
		finished = triggered
	}
	var sum analysis.ScanSummary
	if s.Summary != nil {
		sum = *s.Summary
	}

	_, err := r.db.ExecContext(ctx, q,
		string(s.ID), int64(s.Generation), stringOrDash(string(s.Source)), stringOrDash(s.Target),
		stringOrDash(string(s.Language)), stringOrDash(string(s.Status)), s.Message, s.Files,
		sum.Total, sum.Critical, sum.High, sum.Medium, sum.Low, s.Summary != nil,
		triggered, finished, s.DurationMS(),
	)
	return err
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id string) (*domain.Scan, error) {
	q := `SELECT ` + scanColumns + ` FROM sca_scans WHERE id=$1 LIMIT 1;`
	s, err := scanRow(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.ErrHistoryNotFound
	}
	return s, err
}

// Latest scans, newest first
func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + scanColumns + ` FROM sca_scans ORDER BY triggered_at DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.Scan, error) {
	var (
		s          domain.Scan
		id         string
		generation int64
		message    sql.NullString
		sum        analysis.ScanSummary
		hasSummary bool
	)
	if err := row.Scan(
		&id, &generation, &s.Source, &s.Target, &s.Language, &s.Status, &message, &s.Files,
		&sum.Total, &sum.Critical, &sum.High, &sum.Medium, &sum.Low, &hasSummary,
		&s.TriggeredAt, &s.FinishedAt,
	); err != nil {
		return nil, err
	}
	s.ID = analysis.ScanID(id)
	s.Generation = uint64(generation)
	s.Target = dashToEmpty(s.Target)
	s.Message = message.String
	if hasSummary {
		sum.TotalFilesAnalyzed = s.Files
		s.Summary = &sum
	}
	return &s, nil
}
