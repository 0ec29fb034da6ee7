package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

const scanColumns = `id, generation, source, target, language, status, message, files,
       total, critical, high, medium, low, has_summary, triggered_at, finished_at`

// Save insert/update Scan record
func (r *ScanRepository) Save(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO sca_scans
(id, generation, source, target, language, status, message, files,
 total, critical, high, medium, low, has_summary, triggered_at, finished_at, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 generation=VALUES(generation), status=VALUES(status), message=VALUES(message), files=VALUES(files),
 total=VALUES(total), critical=VALUES(critical), high=VALUES(high), medium=VALUES(medium), low=VALUES(low),
 has_summary=VALUES(has_summary), finished_at=VALUES(finished_at), duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults and numbers fall back to 0
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
		string(s.ID), s.Generation, stringOrDash(string(s.Source)), stringOrDash(s.Target),
		stringOrDash(string(s.Language)), stringOrDash(string(s.Status)), s.Message, s.Files,
		sum.Total, sum.Critical, sum.High, sum.Medium, sum.Low, s.Summary != nil,
		triggered, finished, s.DurationMS(),
	)
	return err
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id string) (*domain.Scan, error) {
	q := `SELECT ` + scanColumns + ` FROM sca_scans WHERE id=? LIMIT 1;`
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
	q := `SELECT ` + scanColumns + ` FROM sca_scans ORDER BY triggered_at DESC LIMIT ?;`
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
		message    sql.NullString
		sum        analysis.ScanSummary
		hasSummary bool
	)
	if err := row.Scan(
		&id, &s.Generation, &s.Source, &s.Target, &s.Language, &s.Status, &message, &s.Files,
		&sum.Total, &sum.Critical, &sum.High, &sum.Medium, &sum.Low, &hasSummary,
		&s.TriggeredAt, &s.FinishedAt,
	); err != nil {
		return nil, err
	}
	s.ID = analysis.ScanID(id)
	s.Target = dashToEmpty(s.Target)
	s.Message = message.String
	if hasSummary {
		sum.TotalFilesAnalyzed = s.Files
		s.Summary = &sum
	}
	return &s, nil
}
