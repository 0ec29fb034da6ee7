package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
)

type ScanErrorRepository struct {
	db *sql.DB
}

func NewScanErrorRepository(db *sql.DB) *ScanErrorRepository { return &ScanErrorRepository{db: db} }

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
	const q = `
INSERT INTO sca_scan_errors
  (scan_id, kind, phase, message, details_json, created_at)
VALUES (?,?,?,?,?,?)
`
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.ScanID), stringOrDash(string(e.Kind)), stringOrDash(e.Phase),
		stringOrDash(e.Message), jsonOrEmptyObject(e.DetailsJSON), created,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *ScanErrorRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, scan_id, kind, phase, message, details_json, created_at
FROM sca_scan_errors
WHERE scan_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, stringOrDash(scanID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ScanError
	for rows.Next() {
		var e domain.ScanError
		if err := rows.Scan(&e.ID, &e.ScanID, &e.Kind, &e.Phase, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ScanID = dashToEmpty(e.ScanID)
		out = append(out, &e)
	}
	return out, rows.Err()
}
