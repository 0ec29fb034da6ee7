package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/exports"
)

type ExportRepository struct {
	db *sql.DB
}

func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Save inserts or updates an export record
func (r *ExportRepository) Save(ctx context.Context, e *domain.Export) error {
	const q = `
INSERT INTO sca_exports
  (id, scan_id, file_name, object_url, has_explicit_fix, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  object_url=EXCLUDED.object_url,
  has_explicit_fix=EXCLUDED.has_explicit_fix;
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		string(e.ID), stringOrDash(e.ScanID), stringOrDash(e.FileName), stringOrDash(e.ObjectURL),
		e.HasExplicitFix, createdAt,
	)
	return err
}

// Paginate returns a page of export records ordered by created_at desc
func (r *ExportRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Export, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, scan_id, file_name, object_url, has_explicit_fix, created_at
FROM sca_exports
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Export
	for rows.Next() {
		var e domain.Export
		if err := rows.Scan(&e.ID, &e.ScanID, &e.FileName, &e.ObjectURL, &e.HasExplicitFix, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
