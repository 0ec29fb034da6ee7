package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
)

type ScanErrorRepository struct{ db *sql.DB }

func NewScanErrorRepository(db *sql.DB) *ScanErrorRepository { return &ScanErrorRepository{db: db} }

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
	const q = `
INSERT INTO sca_scan_errors
  (scan_id, kind, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id;`
	details := e.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	} else if !json.Valid([]byte(details)) {
		b, _ := json.Marshal(map[string]string{"raw": details})
		details = string(b)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return r.db.QueryRowContext(ctx, q,
		stringOrDash(e.ScanID), stringOrDash(string(e.Kind)), stringOrDash(e.Phase),
		stringOrDash(e.Message), details, created,
	).Scan(&e.ID)
}

func (r *ScanErrorRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, scan_id, kind, phase, message, details_json::text, created_at
FROM sca_scan_errors
WHERE scan_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
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
