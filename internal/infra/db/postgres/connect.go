package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables when missing
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sca_scans (
  id VARCHAR(128) PRIMARY KEY,
  generation BIGINT NOT NULL DEFAULT 0,
  source VARCHAR(16) NOT NULL,
  target VARCHAR(512) NOT NULL DEFAULT '-',
  language VARCHAR(16) NOT NULL,
  status VARCHAR(16) NOT NULL,
  message TEXT NULL,
  files INT NOT NULL DEFAULT 0,
  total INT NOT NULL DEFAULT 0,
  critical INT NOT NULL DEFAULT 0,
  high INT NOT NULL DEFAULT 0,
  medium INT NOT NULL DEFAULT 0,
  low INT NOT NULL DEFAULT 0,
  has_summary BOOLEAN NOT NULL DEFAULT FALSE,
  triggered_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL,
  duration_ms BIGINT NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_sca_scans_triggered ON sca_scans (triggered_at)`,
	`CREATE TABLE IF NOT EXISTS sca_scan_errors (
  id BIGSERIAL PRIMARY KEY,
  scan_id VARCHAR(128) NOT NULL,
  kind VARCHAR(16) NOT NULL,
  phase VARCHAR(16) NOT NULL,
  message TEXT NOT NULL,
  details_json JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_sca_scan_errors_scan ON sca_scan_errors (scan_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sca_exports (
  id VARCHAR(64) PRIMARY KEY,
  scan_id VARCHAR(128) NOT NULL,
  file_name VARCHAR(255) NOT NULL,
  object_url VARCHAR(1024) NOT NULL,
  has_explicit_fix BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL
)`,
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
