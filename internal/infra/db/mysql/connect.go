package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate bikin tabel kalau belum ada
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
  id VARCHAR(128) NOT NULL PRIMARY KEY,
  generation BIGINT UNSIGNED NOT NULL DEFAULT 0,
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
  has_summary TINYINT(1) NOT NULL DEFAULT 0,
  triggered_at DATETIME(3) NOT NULL,
  finished_at DATETIME(3) NOT NULL,
  duration_ms BIGINT NOT NULL DEFAULT 0,
  KEY idx_sca_scans_triggered (triggered_at)
)`,
	`CREATE TABLE IF NOT EXISTS sca_scan_errors (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  scan_id VARCHAR(128) NOT NULL,
  kind VARCHAR(16) NOT NULL,
  phase VARCHAR(16) NOT NULL,
  message TEXT NOT NULL,
  details_json JSON NOT NULL,
  created_at DATETIME(3) NOT NULL,
  KEY idx_sca_scan_errors_scan (scan_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS sca_exports (
  id VARCHAR(64) NOT NULL PRIMARY KEY,
  scan_id VARCHAR(128) NOT NULL,
  file_name VARCHAR(255) NOT NULL,
  object_url VARCHAR(1024) NOT NULL,
  has_explicit_fix TINYINT(1) NOT NULL DEFAULT 0,
  created_at DATETIME(3) NOT NULL,
  KEY idx_sca_exports_created (created_at)
)`,
}
