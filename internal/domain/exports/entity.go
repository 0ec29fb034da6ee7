package exports

import "time"

// ExportID identifier type
type ExportID string

// Export records one patched source pushed to object storage.
type Export struct {
	ID             ExportID  `json:"id"`
	ScanID         string    `json:"scan_id"`
	FileName       string    `json:"file_name"`
	ObjectURL      string    `json:"object_url"`
	HasExplicitFix bool      `json:"has_explicit_fix"`
	CreatedAt      time.Time `json:"created_at"`
}

// Page represents a paginated response with data and metadata
type Page struct {
	Data     []*Export `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
