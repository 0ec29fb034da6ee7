package scanerrors

import "time"

// Kind of failure, mirrors the lifecycle error taxonomy
type Kind string

const (
	KindProtocol  Kind = "protocol"
	KindTransport Kind = "transport"
	KindScan      Kind = "scan"
)

// ScanError represents a persisted scan failure entry
type ScanError struct {
	ID          int64     `json:"id"`
	ScanID      string    `json:"scan_id"`
	Kind        Kind      `json:"kind"`
	Phase       string    `json:"phase,omitempty"` // submit | poll
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
