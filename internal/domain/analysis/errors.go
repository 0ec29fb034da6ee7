package analysis

import (
	"errors"
	"fmt"
)

// Lifecycle errors
var (
	ErrSuperseded       = errors.New("scan superseded by a newer submission")
	ErrNoScan           = errors.New("no scan has been submitted")
	ErrScanNotCompleted = errors.New("scan has not completed")
)

// Presentation errors
var (
	ErrFileNotFound    = errors.New("file not found in scan results")
	ErrNoCorrection    = errors.New("no correction available for file")
	ErrExportDisabled  = errors.New("export storage is not configured")
	ErrHistoryNotFound = errors.New("history record not found")
)

// SubmissionError a malformed request caught before any network call.
type SubmissionError struct {
	Field  string
	Reason string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("invalid scan request (%s): %s", e.Field, e.Reason)
}

// ProtocolError the backend answered without a required field, or with a
// body that could not be decoded (Field "body", Err set).
type ProtocolError struct {
	Op    string
	Field string
	Err   error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed backend response %s: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: backend response missing %q", e.Op, e.Field)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TransportError network failure, timeout or non-2xx status talking to the backend.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ScanFailure the backend reported status=error. Never retried.
type ScanFailure struct {
	ScanID  ScanID
	Message string
}

func (e *ScanFailure) Error() string {
	return e.Message
}

// Retryable is true for network errors, timeouts and 5xx answers.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// IsRetryable reports whether err is a transport failure worth another attempt.
// Backend-reported scan failures never are.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable()
}
