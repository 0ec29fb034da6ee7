package analysis

import "context"

// Backend port for the external scan service. Implementations return
// *TransportError for network trouble and *ProtocolError for malformed answers.
type Backend interface {
	Submit(ctx context.Context, req ScanRequest) (ScanID, error)
	Poll(ctx context.Context, id ScanID) (PollResponse, error)
}

// Exporter pushes a patched source somewhere the user can fetch it.
type Exporter interface {
	Export(ctx context.Context, key string, content []byte) (string, error)
}
