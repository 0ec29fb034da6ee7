package scans

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, s *Scan) error
	Get(ctx context.Context, id string) (*Scan, error)
	Latest(ctx context.Context, limit int) ([]*Scan, error)
}
