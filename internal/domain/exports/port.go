package exports

import "context"

// Repository port for persisting and querying exports
type Repository interface {
	Save(ctx context.Context, e *Export) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Export, error)
}
