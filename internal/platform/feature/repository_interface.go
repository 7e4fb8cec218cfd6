package feature

import "context"

// Repository defines the interface for feature data access.
// All implementations must be wrapped with instrumentation.
type Repository interface {
	FindAll(ctx context.Context) ([]*Feature, error)
	FindByID(ctx context.Context, id string) (*Feature, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Feature, error)
	FindByCatalogKey(ctx context.Context, key string) (*Feature, error)
}
