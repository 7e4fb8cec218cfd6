package role

import "context"

// Repository defines the interface for role data access.
// All implementations must be wrapped with instrumentation.
// Writes go through the UnitOfWork so that grants, role and event commit
// together.
type Repository interface {
	FindAll(ctx context.Context) ([]*Role, error)
	FindByID(ctx context.Context, id string) (*Role, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}
