package permission

import "context"

// Repository defines the interface for grant data access.
// All implementations must be wrapped with instrumentation.
// Writes go through the UnitOfWork.
type Repository interface {
	FindByRoleID(ctx context.Context, roleID string) ([]*Grant, error)
	FindByRoleIDs(ctx context.Context, roleIDs []string) ([]*Grant, error)
	FindOne(ctx context.Context, roleID, featureID string) (*Grant, error)
}
