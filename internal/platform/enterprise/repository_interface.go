package enterprise

import "context"

// Repository defines the interface for enterprise data access.
// All implementations must be wrapped with instrumentation.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Enterprise, error)
	FindByTenantKey(ctx context.Context, key string) (*Enterprise, error)
	FindByAdminUserID(ctx context.Context, userID string) (*Enterprise, error)
	ExistsByAdminRoleID(ctx context.Context, roleID string) (bool, error)
}
