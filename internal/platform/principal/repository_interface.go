package principal

import "context"

// Repository defines the interface for user data access.
// All implementations must be wrapped with instrumentation.
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*User, error)
	FindByTenantID(ctx context.Context, tenantID string) ([]*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountActiveByRoleID counts active users holding the role.
	CountActiveByRoleID(ctx context.Context, roleID string) (int64, error)

	// UpdateLastLogin is a bookkeeping write outside the UnitOfWork; it emits
	// no domain event.
	UpdateLastLogin(ctx context.Context, id string) error
}
