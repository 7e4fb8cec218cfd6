package principal

import (
	"context"

	"go.venuehub.tech/internal/common/repository"
)

// instrumentedRepository wraps a Repository with metrics and logging
type instrumentedRepository struct {
	inner Repository
}

func newInstrumentedRepository(inner Repository) Repository {
	return &instrumentedRepository{inner: inner}
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*User, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.Instrument(ctx, CollectionName, "FindByEmail", func() (*User, error) {
		return r.inner.FindByEmail(ctx, email)
	})
}

func (r *instrumentedRepository) FindByResetTokenHash(ctx context.Context, hash string) (*User, error) {
	return repository.Instrument(ctx, CollectionName, "FindByResetTokenHash", func() (*User, error) {
		return r.inner.FindByResetTokenHash(ctx, hash)
	})
}

func (r *instrumentedRepository) FindByTenantID(ctx context.Context, tenantID string) ([]*User, error) {
	return repository.Instrument(ctx, CollectionName, "FindByTenantID", func() ([]*User, error) {
		return r.inner.FindByTenantID(ctx, tenantID)
	})
}

func (r *instrumentedRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return repository.Instrument(ctx, CollectionName, "ExistsByEmail", func() (bool, error) {
		return r.inner.ExistsByEmail(ctx, email)
	})
}

func (r *instrumentedRepository) CountActiveByRoleID(ctx context.Context, roleID string) (int64, error) {
	return repository.Instrument(ctx, CollectionName, "CountActiveByRoleID", func() (int64, error) {
		return r.inner.CountActiveByRoleID(ctx, roleID)
	})
}

func (r *instrumentedRepository) UpdateLastLogin(ctx context.Context, id string) error {
	return repository.InstrumentVoid(ctx, CollectionName, "UpdateLastLogin", func() error {
		return r.inner.UpdateLastLogin(ctx, id)
	})
}
