package enterprise

import (
	"context"

	"go.venuehub.tech/internal/common/repository"
)

type instrumentedRepository struct {
	inner Repository
}

func newInstrumentedRepository(inner Repository) Repository {
	return &instrumentedRepository{inner: inner}
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*Enterprise, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*Enterprise, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindByTenantKey(ctx context.Context, key string) (*Enterprise, error) {
	return repository.Instrument(ctx, CollectionName, "FindByTenantKey", func() (*Enterprise, error) {
		return r.inner.FindByTenantKey(ctx, key)
	})
}

func (r *instrumentedRepository) FindByAdminUserID(ctx context.Context, userID string) (*Enterprise, error) {
	return repository.Instrument(ctx, CollectionName, "FindByAdminUserID", func() (*Enterprise, error) {
		return r.inner.FindByAdminUserID(ctx, userID)
	})
}

func (r *instrumentedRepository) ExistsByAdminRoleID(ctx context.Context, roleID string) (bool, error) {
	return repository.Instrument(ctx, CollectionName, "ExistsByAdminRoleID", func() (bool, error) {
		return r.inner.ExistsByAdminRoleID(ctx, roleID)
	})
}
