package permission

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

func (r *instrumentedRepository) FindByRoleID(ctx context.Context, roleID string) ([]*Grant, error) {
	return repository.Instrument(ctx, CollectionName, "FindByRoleID", func() ([]*Grant, error) {
		return r.inner.FindByRoleID(ctx, roleID)
	})
}

func (r *instrumentedRepository) FindByRoleIDs(ctx context.Context, roleIDs []string) ([]*Grant, error) {
	return repository.Instrument(ctx, CollectionName, "FindByRoleIDs", func() ([]*Grant, error) {
		return r.inner.FindByRoleIDs(ctx, roleIDs)
	})
}

func (r *instrumentedRepository) FindOne(ctx context.Context, roleID, featureID string) (*Grant, error) {
	return repository.Instrument(ctx, CollectionName, "FindOne", func() (*Grant, error) {
		return r.inner.FindOne(ctx, roleID, featureID)
	})
}
