package role

import (
	"context"

	"go.venuehub.tech/internal/common/repository"
)

// instrumentedRepository wraps a Repository with metrics and logging
type instrumentedRepository struct {
	inner Repository
}

// newInstrumentedRepository creates an instrumented wrapper around a Repository
func newInstrumentedRepository(inner Repository) Repository {
	return &instrumentedRepository{inner: inner}
}

func (r *instrumentedRepository) FindAll(ctx context.Context) ([]*Role, error) {
	return repository.Instrument(ctx, CollectionName, "FindAll", func() ([]*Role, error) {
		return r.inner.FindAll(ctx)
	})
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*Role, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*Role, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindByIDs(ctx context.Context, ids []string) ([]*Role, error) {
	return repository.Instrument(ctx, CollectionName, "FindByIDs", func() ([]*Role, error) {
		return r.inner.FindByIDs(ctx, ids)
	})
}

func (r *instrumentedRepository) FindByName(ctx context.Context, name string) (*Role, error) {
	return repository.Instrument(ctx, CollectionName, "FindByName", func() (*Role, error) {
		return r.inner.FindByName(ctx, name)
	})
}

func (r *instrumentedRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return repository.Instrument(ctx, CollectionName, "ExistsByName", func() (bool, error) {
		return r.inner.ExistsByName(ctx, name)
	})
}
