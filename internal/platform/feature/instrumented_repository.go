package feature

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

func (r *instrumentedRepository) FindAll(ctx context.Context) ([]*Feature, error) {
	return repository.Instrument(ctx, CollectionName, "FindAll", func() ([]*Feature, error) {
		return r.inner.FindAll(ctx)
	})
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*Feature, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*Feature, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindByIDs(ctx context.Context, ids []string) ([]*Feature, error) {
	return repository.Instrument(ctx, CollectionName, "FindByIDs", func() ([]*Feature, error) {
		return r.inner.FindByIDs(ctx, ids)
	})
}

func (r *instrumentedRepository) FindByCatalogKey(ctx context.Context, key string) (*Feature, error) {
	return repository.Instrument(ctx, CollectionName, "FindByCatalogKey", func() (*Feature, error) {
		return r.inner.FindByCatalogKey(ctx, key)
	})
}
