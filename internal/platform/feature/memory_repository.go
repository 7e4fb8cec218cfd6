package feature

import (
	"context"
	"slices"

	"go.venuehub.tech/internal/platform/common"
)

// NewMemoryTable creates the in-memory features collection with the same
// unique indexes as MongoDB.
func NewMemoryTable() *common.MemoryTable[Feature] {
	return common.NewMemoryTable(CollectionName, func(f *Feature) string { return f.ID }).
		Unique("name", func(f *Feature) string { return f.Name }).
		Unique("catalogKey", func(f *Feature) string { return f.CatalogKey })
}

type memoryRepository struct {
	table *common.MemoryTable[Feature]
}

// NewMemoryRepository reads features from an in-memory table.
func NewMemoryRepository(table *common.MemoryTable[Feature]) Repository {
	return newInstrumentedRepository(&memoryRepository{table: table})
}

func (r *memoryRepository) FindAll(context.Context) ([]*Feature, error) {
	return r.table.Find(nil), nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Feature, error) {
	return r.table.Get(id), nil
}

func (r *memoryRepository) FindByIDs(_ context.Context, ids []string) ([]*Feature, error) {
	return r.table.Find(func(f *Feature) bool { return slices.Contains(ids, f.ID) }), nil
}

func (r *memoryRepository) FindByCatalogKey(_ context.Context, key string) (*Feature, error) {
	return r.table.First(func(f *Feature) bool { return f.CatalogKey == key }), nil
}
