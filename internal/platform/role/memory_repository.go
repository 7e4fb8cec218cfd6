package role

import (
	"context"
	"slices"

	"go.venuehub.tech/internal/platform/common"
)

// NewMemoryTable creates the in-memory roles collection with a unique name
// index.
func NewMemoryTable() *common.MemoryTable[Role] {
	return common.NewMemoryTable(CollectionName, func(r *Role) string { return r.ID }).
		Unique("name", func(r *Role) string { return r.Name })
}

type memoryRepository struct {
	table *common.MemoryTable[Role]
}

// NewMemoryRepository reads roles from an in-memory table.
func NewMemoryRepository(table *common.MemoryTable[Role]) Repository {
	return newInstrumentedRepository(&memoryRepository{table: table})
}

func (r *memoryRepository) FindAll(context.Context) ([]*Role, error) {
	return r.table.Find(nil), nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Role, error) {
	return r.table.Get(id), nil
}

func (r *memoryRepository) FindByIDs(_ context.Context, ids []string) ([]*Role, error) {
	return r.table.Find(func(role *Role) bool { return slices.Contains(ids, role.ID) }), nil
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (*Role, error) {
	return r.table.First(func(role *Role) bool { return role.Name == name }), nil
}

func (r *memoryRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	return r.table.First(func(role *Role) bool { return role.Name == name }) != nil, nil
}
