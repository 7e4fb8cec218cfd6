package permission

import (
	"context"

	"go.venuehub.tech/internal/platform/common"
)

// NewMemoryTable creates the in-memory grants collection.
func NewMemoryTable() *common.MemoryTable[Grant] {
	return common.NewMemoryTable(CollectionName, func(g *Grant) string { return g.ID })
}

type memoryRepository struct {
	table *common.MemoryTable[Grant]
}

// NewMemoryRepository reads grants from an in-memory table.
func NewMemoryRepository(table *common.MemoryTable[Grant]) Repository {
	return newInstrumentedRepository(&memoryRepository{table: table})
}

func (r *memoryRepository) FindByRoleID(_ context.Context, roleID string) ([]*Grant, error) {
	return r.table.Find(func(g *Grant) bool { return g.RoleID == roleID }), nil
}

func (r *memoryRepository) FindByRoleIDs(_ context.Context, roleIDs []string) ([]*Grant, error) {
	wanted := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = struct{}{}
	}
	return r.table.Find(func(g *Grant) bool {
		_, ok := wanted[g.RoleID]
		return ok
	}), nil
}

func (r *memoryRepository) FindOne(_ context.Context, roleID, featureID string) (*Grant, error) {
	return r.table.Get(GrantID(roleID, featureID)), nil
}
