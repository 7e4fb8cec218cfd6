package enterprise

import (
	"context"

	"go.venuehub.tech/internal/platform/common"
)

// NewMemoryTable creates the in-memory enterprises collection with unique
// tenant key and admin role indexes.
func NewMemoryTable() *common.MemoryTable[Enterprise] {
	return common.NewMemoryTable(CollectionName, func(e *Enterprise) string { return e.ID }).
		Unique("tenantKey", func(e *Enterprise) string { return e.TenantKey }).
		Unique("adminRoleId", func(e *Enterprise) string { return e.AdminRoleID })
}

type memoryRepository struct {
	table *common.MemoryTable[Enterprise]
}

// NewMemoryRepository reads enterprises from an in-memory table.
func NewMemoryRepository(table *common.MemoryTable[Enterprise]) Repository {
	return newInstrumentedRepository(&memoryRepository{table: table})
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Enterprise, error) {
	return r.table.Get(id), nil
}

func (r *memoryRepository) FindByTenantKey(_ context.Context, key string) (*Enterprise, error) {
	return r.table.First(func(e *Enterprise) bool { return e.TenantKey == key }), nil
}

func (r *memoryRepository) FindByAdminUserID(_ context.Context, userID string) (*Enterprise, error) {
	return r.table.First(func(e *Enterprise) bool { return e.AdminUserID == userID }), nil
}

func (r *memoryRepository) ExistsByAdminRoleID(_ context.Context, roleID string) (bool, error) {
	return r.table.First(func(e *Enterprise) bool { return e.AdminRoleID == roleID }) != nil, nil
}
