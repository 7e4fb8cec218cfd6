package principal

import (
	"context"
	"time"

	"go.venuehub.tech/internal/platform/common"
)

// NewMemoryTable creates the in-memory users collection with a unique email
// index.
func NewMemoryTable() *common.MemoryTable[User] {
	return common.NewMemoryTable(CollectionName, func(u *User) string { return u.ID }).
		Unique("email", func(u *User) string { return u.Email })
}

type memoryRepository struct {
	table *common.MemoryTable[User]
}

// NewMemoryRepository reads users from an in-memory table.
func NewMemoryRepository(table *common.MemoryTable[User]) Repository {
	return newInstrumentedRepository(&memoryRepository{table: table})
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	return r.table.Get(id), nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return r.table.First(func(u *User) bool { return u.Email == email }), nil
}

func (r *memoryRepository) FindByResetTokenHash(_ context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.table.First(func(u *User) bool { return u.ResetTokenHash == hash }), nil
}

func (r *memoryRepository) FindByTenantID(_ context.Context, tenantID string) ([]*User, error) {
	return r.table.Find(func(u *User) bool { return u.TenantID == tenantID }), nil
}

func (r *memoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.table.First(func(u *User) bool { return u.Email == email }) != nil, nil
}

func (r *memoryRepository) CountActiveByRoleID(_ context.Context, roleID string) (int64, error) {
	return int64(len(r.table.Find(func(u *User) bool { return u.Active && u.HasRole(roleID) }))), nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string) error {
	user := r.table.Get(id)
	if user == nil {
		return nil
	}
	now := time.Now()
	user.LastLoginAt = &now
	return r.table.Put(user)
}
