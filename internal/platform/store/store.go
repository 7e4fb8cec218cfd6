// Package store bundles the authorization repositories with the UnitOfWork
// that writes them, backed either by MongoDB or by in-process tables.
package store

import (
	"go.mongodb.org/mongo-driver/mongo"

	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
)

// Store holds one repository per aggregate plus the UnitOfWork.
type Store struct {
	Features    feature.Repository
	Roles       role.Repository
	Grants      permission.Repository
	Users       principal.Repository
	Enterprises enterprise.Repository
	UnitOfWork  common.UnitOfWork
}

// NewMongo creates a Store over a MongoDB database. Commits run in session
// transactions, so the deployment must be a replica set.
func NewMongo(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Features:    feature.NewRepository(db),
		Roles:       role.NewRepository(db),
		Grants:      permission.NewRepository(db),
		Users:       principal.NewRepository(db),
		Enterprises: enterprise.NewRepository(db),
		UnitOfWork:  common.NewMongoUnitOfWork(client, db),
	}
}

// Tables are the in-process collections behind a memory Store.
type Tables struct {
	Features    *common.MemoryTable[feature.Feature]
	Roles       *common.MemoryTable[role.Role]
	Grants      *common.MemoryTable[permission.Grant]
	Users       *common.MemoryTable[principal.User]
	Enterprises *common.MemoryTable[enterprise.Enterprise]
}

// Collections lists the tables in a fixed order.
func (t *Tables) Collections() []common.MemoryCollection {
	return []common.MemoryCollection{t.Features, t.Roles, t.Grants, t.Users, t.Enterprises}
}

// NewTables creates empty tables with their unique indexes.
func NewTables() *Tables {
	return &Tables{
		Features:    feature.NewMemoryTable(),
		Roles:       role.NewMemoryTable(),
		Grants:      permission.NewMemoryTable(),
		Users:       principal.NewMemoryTable(),
		Enterprises: enterprise.NewMemoryTable(),
	}
}

// NewMemory creates a Store over fresh in-process tables. Data lives only as
// long as the process.
func NewMemory() (*Store, *Tables) {
	tables := NewTables()
	return NewMemoryWith(tables, common.NewMemoryUnitOfWork(tables.Collections()...)), tables
}

// NewMemoryWith creates a Store over existing tables and a caller supplied
// UnitOfWork, for example one whose collections inject failures.
func NewMemoryWith(tables *Tables, uow common.UnitOfWork) *Store {
	return &Store{
		Features:    feature.NewMemoryRepository(tables.Features),
		Roles:       role.NewMemoryRepository(tables.Roles),
		Grants:      permission.NewMemoryRepository(tables.Grants),
		Users:       principal.NewMemoryRepository(tables.Users),
		Enterprises: enterprise.NewMemoryRepository(tables.Enterprises),
		UnitOfWork:  uow,
	}
}
