// Package storetest provides an in-memory store with seeding helpers and
// write failure injection for use case tests.
package storetest

import (
	"errors"
	"testing"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
	"go.venuehub.tech/internal/platform/store"
)

// ErrInjected is returned by collections set up with FailWrites.
var ErrInjected = errors.New("injected write failure")

// Fixture is a memory store plus the pieces most use cases need.
type Fixture struct {
	*store.Store
	Tables   *store.Tables
	UoW      *common.MemoryUnitOfWork
	Locker   *lock.LocalLocker
	Resolver *authorization.Resolver
}

// New returns an empty fixture.
func New(t testing.TB) *Fixture {
	t.Helper()
	tables := store.NewTables()
	uow := common.NewMemoryUnitOfWork(tables.Collections()...)
	s := store.NewMemoryWith(tables, uow)
	return &Fixture{
		Store:    s,
		Tables:   tables,
		UoW:      uow,
		Locker:   lock.NewLocalLocker(),
		Resolver: authorization.NewResolver(s.Roles, s.Grants, s.Features),
	}
}

// ExecCtx returns an execution context for the given principal.
func (f *Fixture) ExecCtx(principalID string) *common.ExecutionContext {
	return common.NewExecutionContext(principalID)
}

// TenantExecCtx returns an execution context for a user of tenantID.
func (f *Fixture) TenantExecCtx(principalID, tenantID string) *common.ExecutionContext {
	ec := common.NewExecutionContext(principalID)
	ec.TenantID = tenantID
	return ec
}

// FailWrites makes every write to the named collection fail. Reads keep
// working, so use cases get as far as their commit.
func (f *Fixture) FailWrites(collection string) {
	for _, c := range f.Tables.Collections() {
		if c.CollectionName() == collection {
			f.UoW.Attach(&failingCollection{MemoryCollection: c})
			return
		}
	}
	panic("storetest: unknown collection " + collection)
}

// HealWrites undoes FailWrites for every collection.
func (f *Fixture) HealWrites() {
	for _, c := range f.Tables.Collections() {
		f.UoW.Attach(c)
	}
}

type failingCollection struct {
	common.MemoryCollection
}

func (c *failingCollection) Put(common.AggregateRoot) error { return ErrInjected }

func (c *failingCollection) DeleteMany(map[string]any) (int, error) { return 0, ErrInjected }

func (c *failingCollection) UpdateMany(map[string]any, map[string]any) (int, error) {
	return 0, ErrInjected
}

// Feature stores a feature directly.
func (f *Fixture) Feature(t testing.TB, name string) *feature.Feature {
	t.Helper()
	feat := &feature.Feature{
		ID:         tsid.Generate(),
		Name:       name,
		CatalogKey: feature.Slug(name),
		CreatedAt:  time.Now().UTC(),
	}
	put(t, f.Tables.Features, feat)
	return feat
}

// Role stores a role and its grant rows directly.
func (f *Fixture) Role(t testing.TB, name string, grants ...permission.FeatureGrant) *role.Role {
	t.Helper()
	now := time.Now().UTC()
	r := &role.Role{
		ID:         tsid.Generate(),
		Name:       name,
		FeatureIDs: permission.FeatureIDs(grants),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	put(t, f.Tables.Roles, r)
	for _, row := range permission.Rows(r.ID, grants, now) {
		put(t, f.Tables.Grants, row)
	}
	return r
}

// User stores a user directly. Missing ids and timestamps are filled in.
func (f *Fixture) User(t testing.TB, u *principal.User) *principal.User {
	t.Helper()
	if u.ID == "" {
		u.ID = tsid.Generate()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	put(t, f.Tables.Users, u)
	return u
}

// Enterprise stores an enterprise directly.
func (f *Fixture) Enterprise(t testing.TB, e *enterprise.Enterprise) *enterprise.Enterprise {
	t.Helper()
	if e.ID == "" {
		e.ID = tsid.Generate()
	}
	if e.TenantKey == "" {
		e.TenantKey = enterprise.TenantKey(e.TenantName)
	}
	put(t, f.Tables.Enterprises, e)
	return e
}

// Grant returns a FeatureGrant with the given flags, written "rwa" style:
// any of 'r', 'w' and 'a'.
func Grant(featureID, flags string) permission.FeatureGrant {
	g := permission.FeatureGrant{FeatureID: featureID}
	for _, c := range flags {
		switch c {
		case 'r':
			g.Read = true
		case 'w':
			g.Write = true
		case 'a':
			g.Admin = true
		}
	}
	return g
}

func put(t testing.TB, c common.MemoryCollection, aggregate common.AggregateRoot) {
	t.Helper()
	if err := c.Put(aggregate); err != nil {
		t.Fatalf("seed %s %s: %v", c.CollectionName(), aggregate.AggregateID(), err)
	}
}
