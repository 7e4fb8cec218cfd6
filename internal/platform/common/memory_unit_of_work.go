package common

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"go.venuehub.tech/internal/common/repository"
)

// MemoryCollection is a collection a MemoryUnitOfWork can write to.
type MemoryCollection interface {
	CollectionName() string
	Put(aggregate AggregateRoot) error
	Remove(id string)
	DeleteMany(match map[string]any) (int, error)
	UpdateMany(match, set map[string]any) (int, error)

	// Snapshot captures the current rows. Calling restore puts them back.
	Snapshot() (restore func())
}

type uniqueIndex[T any] struct {
	name string
	key  func(*T) string
}

// MemoryTable holds the documents of one collection in memory. Rows are
// copied through BSON on every read and write, so filters match on the same
// field names the MongoDB collection uses.
type MemoryTable[T any] struct {
	mu     sync.RWMutex
	name   string
	id     func(*T) string
	unique []uniqueIndex[T]
	rows   map[string]*T
}

// NewMemoryTable creates an empty table.
func NewMemoryTable[T any](name string, id func(*T) string) *MemoryTable[T] {
	return &MemoryTable[T]{
		name: name,
		id:   id,
		rows: make(map[string]*T),
	}
}

// Unique declares a unique index. Empty keys are not indexed.
func (t *MemoryTable[T]) Unique(index string, key func(*T) string) *MemoryTable[T] {
	t.unique = append(t.unique, uniqueIndex[T]{name: index, key: key})
	return t
}

func (t *MemoryTable[T]) CollectionName() string {
	return t.name
}

// Put inserts or replaces a row, enforcing the unique indexes.
func (t *MemoryTable[T]) Put(aggregate AggregateRoot) error {
	doc, ok := any(aggregate).(*T)
	if !ok {
		return fmt.Errorf("collection %s: unexpected aggregate %T", t.name, aggregate)
	}
	row, err := cloneRow(doc)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.id(row)
	for _, idx := range t.unique {
		key := idx.key(row)
		if key == "" {
			continue
		}
		for otherID, other := range t.rows {
			if otherID != id && idx.key(other) == key {
				return fmt.Errorf("collection %s index %s: %w", t.name, idx.name, repository.ErrDuplicateKey)
			}
		}
	}
	t.rows[id] = row
	return nil
}

func (t *MemoryTable[T]) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, id)
}

// DeleteMany removes every row whose fields equal match.
func (t *MemoryTable[T]) DeleteMany(match map[string]any) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, row := range t.rows {
		doc, err := toDocument(row)
		if err != nil {
			return removed, err
		}
		ok, err := matches(doc, match)
		if err != nil {
			return removed, err
		}
		if ok {
			delete(t.rows, id)
			removed++
		}
	}
	return removed, nil
}

// UpdateMany sets fields on every row whose fields equal match.
func (t *MemoryTable[T]) UpdateMany(match, set map[string]any) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	modified := 0
	for id, row := range t.rows {
		doc, err := toDocument(row)
		if err != nil {
			return modified, err
		}
		ok, err := matches(doc, match)
		if err != nil {
			return modified, err
		}
		if !ok {
			continue
		}
		for k, v := range set {
			doc[k] = v
		}
		updated, err := fromDocument[T](doc)
		if err != nil {
			return modified, err
		}
		t.rows[id] = updated
		modified++
	}
	return modified, nil
}

func (t *MemoryTable[T]) Snapshot() func() {
	t.mu.RLock()
	saved := make(map[string]*T, len(t.rows))
	for id, row := range t.rows {
		saved[id] = row
	}
	t.mu.RUnlock()

	return func() {
		t.mu.Lock()
		t.rows = saved
		t.mu.Unlock()
	}
}

// Get returns a copy of the row with the given id, or nil.
func (t *MemoryTable[T]) Get(id string) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil
	}
	return mustClone(row)
}

// Find returns copies of the rows accepted by keep, ordered by id.
func (t *MemoryTable[T]) Find(keep func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.rows))
	for id, row := range t.rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, mustClone(t.rows[id]))
	}
	return out
}

// First returns the lowest-id row accepted by keep, or nil.
func (t *MemoryTable[T]) First(keep func(*T) bool) *T {
	rows := t.Find(keep)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (t *MemoryTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func cloneRow[T any](row *T) (*T, error) {
	doc, err := toDocument(row)
	if err != nil {
		return nil, err
	}
	return fromDocument[T](doc)
}

func mustClone[T any](row *T) *T {
	out, err := cloneRow(row)
	if err != nil {
		panic(fmt.Sprintf("memory table: copy %T: %v", row, err))
	}
	return out
}

// matches compares after normalizing the filter values through BSON, so
// that an int filter matches an int32 field as it would in MongoDB.
func matches(doc bson.M, match map[string]any) (bool, error) {
	if len(match) == 0 {
		return true, nil
	}
	want, err := toDocument(bson.M(match))
	if err != nil {
		return false, err
	}
	for k, v := range want {
		if !reflect.DeepEqual(doc[k], v) {
			return false, nil
		}
	}
	return true, nil
}

// MemoryUnitOfWork implements UnitOfWork over MemoryCollections. A commit
// either applies the whole change set or restores every collection to its
// state before the commit.
type MemoryUnitOfWork struct {
	mu          sync.Mutex
	collections map[string]MemoryCollection
	events      []DomainEvent
	auditLogs   []*AuditLog
}

// NewMemoryUnitOfWork creates a UnitOfWork writing to the given collections.
func NewMemoryUnitOfWork(collections ...MemoryCollection) *MemoryUnitOfWork {
	uow := &MemoryUnitOfWork{collections: make(map[string]MemoryCollection, len(collections))}
	for _, c := range collections {
		uow.collections[c.CollectionName()] = c
	}
	return uow
}

// Attach adds or replaces a collection.
func (uow *MemoryUnitOfWork) Attach(c MemoryCollection) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.collections[c.CollectionName()] = c
}

func (uow *MemoryUnitOfWork) Commit(ctx context.Context, aggregate AggregateRoot, event DomainEvent, command any) Result[DomainEvent] {
	return uow.CommitChanges(ctx, NewChangeSet().Upsert(aggregate), event, command)
}

func (uow *MemoryUnitOfWork) CommitAll(ctx context.Context, aggregates []AggregateRoot, event DomainEvent, command any) Result[DomainEvent] {
	return uow.CommitChanges(ctx, NewChangeSet().Upsert(aggregates...), event, command)
}

func (uow *MemoryUnitOfWork) CommitChanges(ctx context.Context, changes *ChangeSet, event DomainEvent, command any) Result[DomainEvent] {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	restores := make([]func(), 0, len(uow.collections))
	for _, c := range uow.collections {
		restores = append(restores, c.Snapshot())
	}

	if err := uow.apply(changes); err != nil {
		for _, restore := range restores {
			restore()
		}
		return Failure[DomainEvent](commitFailure(err))
	}

	uow.events = append(uow.events, event)
	uow.auditLogs = append(uow.auditLogs, NewAuditLog(event, command))
	return newSuccess(event)
}

func (uow *MemoryUnitOfWork) apply(changes *ChangeSet) error {
	for _, purge := range changes.Purges {
		c, err := uow.collection(purge.Collection)
		if err != nil {
			return err
		}
		if _, err := c.DeleteMany(purge.Match); err != nil {
			return fmt.Errorf("bulk delete %s: %w", purge.Collection, err)
		}
	}

	for _, aggregate := range changes.Deletes {
		c, err := uow.collection(aggregate.CollectionName())
		if err != nil {
			return err
		}
		c.Remove(aggregate.AggregateID())
	}

	for i, aggregate := range changes.Upserts {
		if aggregate.AggregateID() == "" {
			return fmt.Errorf("persist aggregate %d: aggregate has no ID", i)
		}
		c, err := uow.collection(aggregate.CollectionName())
		if err != nil {
			return err
		}
		if err := c.Put(aggregate); err != nil {
			return fmt.Errorf("persist aggregate %d: %w", i, err)
		}
	}

	for _, update := range changes.Updates {
		c, err := uow.collection(update.Collection)
		if err != nil {
			return err
		}
		if _, err := c.UpdateMany(update.Match, update.Set); err != nil {
			return fmt.Errorf("bulk update %s: %w", update.Collection, err)
		}
	}
	return nil
}

func (uow *MemoryUnitOfWork) collection(name string) (MemoryCollection, error) {
	c, ok := uow.collections[name]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return c, nil
}

// Events returns the events committed so far.
func (uow *MemoryUnitOfWork) Events() []DomainEvent {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	return append([]DomainEvent(nil), uow.events...)
}

// AuditLogs returns the audit entries committed so far.
func (uow *MemoryUnitOfWork) AuditLogs() []*AuditLog {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	return append([]*AuditLog(nil), uow.auditLogs...)
}
