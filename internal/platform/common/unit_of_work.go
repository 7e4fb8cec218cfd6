package common

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/repository"
	"go.venuehub.tech/internal/common/tsid"
)

// UnitOfWork persists state changes together with their domain event and
// audit log entry in one atomic step.
//
// This is the ONLY way a mutating use case can return a successful Result:
// the Commit methods are the sole callers of the unexported success
// constructor. If any write fails the whole change set is rolled back and a
// failure is returned.
type UnitOfWork interface {
	// Commit upserts a single aggregate.
	Commit(ctx context.Context, aggregate AggregateRoot, event DomainEvent, command any) Result[DomainEvent]

	// CommitAll upserts several aggregates, e.g. the admin Role, Enterprise
	// and admin User created by enterprise provisioning.
	CommitAll(ctx context.Context, aggregates []AggregateRoot, event DomainEvent, command any) Result[DomainEvent]

	// CommitChanges applies a full change set: filtered deletes first, then
	// single deletes, upserts and bulk updates.
	CommitChanges(ctx context.Context, changes *ChangeSet, event DomainEvent, command any) Result[DomainEvent]
}

// AggregateRoot is implemented by every persisted entity.
type AggregateRoot interface {
	// AggregateID returns the unique identifier for this aggregate.
	AggregateID() string

	// CollectionName returns the collection the aggregate is stored in.
	CollectionName() string
}

// Auditable is an optional interface that commands can implement
// to customize how they are serialized for audit logging.
type Auditable interface {
	// ToAuditJSON returns the JSON representation for audit logging.
	// Use this to redact sensitive fields like passwords.
	ToAuditJSON() string
}

// ChangeSet collects the writes of one use case.
type ChangeSet struct {
	Purges  []BulkDelete
	Deletes []AggregateRoot
	Upserts []AggregateRoot
	Updates []BulkUpdate
}

// BulkDelete removes every document of a collection whose fields equal the
// Match values.
type BulkDelete struct {
	Collection string
	Match      map[string]any
}

// BulkUpdate sets fields on every document of a collection whose fields equal
// the Match values. It is issued as one filtered update, never row by row.
type BulkUpdate struct {
	Collection string
	Match      map[string]any
	Set        map[string]any
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{}
}

// Upsert adds aggregates to insert or replace.
func (c *ChangeSet) Upsert(aggregates ...AggregateRoot) *ChangeSet {
	c.Upserts = append(c.Upserts, aggregates...)
	return c
}

// Delete adds aggregates to remove.
func (c *ChangeSet) Delete(aggregates ...AggregateRoot) *ChangeSet {
	c.Deletes = append(c.Deletes, aggregates...)
	return c
}

// DeleteMany adds a filtered bulk delete.
func (c *ChangeSet) DeleteMany(collection string, match map[string]any) *ChangeSet {
	c.Purges = append(c.Purges, BulkDelete{Collection: collection, Match: match})
	return c
}

// UpdateMany adds a filtered bulk update.
func (c *ChangeSet) UpdateMany(collection string, match, set map[string]any) *ChangeSet {
	c.Updates = append(c.Updates, BulkUpdate{Collection: collection, Match: match, Set: set})
	return c
}

// IsEmpty reports whether the change set holds no writes.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Purges) == 0 && len(c.Upserts) == 0 && len(c.Deletes) == 0 && len(c.Updates) == 0
}

// AuditLog records who ran which command against which entity.
type AuditLog struct {
	ID            string    `bson:"_id" json:"id"`
	EntityType    string    `bson:"entityType" json:"entityType"`
	EntityID      string    `bson:"entityId" json:"entityId"`
	Operation     string    `bson:"operation" json:"operation"`
	OperationJSON string    `bson:"operationJson" json:"operationJson"`
	PrincipalID   string    `bson:"principalId" json:"principalId"`
	PerformedAt   time.Time `bson:"performedAt" json:"performedAt"`
}

const (
	eventsCollection    = "events"
	auditLogsCollection = "audit_logs"
)

// NewAuditLog builds the audit entry for a committed command.
func NewAuditLog(event DomainEvent, command any) *AuditLog {
	var operationJSON string
	if auditable, ok := command.(Auditable); ok {
		operationJSON = auditable.ToAuditJSON()
	} else if b, err := json.Marshal(command); err == nil {
		operationJSON = string(b)
	} else {
		operationJSON = "{}"
	}

	return &AuditLog{
		ID:            tsid.Generate(),
		EntityType:    extractEntityType(event.Subject()),
		EntityID:      extractEntityID(event.Subject()),
		Operation:     operationName(command),
		OperationJSON: operationJSON,
		PrincipalID:   event.PrincipalID(),
		PerformedAt:   event.Time(),
	}
}

// extractEntityType returns the aggregate segment of a
// {domain}.{aggregate}.{id} subject in PascalCase.
func extractEntityType(subject string) string {
	parts := strings.SplitN(subject, ".", 3)
	if len(parts) >= 2 && parts[1] != "" {
		return strings.ToUpper(parts[1][:1]) + parts[1][1:]
	}
	return "Unknown"
}

func extractEntityID(subject string) string {
	parts := strings.SplitN(subject, ".", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return ""
}

func operationName(command any) string {
	if command == nil {
		return ""
	}
	t := reflect.TypeOf(command)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// commitFailure maps a failed commit to a use case error. Unique index
// violations surface as Conflict so that concurrent creations of the same
// name fail the same way as the pre-check.
func commitFailure(err error) *UseCaseError {
	if errors.Is(repository.Translate(err), repository.ErrDuplicateKey) {
		return ConflictError(ErrCodeAlreadyExists, "A record with the same unique key already exists", nil)
	}
	return InternalError(ErrCodeCommitFailed, "Transaction failed", map[string]any{"error": err.Error()})
}
