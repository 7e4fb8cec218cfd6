package common

import (
	"encoding/json"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/tsid"
)

// DomainEvent is the interface that all domain events must implement.
// Its shape follows CloudEvents.
type DomainEvent interface {
	// EventID returns the unique identifier for this event.
	EventID() string

	// EventType returns the type code, formatted {app}:{domain}:{aggregate}:{action}.
	// Example: "venuehub:authz:role:created"
	EventType() string

	SpecVersion() string
	Source() string

	// Subject returns the qualified aggregate identifier,
	// formatted {domain}.{aggregate}.{id}.
	Subject() string

	Time() time.Time
	CorrelationID() string
	CausationID() string
	ExecutionID() string

	// PrincipalID returns the ID of who initiated the action.
	PrincipalID() string

	// MessageGroup returns the ordering key, formatted {domain}:{aggregate}:{id}.
	MessageGroup() string

	// ToDataJSON serializes the event-specific payload to JSON.
	ToDataJSON() string
}

// BaseDomainEvent provides a base implementation of DomainEvent
// that can be embedded in concrete event types.
type BaseDomainEvent struct {
	ID          string    `json:"eventId" bson:"_id"`
	Type        string    `json:"eventType" bson:"type"`
	Version     string    `json:"specVersion" bson:"specVersion"`
	Src         string    `json:"source" bson:"source"`
	Subj        string    `json:"subject" bson:"subject"`
	Timestamp   time.Time `json:"time" bson:"time"`
	Correlation string    `json:"correlationId" bson:"correlationId"`
	Causation   string    `json:"causationId,omitempty" bson:"causationId,omitempty"`
	Execution   string    `json:"executionId" bson:"executionId"`
	Principal   string    `json:"principalId" bson:"principalId"`
	MsgGroup    string    `json:"messageGroup" bson:"messageGroup"`
}

// NewBaseDomainEvent creates a new BaseDomainEvent with fields populated
// from the execution context.
func NewBaseDomainEvent(ctx *ExecutionContext, eventType, source, subject, messageGroup string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          tsid.Generate(),
		Type:        eventType,
		Version:     "1.0",
		Src:         source,
		Subj:        subject,
		Timestamp:   time.Now(),
		Correlation: ctx.CorrelationID,
		Causation:   ctx.CausationID,
		Execution:   ctx.ExecutionID,
		Principal:   ctx.PrincipalID,
		MsgGroup:    messageGroup,
	}
}

func (e BaseDomainEvent) EventID() string       { return e.ID }
func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) SpecVersion() string   { return e.Version }
func (e BaseDomainEvent) Source() string        { return e.Src }
func (e BaseDomainEvent) Subject() string       { return e.Subj }
func (e BaseDomainEvent) Time() time.Time       { return e.Timestamp }
func (e BaseDomainEvent) CorrelationID() string { return e.Correlation }
func (e BaseDomainEvent) CausationID() string   { return e.Causation }
func (e BaseDomainEvent) ExecutionID() string   { return e.Execution }
func (e BaseDomainEvent) PrincipalID() string   { return e.Principal }
func (e BaseDomainEvent) MessageGroup() string  { return e.MsgGroup }

// ToDataJSON returns an empty object for the base event.
// Concrete event types override this to include their payload.
func (e BaseDomainEvent) ToDataJSON() string {
	return "{}"
}

// PersistedEvent represents a domain event as stored in the events collection.
type PersistedEvent struct {
	ID              string        `bson:"_id" json:"id"`
	SpecVersion     string        `bson:"specVersion" json:"specVersion"`
	Type            string        `bson:"type" json:"type"`
	Source          string        `bson:"source" json:"source"`
	Subject         string        `bson:"subject" json:"subject"`
	Time            time.Time     `bson:"time" json:"time"`
	Data            string        `bson:"data" json:"data"`
	CorrelationID   string        `bson:"correlationId" json:"correlationId"`
	CausationID     string        `bson:"causationId,omitempty" json:"causationId,omitempty"`
	ExecutionID     string        `bson:"executionId" json:"executionId"`
	DeduplicationID string        `bson:"deduplicationId" json:"deduplicationId"`
	MessageGroup    string        `bson:"messageGroup" json:"messageGroup"`
	ContextData     []ContextData `bson:"contextData" json:"contextData"`
}

// ContextData represents searchable key-value metadata on an event.
type ContextData struct {
	Key   string `bson:"key" json:"key"`
	Value string `bson:"value" json:"value"`
}

// ToPersistedEvent converts a DomainEvent to a PersistedEvent for storage.
func ToPersistedEvent(event DomainEvent) *PersistedEvent {
	return &PersistedEvent{
		ID:              event.EventID(),
		SpecVersion:     event.SpecVersion(),
		Type:            event.EventType(),
		Source:          event.Source(),
		Subject:         event.Subject(),
		Time:            event.Time(),
		Data:            event.ToDataJSON(),
		CorrelationID:   event.CorrelationID(),
		CausationID:     event.CausationID(),
		ExecutionID:     event.ExecutionID(),
		DeduplicationID: event.EventType() + "-" + event.EventID(),
		MessageGroup:    event.MessageGroup(),
		ContextData: []ContextData{
			{Key: "principalId", Value: event.PrincipalID()},
			{Key: "aggregateType", Value: strings.ToLower(extractEntityType(event.Subject()))},
		},
	}
}

// MarshalDataJSON is a helper to serialize event payload to JSON.
func MarshalDataJSON(data any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
