// Package events defines the domain events of the authorization core.
// They are written to the events collection in the same transaction as the
// state change they describe.
package events

import (
	"fmt"

	"go.venuehub.tech/internal/platform/common"
)

const (
	// SourceAuthz is the event source for authorization events
	SourceAuthz = "venuehub:authz"

	domain = "authz"
)

// Event type codes follow the format: {app}:{domain}:{aggregate}:{action}

// Feature event codes
const (
	EventTypeFeatureEnsured = "venuehub:authz:feature:ensured"
)

// Role event codes
const (
	EventTypeRoleCreated        = "venuehub:authz:role:created"
	EventTypeRoleGrantsReplaced = "venuehub:authz:role:grants-replaced"
	EventTypeRoleFeatureRemoved = "venuehub:authz:role:feature-removed"
	EventTypeRoleDeleted        = "venuehub:authz:role:deleted"
)

// Enterprise event codes
const (
	EventTypeEnterpriseCreated         = "venuehub:authz:enterprise:created"
	EventTypeEnterpriseActivated       = "venuehub:authz:enterprise:activated"
	EventTypeEnterpriseDeactivated     = "venuehub:authz:enterprise:deactivated"
	EventTypeEnterpriseFeaturesUpdated = "venuehub:authz:enterprise:features-updated"
)

// User event codes
const (
	EventTypeUserRegistered     = "venuehub:authz:user:registered"
	EventTypeUserSubUserAdded   = "venuehub:authz:user:sub-user-added"
	EventTypeUserActivated      = "venuehub:authz:user:activated"
	EventTypeUserDeactivated    = "venuehub:authz:user:deactivated"
	EventTypeUserBlocked        = "venuehub:authz:user:blocked"
	EventTypeUserUnblocked      = "venuehub:authz:user:unblocked"
	EventTypeUserCredentialsSet = "venuehub:authz:user:credentials-set"
)

// subject builds a subject string for domain events
// Format: {domain}.{aggregate}.{id}
func subject(aggregate, id string) string {
	return fmt.Sprintf("%s.%s.%s", domain, aggregate, id)
}

// messageGroup builds a message group key for FIFO ordering
// Format: {domain}:{aggregate}:{id}
func messageGroup(aggregate, id string) string {
	return fmt.Sprintf("%s:%s:%s", domain, aggregate, id)
}

func newBase(ctx *common.ExecutionContext, eventType, aggregate, id string) common.BaseDomainEvent {
	return common.NewBaseDomainEvent(
		ctx,
		eventType,
		SourceAuthz,
		subject(aggregate, id),
		messageGroup(aggregate, id),
	)
}
