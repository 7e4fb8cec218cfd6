package enterprise

import (
	"time"

	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/principal"
)

// DeactivationChanges builds the deactivation cascade: the enterprise row
// and, as one filtered bulk update, every user whose tenant is the
// enterprise. ent must already be marked inactive.
func DeactivationChanges(ent *Enterprise, now time.Time) *common.ChangeSet {
	return common.NewChangeSet().
		Upsert(ent).
		UpdateMany(principal.CollectionName,
			map[string]any{principal.FieldTenantID: ent.ID},
			map[string]any{principal.FieldActive: false, principal.FieldUpdatedAt: now})
}
