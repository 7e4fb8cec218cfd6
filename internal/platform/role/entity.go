// Package role holds named bundles of feature grants.
package role

import (
	"slices"
	"time"
)

// CollectionName is the collection roles are stored in.
const CollectionName = "roles"

// MemberRoleName is the default role held by every self-registered user.
// It is created lazily and carries no grants.
const MemberRoleName = "member"

// PlatformAdminRoleName is the role seeded at startup with every catalog
// feature.
const PlatformAdminRoleName = "PLATFORM_ADMIN"

// Role is a named bundle of per-feature grants. FeatureIDs is derived from
// the grant rows and only lists features with at least one flag set.
type Role struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	FeatureIDs   []string  `bson:"featureIds" json:"featureIds"`
	TenantScoped bool      `bson:"tenantScoped" json:"tenantScoped"`
	TenantID     string    `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (r *Role) AggregateID() string    { return r.ID }
func (r *Role) CollectionName() string { return CollectionName }

// HasFeature reports whether the role grants anything on the feature.
func (r *Role) HasFeature(featureID string) bool {
	return slices.Contains(r.FeatureIDs, featureID)
}
