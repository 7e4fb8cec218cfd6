// Package permission holds the per-(Role, Feature) grant rows and the flag
// algebra used to merge them.
package permission

import (
	"sort"
	"time"
)

// CollectionName is the collection grant rows are stored in.
const CollectionName = "permission_grants"

// Flags are the three independent permission levels on a feature.
type Flags struct {
	Read  bool `bson:"read" json:"read"`
	Write bool `bson:"write" json:"write"`
	Admin bool `bson:"admin" json:"admin"`
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.Read || f.Write || f.Admin
}

// Or merges two flag sets; a flag is set if either side sets it.
func (f Flags) Or(other Flags) Flags {
	return Flags{
		Read:  f.Read || other.Read,
		Write: f.Write || other.Write,
		Admin: f.Admin || other.Admin,
	}
}

// Covers reports whether every flag set in other is also set in f.
func (f Flags) Covers(other Flags) bool {
	return (f.Read || !other.Read) && (f.Write || !other.Write) && (f.Admin || !other.Admin)
}

// Has reports whether the given level is set.
func (f Flags) Has(level Level) bool {
	switch level {
	case LevelRead:
		return f.Read
	case LevelWrite:
		return f.Write
	case LevelAdmin:
		return f.Admin
	default:
		return f.Any()
	}
}

// Level names one of the flags. LevelAny is satisfied by any set flag.
type Level string

const (
	LevelAny   Level = ""
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelAdmin Level = "admin"
)

// Grant is one persisted grant row, keyed by (RoleID, FeatureID).
type Grant struct {
	ID        string    `bson:"_id" json:"id"`
	RoleID    string    `bson:"roleId" json:"roleId"`
	FeatureID string    `bson:"featureId" json:"featureId"`
	Flags     `bson:",inline"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (g *Grant) AggregateID() string    { return g.ID }
func (g *Grant) CollectionName() string { return CollectionName }

// GrantID returns the deterministic row id for a (role, feature) pair.
func GrantID(roleID, featureID string) string {
	return roleID + ":" + featureID
}

// FeatureGrant is a requested grant on a feature, before it is attached to a
// Role.
type FeatureGrant struct {
	FeatureID string `json:"featureId" validate:"required"`
	Read      bool   `json:"read"`
	Write     bool   `json:"write"`
	Admin     bool   `json:"admin"`
}

func (g FeatureGrant) Flags() Flags {
	return Flags{Read: g.Read, Write: g.Write, Admin: g.Admin}
}

// Normalize drops all-false grants and merges duplicates of the same feature
// with OR. The result is ordered by feature id.
func Normalize(grants []FeatureGrant) []FeatureGrant {
	merged := make(map[string]Flags, len(grants))
	for _, g := range grants {
		if !g.Flags().Any() {
			continue
		}
		merged[g.FeatureID] = merged[g.FeatureID].Or(g.Flags())
	}

	out := make([]FeatureGrant, 0, len(merged))
	for featureID, f := range merged {
		out = append(out, FeatureGrant{FeatureID: featureID, Read: f.Read, Write: f.Write, Admin: f.Admin})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeatureID < out[j].FeatureID })
	return out
}

// FeatureIDs returns the sorted feature ids of grants with at least one flag.
func FeatureIDs(grants []FeatureGrant) []string {
	ids := make([]string, 0, len(grants))
	for _, g := range Normalize(grants) {
		ids = append(ids, g.FeatureID)
	}
	return ids
}

// Rows materializes normalized grants as rows of the given role.
func Rows(roleID string, grants []FeatureGrant, now time.Time) []*Grant {
	normalized := Normalize(grants)
	rows := make([]*Grant, 0, len(normalized))
	for _, g := range normalized {
		rows = append(rows, &Grant{
			ID:        GrantID(roleID, g.FeatureID),
			RoleID:    roleID,
			FeatureID: g.FeatureID,
			Flags:     g.Flags(),
			CreatedAt: now,
		})
	}
	return rows
}

// ToFeatureGrants converts rows back into requested grants.
func ToFeatureGrants(rows []*Grant) []FeatureGrant {
	out := make([]FeatureGrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, FeatureGrant{FeatureID: r.FeatureID, Read: r.Flags.Read, Write: r.Flags.Write, Admin: r.Flags.Admin})
	}
	return out
}
