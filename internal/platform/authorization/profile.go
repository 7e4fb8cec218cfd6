// Package authorization turns role memberships into an AccessProfile and
// decides, from a signed session alone, whether a caller may run an
// operation.
package authorization

import (
	"sort"
	"time"

	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
)

// AccessProfile maps a feature name to the OR-merged flags of every role a
// user holds. It is derived at token issuance and never persisted.
type AccessProfile map[string]permission.Flags

// Lookup returns the flags for a feature. Names are compared by catalog key,
// so "Venue Booking" finds "venue_booking".
func (p AccessProfile) Lookup(name string) (permission.Flags, bool) {
	if flags, ok := p[name]; ok {
		return flags, true
	}
	key := feature.Slug(name)
	for n, flags := range p {
		if feature.Slug(n) == key {
			return flags, true
		}
	}
	return permission.Flags{}, false
}

// Allows reports whether the profile holds the feature at the given level.
func (p AccessProfile) Allows(name string, level permission.Level) bool {
	flags, ok := p.Lookup(name)
	return ok && flags.Has(level)
}

// AllowsAny reports whether at least one of the features is held at the
// given level.
func (p AccessProfile) AllowsAny(names []string, level permission.Level) bool {
	for _, name := range names {
		if p.Allows(name, level) {
			return true
		}
	}
	return false
}

// Names returns the feature names in sorted order.
func (p AccessProfile) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Session is the snapshot signed into a token at issuance. The Profile is
// frozen until ExpiresAt: grant changes made after issuance are invisible to
// the token until the user signs in again.
type Session struct {
	UserID    string        `json:"userId"`
	TenantID  string        `json:"tenantId,omitempty"`
	Roles     []string      `json:"roles"`
	Profile   AccessProfile `json:"profile"`
	IssuedAt  time.Time     `json:"issuedAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// SessionSigner signs and verifies sessions. Verify must reject tampered,
// malformed and expired tokens without consulting any store.
type SessionSigner interface {
	Sign(session *Session) (string, error)
	Verify(token string) (*Session, error)
}
