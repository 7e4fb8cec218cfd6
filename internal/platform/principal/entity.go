// Package principal holds marketplace users. A user's effective permissions
// are never stored; they are resolved from RoleIDs on demand.
package principal

import (
	"slices"
	"time"

	"go.venuehub.tech/internal/platform/auth/jwt"
)

// CollectionName is the collection users are stored in.
const CollectionName = "users"

// User is a person who can authenticate.
type User struct {
	ID            string   `bson:"_id" json:"id"`
	Email         string   `bson:"email" json:"email"`
	Name          string   `bson:"name,omitempty" json:"name,omitempty"`
	RoleIDs       []string `bson:"roleIds" json:"roleIds"`
	TenantID      string   `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	IsTenantAdmin bool     `bson:"isTenantAdmin" json:"isTenantAdmin"`
	Active        bool     `bson:"active" json:"active"`
	Blocked       bool     `bson:"blocked" json:"blocked"`

	PasswordHash string `bson:"passwordHash,omitempty" json:"-"`

	// ResetTokenHash is the SHA-256 of the one-time credential setup token.
	// The token itself is only ever sent to the user.
	ResetTokenHash      string     `bson:"resetTokenHash,omitempty" json:"-"`
	ResetTokenExpiresAt *time.Time `bson:"resetTokenExpiresAt,omitempty" json:"-"`

	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) AggregateID() string    { return u.ID }
func (u *User) CollectionName() string { return CollectionName }

// CanAuthenticate reports whether the user may be issued a token.
func (u *User) CanAuthenticate() bool {
	return u.Active && !u.Blocked
}

// HasRole checks if the user holds a role
func (u *User) HasRole(roleID string) bool {
	return slices.Contains(u.RoleIDs, roleID)
}

// ResetTokenValid reports whether hash matches an unexpired reset token.
func (u *User) ResetTokenValid(hash string, now time.Time) bool {
	if u.ResetTokenHash == "" || u.ResetTokenHash != hash {
		return false
	}
	return u.ResetTokenExpiresAt != nil && now.Before(*u.ResetTokenExpiresAt)
}

// DefaultResetTokenTTL is how long a credential setup token stays valid.
const DefaultResetTokenTTL = 72 * time.Hour

// IssueResetToken stores the hash of a fresh one-time token on the user and
// returns the token. Only the hash is persisted.
func (u *User) IssueResetToken(now time.Time, ttl time.Duration) (string, error) {
	token, err := jwt.GenerateResetToken()
	if err != nil {
		return "", err
	}
	expiresAt := now.Add(ttl)
	u.ResetTokenHash = jwt.HashToken(token)
	u.ResetTokenExpiresAt = &expiresAt
	return token, nil
}

// ClearResetToken consumes the one-time token.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
}

// Field names used by filtered bulk updates.
const (
	FieldTenantID  = "tenantId"
	FieldActive    = "active"
	FieldUpdatedAt = "updatedAt"
)
