// Package enterprise holds tenants. Each enterprise owns exactly one admin
// role, named from the tenant name.
package enterprise

import (
	"strings"
	"time"
	"unicode"
)

// CollectionName is the collection enterprises are stored in.
const CollectionName = "enterprises"

// Enterprise is a tenant of the marketplace.
type Enterprise struct {
	ID          string    `bson:"_id" json:"id"`
	TenantName  string    `bson:"tenantName" json:"tenantName"`
	TenantKey   string    `bson:"tenantKey" json:"tenantKey"`
	AdminRoleID string    `bson:"adminRoleId" json:"adminRoleId"`
	AdminUserID string    `bson:"adminUserId" json:"adminUserId"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (e *Enterprise) AggregateID() string    { return e.ID }
func (e *Enterprise) CollectionName() string { return CollectionName }

const adminRoleSuffix = "_ADMIN"

// TenantKey normalizes a tenant name: uppercased, with every run of
// characters other than letters and digits collapsed to one underscore.
// "Acme" and "ACME " share the key "ACME".
func TenantKey(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// AdminRoleName derives the admin role name of a tenant, e.g. "ACME_ADMIN".
func AdminRoleName(tenantName string) string {
	return TenantKey(tenantName) + adminRoleSuffix
}

// ScopedRoleName derives a sub-user role name from the admin role name plus
// a uniqueness suffix, e.g. "ACME_USER_0HZXQ3K1B2C3D".
func ScopedRoleName(adminRoleName, suffix string) string {
	return strings.TrimSuffix(adminRoleName, adminRoleSuffix) + "_USER_" + strings.ToUpper(suffix)
}
