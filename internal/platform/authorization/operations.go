package authorization

import (
	"context"
	"net/http"

	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
)

// Platform features guarding the authorization API itself.
const (
	FeaturePlatformAdministration = "platform-administration"
	FeatureRoleManagement         = "role-management"
	FeatureUserManagement         = "user-management"
	FeatureEnterpriseManagement   = "enterprise-management"
)

// PlatformFeatures returns the features every deployment ensures at startup.
func PlatformFeatures() []string {
	return []string{
		FeaturePlatformAdministration,
		FeatureRoleManagement,
		FeatureUserManagement,
		FeatureEnterpriseManagement,
	}
}

// IsPlatformFeature reports whether f is one of the platform features.
func IsPlatformFeature(f *feature.Feature) bool {
	for _, name := range PlatformFeatures() {
		if f.CatalogKey == feature.Slug(name) {
			return true
		}
	}
	return false
}

// PlatformFeatureIDs returns the ids that name a platform feature, in input
// order. Tenant roles must never be granted those.
func PlatformFeatureIDs(ctx context.Context, features feature.Repository, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := features.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]bool, len(found))
	for _, f := range found {
		if IsPlatformFeature(f) {
			reserved[f.ID] = true
		}
	}
	var out []string
	for _, id := range ids {
		if reserved[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// Operation ids of the protected HTTP operations.
const (
	OpProfileRead               = "profile.read"
	OpFeaturesEnsure            = "features.ensure"
	OpRolesCreate               = "roles.create"
	OpRolesReplaceGrants        = "roles.replace-grants"
	OpRolesRemoveFeature        = "roles.remove-feature"
	OpRolesDelete               = "roles.delete"
	OpEnterprisesAddSubUser     = "enterprises.add-sub-user"
	OpEnterprisesUpdateFeatures = "enterprises.update-features"
	OpEnterprisesSetActive      = "enterprises.set-active"
	OpUsersSetActive            = "users.set-active"
	OpUsersSetBlocked           = "users.set-blocked"
)

// RegisterDefaults registers every protected operation of the HTTP API.
func RegisterDefaults(r *Registry) {
	r.MustRegister(OpProfileRead, Requirement{})
	r.MustRegister(OpFeaturesEnsure, Requirement{Features: []string{FeaturePlatformAdministration}})

	roleManagement := Requirement{Features: []string{FeatureRoleManagement}}
	r.MustRegister(OpRolesCreate, roleManagement)
	r.MustRegister(OpRolesReplaceGrants, roleManagement)
	r.MustRegister(OpRolesRemoveFeature, roleManagement)
	r.MustRegister(OpRolesDelete, roleManagement)

	// The use case admits only the enterprise's own admin.
	r.MustRegister(OpEnterprisesAddSubUser, Requirement{})
	r.MustRegister(OpEnterprisesUpdateFeatures, Requirement{Features: []string{FeatureEnterpriseManagement}})
	r.MustRegister(OpEnterprisesSetActive, Requirement{Features: []string{FeatureEnterpriseManagement}})

	r.MustRegister(OpUsersSetActive, Requirement{Features: []string{FeatureUserManagement, FeatureEnterpriseManagement}})
	r.MustRegister(OpUsersSetBlocked, Requirement{Features: []string{FeatureUserManagement}})
}

// LevelForMethod maps an HTTP method to the flag a level policy requires.
func LevelForMethod(method string) permission.Level {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return permission.LevelRead
	case http.MethodDelete:
		return permission.LevelAdmin
	default:
		return permission.LevelWrite
	}
}
