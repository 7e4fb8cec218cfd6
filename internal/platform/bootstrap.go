// Package platform seeds the authorization catalog when the service starts.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
	featureops "go.venuehub.tech/internal/platform/feature/operations"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
	roleops "go.venuehub.tech/internal/platform/role/operations"
	"go.venuehub.tech/internal/platform/store"
)

// BootstrapConfig lists what to seed.
type BootstrapConfig struct {
	// CatalogFeatures are ensured in addition to the platform features.
	CatalogFeatures []string

	// AdminEmail and AdminPassword seed a user holding the platform admin
	// role. Both empty skips the seed.
	AdminEmail    string
	AdminPassword string
}

// Seeded is what Bootstrap found or created.
type Seeded struct {
	Features  []*feature.Feature
	AdminRole *role.Role
	AdminUser *principal.User
}

// Bootstrap ensures the features, the PLATFORM_ADMIN role and the optional
// bootstrap admin. Running it again is a no-op apart from adding newly
// configured features to the admin role.
func Bootstrap(ctx context.Context, s *store.Store, locker lock.Locker, passwords *local.PasswordService, cfg BootstrapConfig) (*Seeded, error) {
	execCtx := common.NewExecutionContext(common.SystemPrincipal)
	seeded := &Seeded{}

	ensure := featureops.NewEnsureFeatureUseCase(s.Features, s.UnitOfWork, locker)
	names := append(authorization.PlatformFeatures(), cfg.CatalogFeatures...)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" || seen[feature.Slug(name)] {
			continue
		}
		seen[feature.Slug(name)] = true

		result := ensure.Execute(ctx, featureops.EnsureFeatureCommand{Name: name}, execCtx)
		if result.IsFailure() {
			return nil, fmt.Errorf("ensure feature %q: %w", name, result.Error())
		}
		seeded.Features = append(seeded.Features, result.Value())
	}

	adminRole, err := ensureAdminRole(ctx, s, locker, seeded.Features, execCtx)
	if err != nil {
		return nil, err
	}
	seeded.AdminRole = adminRole

	if cfg.AdminEmail != "" {
		user, err := ensureAdminUser(ctx, s, passwords, adminRole, cfg, execCtx)
		if err != nil {
			return nil, err
		}
		seeded.AdminUser = user
	}

	slog.Info("Bootstrap complete",
		"features", len(seeded.Features),
		"adminRoleId", adminRole.ID,
		"adminSeeded", seeded.AdminUser != nil)
	return seeded, nil
}

func fullGrants(features []*feature.Feature) []permission.FeatureGrant {
	grants := make([]permission.FeatureGrant, 0, len(features))
	for _, f := range features {
		grants = append(grants, permission.FeatureGrant{FeatureID: f.ID, Read: true, Write: true, Admin: true})
	}
	return grants
}

func ensureAdminRole(ctx context.Context, s *store.Store, locker lock.Locker, features []*feature.Feature, execCtx *common.ExecutionContext) (*role.Role, error) {
	existing, err := s.Roles.FindByName(ctx, role.PlatformAdminRoleName)
	if err != nil {
		return nil, fmt.Errorf("find admin role: %w", err)
	}

	if existing == nil {
		result := roleops.NewCreateRoleUseCase(s.Roles, s.Features, s.UnitOfWork).Execute(ctx, roleops.CreateRoleCommand{
			Name:        role.PlatformAdminRoleName,
			Description: "Full access to every catalog feature",
			Grants:      fullGrants(features),
		}, execCtx)
		if result.IsFailure() {
			return nil, fmt.Errorf("create admin role: %w", result.Error())
		}
		slog.Info("Created platform admin role", "roleId", result.Value().ID)
		return result.Value(), nil
	}

	var missing bool
	for _, f := range features {
		if !existing.HasFeature(f.ID) {
			missing = true
			break
		}
	}
	if !missing {
		return existing, nil
	}

	// Keep whatever grants were added by hand and top up the rest.
	rows, err := s.Grants.FindByRoleID(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("load admin role grants: %w", err)
	}
	grants := append(permission.ToFeatureGrants(rows), fullGrants(features)...)

	result := roleops.NewReplaceRoleGrantsUseCase(s.Roles, s.Features, s.UnitOfWork, locker).Execute(ctx, roleops.ReplaceRoleGrantsCommand{
		RoleID: existing.ID,
		Grants: grants,
	}, execCtx)
	if result.IsFailure() {
		return nil, fmt.Errorf("top up admin role: %w", result.Error())
	}
	slog.Info("Added new features to platform admin role", "roleId", existing.ID)
	return result.Value(), nil
}

func ensureAdminUser(ctx context.Context, s *store.Store, passwords *local.PasswordService, adminRole *role.Role, cfg BootstrapConfig, execCtx *common.ExecutionContext) (*principal.User, error) {
	email, err := local.ValidateEmail(cfg.AdminEmail)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin email: %w", err)
	}

	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find bootstrap admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if err := passwords.ValidatePasswordStrength(cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin password: %w", err)
	}
	hash, err := passwords.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	now := time.Now().UTC()
	u := &principal.User{
		ID:           tsid.Generate(),
		Email:        email,
		Name:         "Platform Administrator",
		RoleIDs:      []string{adminRole.ID},
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	result := s.UnitOfWork.Commit(ctx, u, events.NewUserRegistered(execCtx, u), struct {
		Email string `json:"email"`
	}{Email: email})
	if result.IsFailure() {
		return nil, fmt.Errorf("seed bootstrap admin: %w", result.Error())
	}
	slog.Info("Seeded bootstrap admin", "userId", u.ID, "email", email)
	return u, nil
}
