package platform

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
	"go.venuehub.tech/internal/platform/store/storetest"
)

func adminFlags(t *testing.T, fx *storetest.Fixture, roleID string) map[string]permission.Flags {
	t.Helper()
	rows, err := fx.Grants.FindByRoleID(context.Background(), roleID)
	if err != nil {
		t.Fatalf("load grants: %v", err)
	}
	out := make(map[string]permission.Flags, len(rows))
	for _, row := range rows {
		out[row.FeatureID] = row.Flags
	}
	return out
}

func TestBootstrap_SeedsCatalogAndAdminRole(t *testing.T) {
	fx := storetest.New(t)
	passwords := local.NewPasswordServiceWithCost(bcrypt.MinCost)

	seeded, err := Bootstrap(context.Background(), fx.Store, fx.Locker, passwords, BootstrapConfig{
		CatalogFeatures: []string{"Booking", "booking", " "},
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	want := len(authorization.PlatformFeatures()) + 1
	if len(seeded.Features) != want {
		t.Fatalf("expected %d features, got %d", want, len(seeded.Features))
	}
	if seeded.AdminRole.Name != role.PlatformAdminRoleName {
		t.Errorf("unexpected admin role name %q", seeded.AdminRole.Name)
	}
	if seeded.AdminUser != nil {
		t.Error("no admin user should be seeded without an email")
	}

	flags := adminFlags(t, fx, seeded.AdminRole.ID)
	full := permission.Flags{Read: true, Write: true, Admin: true}
	for _, f := range seeded.Features {
		if flags[f.ID] != full {
			t.Errorf("feature %s: expected rwa, got %+v", f.CatalogKey, flags[f.ID])
		}
	}
}

func TestBootstrap_IsIdempotentAndTopsUpNewFeatures(t *testing.T) {
	fx := storetest.New(t)
	ctx := context.Background()
	passwords := local.NewPasswordServiceWithCost(bcrypt.MinCost)

	first, err := Bootstrap(ctx, fx.Store, fx.Locker, passwords, BootstrapConfig{})
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}

	second, err := Bootstrap(ctx, fx.Store, fx.Locker, passwords, BootstrapConfig{CatalogFeatures: []string{"offers"}})
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if second.AdminRole.ID != first.AdminRole.ID {
		t.Fatal("admin role must be reused, not recreated")
	}

	offers, err := fx.Features.FindByCatalogKey(ctx, feature.Slug("offers"))
	if err != nil || offers == nil {
		t.Fatalf("offers feature not ensured: %v", err)
	}
	if !adminFlags(t, fx, second.AdminRole.ID)[offers.ID].Admin {
		t.Error("new catalog feature must be granted to the admin role")
	}

	roles, err := fx.Roles.FindAll(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 1 {
		t.Errorf("expected exactly one role, got %d", len(roles))
	}
}

func TestBootstrap_SeedsAdminUserOnce(t *testing.T) {
	fx := storetest.New(t)
	ctx := context.Background()
	passwords := local.NewPasswordServiceWithCost(bcrypt.MinCost)
	cfg := BootstrapConfig{AdminEmail: "Root@VenueHub.test", AdminPassword: "Adm1nPassw0rd!"}

	seeded, err := Bootstrap(ctx, fx.Store, fx.Locker, passwords, cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	admin := seeded.AdminUser
	if admin == nil || admin.Email != "root@venuehub.test" {
		t.Fatalf("expected normalized admin email, got %+v", admin)
	}
	if !admin.HasRole(seeded.AdminRole.ID) || !admin.CanAuthenticate() {
		t.Error("bootstrap admin must be active and hold the admin role")
	}
	if err := passwords.VerifyPassword(cfg.AdminPassword, admin.PasswordHash); err != nil {
		t.Errorf("bootstrap password does not verify: %v", err)
	}

	again, err := Bootstrap(ctx, fx.Store, fx.Locker, passwords, cfg)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if again.AdminUser.ID != admin.ID {
		t.Error("existing bootstrap admin must be kept")
	}
}

func TestBootstrap_RejectsWeakAdminPassword(t *testing.T) {
	fx := storetest.New(t)
	passwords := local.NewPasswordServiceWithCost(bcrypt.MinCost)

	_, err := Bootstrap(context.Background(), fx.Store, fx.Locker, passwords, BootstrapConfig{
		AdminEmail:    "root@venuehub.test",
		AdminPassword: "short",
	})
	if err == nil {
		t.Fatal("expected weak password to be refused")
	}
}
