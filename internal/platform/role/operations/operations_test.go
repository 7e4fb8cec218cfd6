package operations

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
	"go.venuehub.tech/internal/platform/store/storetest"
)

var g = storetest.Grant

func storedGrants(t *testing.T, fx *storetest.Fixture, roleID string) map[string]permission.Flags {
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

func expectKind(t *testing.T, err *common.UseCaseError, kind common.ErrorKind, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got success", kind)
	}
	if err.Kind != kind || err.Code != code {
		t.Fatalf("expected %s/%s, got %s/%s", kind, code, err.Kind, err.Code)
	}
}

func TestCreateRole_DropsAllFalseGrants(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	offers := fx.Feature(t, "offers")
	uc := NewCreateRoleUseCase(fx.Roles, fx.Features, fx.UoW)

	result := uc.Execute(context.Background(), CreateRoleCommand{
		Name:   "editor",
		Grants: []permission.FeatureGrant{g(booking.ID, "rw"), g(offers.ID, "")},
	}, fx.ExecCtx("admin"))
	if result.IsFailure() {
		t.Fatalf("create failed: %v", result.Error())
	}

	r := result.Value()
	if len(r.FeatureIDs) != 1 || r.FeatureIDs[0] != booking.ID {
		t.Errorf("expected featureIds [%s], got %v", booking.ID, r.FeatureIDs)
	}
	grants := storedGrants(t, fx, r.ID)
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant row, got %d", len(grants))
	}
	if _, ok := grants[offers.ID]; ok {
		t.Error("all-false grant must not be persisted")
	}
}

func TestCreateRole_WithoutGrants(t *testing.T) {
	fx := storetest.New(t)
	uc := NewCreateRoleUseCase(fx.Roles, fx.Features, fx.UoW)

	result := uc.Execute(context.Background(), CreateRoleCommand{Name: "viewer"}, fx.ExecCtx("admin"))
	if result.IsFailure() {
		t.Fatalf("create failed: %v", result.Error())
	}
	if len(result.Value().FeatureIDs) != 0 {
		t.Errorf("expected no features, got %v", result.Value().FeatureIDs)
	}
}

func TestCreateRole_Errors(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	fx.Role(t, "editor")
	uc := NewCreateRoleUseCase(fx.Roles, fx.Features, fx.UoW)

	tests := []struct {
		name string
		cmd  CreateRoleCommand
		kind common.ErrorKind
		code string
	}{
		{"empty name", CreateRoleCommand{Name: " "}, common.ErrorKindValidation, common.ErrCodeRequired},
		{"duplicate name", CreateRoleCommand{Name: "editor"}, common.ErrorKindConflict, common.ErrCodeAlreadyExists},
		{
			"unknown feature",
			CreateRoleCommand{Name: "x", Grants: []permission.FeatureGrant{g(booking.ID, "r"), g("nope", "r")}},
			common.ErrorKindInvalidReference, common.ErrCodeUnknownFeature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := uc.Execute(context.Background(), tt.cmd, fx.ExecCtx("admin"))
			expectKind(t, result.Error(), tt.kind, tt.code)
		})
	}

	if n := fx.Tables.Roles.Len(); n != 1 {
		t.Errorf("failed creations must not store roles, have %d", n)
	}
}

func TestReplaceRoleGrants_FullReplace(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	offers := fx.Feature(t, "offers")
	venues := fx.Feature(t, "venues")
	r := fx.Role(t, "editor", g(booking.ID, "rw"), g(offers.ID, "r"))
	uc := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)

	result := uc.Execute(context.Background(), ReplaceRoleGrantsCommand{
		RoleID: r.ID,
		Grants: []permission.FeatureGrant{g(venues.ID, "a"), g(booking.ID, "")},
	}, fx.ExecCtx("admin"))
	if result.IsFailure() {
		t.Fatalf("replace failed: %v", result.Error())
	}

	grants := storedGrants(t, fx, r.ID)
	if len(grants) != 1 || !grants[venues.ID].Admin {
		t.Errorf("expected only venues:admin, got %+v", grants)
	}
	stored, _ := fx.Roles.FindByID(context.Background(), r.ID)
	if len(stored.FeatureIDs) != 1 || stored.FeatureIDs[0] != venues.ID {
		t.Errorf("featureIds not recomputed: %v", stored.FeatureIDs)
	}
}

func TestReplaceRoleGrants_Errors(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	r := fx.Role(t, "editor", g(booking.ID, "r"))
	uc := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)

	missing := uc.Execute(context.Background(), ReplaceRoleGrantsCommand{RoleID: "nope"}, fx.ExecCtx("admin"))
	expectKind(t, missing.Error(), common.ErrorKindNotFound, common.ErrCodeRoleNotFound)

	unknown := uc.Execute(context.Background(), ReplaceRoleGrantsCommand{
		RoleID: r.ID,
		Grants: []permission.FeatureGrant{g("ghost", "r")},
	}, fx.ExecCtx("admin"))
	expectKind(t, unknown.Error(), common.ErrorKindInvalidReference, common.ErrCodeUnknownFeature)

	if grants := storedGrants(t, fx, r.ID); !grants[booking.ID].Read {
		t.Error("rejected replace must leave grants untouched")
	}
}

func TestReplaceRoleGrants_RollsBackOnFailure(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	offers := fx.Feature(t, "offers")
	r := fx.Role(t, "editor", g(booking.ID, "rw"))
	uc := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)

	fx.FailWrites(role.CollectionName)
	result := uc.Execute(context.Background(), ReplaceRoleGrantsCommand{
		RoleID: r.ID,
		Grants: []permission.FeatureGrant{g(offers.ID, "r")},
	}, fx.ExecCtx("admin"))
	expectKind(t, result.Error(), common.ErrorKindInternal, common.ErrCodeCommitFailed)

	grants := storedGrants(t, fx, r.ID)
	if len(grants) != 1 || !grants[booking.ID].Write {
		t.Errorf("old grant rows must survive a failed replace, got %+v", grants)
	}
}

func TestReplaceRoleGrants_ConcurrentReplacesDoNotInterleave(t *testing.T) {
	fx := storetest.New(t)
	var features []string
	for i := 0; i < 6; i++ {
		features = append(features, fx.Feature(t, fmt.Sprintf("f%d", i)).ID)
	}
	r := fx.Role(t, "editor")
	uc := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)

	setA := []permission.FeatureGrant{g(features[0], "r"), g(features[1], "r"), g(features[2], "r")}
	setB := []permission.FeatureGrant{g(features[3], "w"), g(features[4], "w"), g(features[5], "w")}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		set := setA
		if i%2 == 1 {
			set = setB
		}
		wg.Add(1)
		go func(set []permission.FeatureGrant) {
			defer wg.Done()
			uc.Execute(context.Background(), ReplaceRoleGrantsCommand{RoleID: r.ID, Grants: set}, fx.ExecCtx("admin"))
		}(set)
	}
	wg.Wait()

	grants := storedGrants(t, fx, r.ID)
	if len(grants) != 3 {
		t.Fatalf("expected exactly one complete set, got %+v", grants)
	}
	_, inA := grants[features[0]]
	for _, id := range features {
		_, present := grants[id]
		wantPresent := (id == features[0] || id == features[1] || id == features[2]) == inA
		if present != wantPresent {
			t.Fatalf("grant sets interleaved: %+v", grants)
		}
	}
}

func TestRemoveFeature(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	offers := fx.Feature(t, "offers")
	r := fx.Role(t, "editor", g(booking.ID, "rw"), g(offers.ID, "r"))
	uc := NewRemoveFeatureUseCase(fx.Roles, fx.Grants, fx.UoW, fx.Locker)

	result := uc.Execute(context.Background(), RemoveFeatureCommand{RoleID: r.ID, FeatureID: offers.ID}, fx.ExecCtx("admin"))
	if result.IsFailure() {
		t.Fatalf("remove failed: %v", result.Error())
	}
	if ids := result.Value().FeatureIDs; len(ids) != 1 || ids[0] != booking.ID {
		t.Errorf("expected featureIds [%s], got %v", booking.ID, ids)
	}
	if grants := storedGrants(t, fx, r.ID); len(grants) != 1 {
		t.Errorf("expected 1 remaining row, got %+v", grants)
	}

	again := uc.Execute(context.Background(), RemoveFeatureCommand{RoleID: r.ID, FeatureID: offers.ID}, fx.ExecCtx("admin"))
	expectKind(t, again.Error(), common.ErrorKindNotFound, common.ErrCodeGrantNotFound)

	noRole := uc.Execute(context.Background(), RemoveFeatureCommand{RoleID: "nope", FeatureID: booking.ID}, fx.ExecCtx("admin"))
	expectKind(t, noRole.Error(), common.ErrorKindNotFound, common.ErrCodeRoleNotFound)
}

func TestDeleteRole(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	held := fx.Role(t, "held", g(booking.ID, "r"))
	heldByInactive := fx.Role(t, "dormant", g(booking.ID, "r"))
	admin := fx.Role(t, "ACME_ADMIN", g(booking.ID, "rwa"))
	free := fx.Role(t, "free", g(booking.ID, "r"))

	fx.User(t, &principal.User{Email: "a@x.io", RoleIDs: []string{held.ID}, Active: true})
	fx.User(t, &principal.User{Email: "b@x.io", RoleIDs: []string{heldByInactive.ID}})
	fx.Enterprise(t, &enterprise.Enterprise{TenantName: "Acme", AdminRoleID: admin.ID, Active: true})

	uc := NewDeleteRoleUseCase(fx.Roles, fx.Users, fx.Enterprises, fx.UoW, fx.Locker)
	ctx := context.Background()

	expectKind(t, uc.Execute(ctx, DeleteRoleCommand{ID: held.ID}, fx.ExecCtx("admin")).Error(),
		common.ErrorKindConflict, common.ErrCodeRoleInUse)
	expectKind(t, uc.Execute(ctx, DeleteRoleCommand{ID: admin.ID}, fx.ExecCtx("admin")).Error(),
		common.ErrorKindConflict, common.ErrCodeRoleInUse)
	expectKind(t, uc.Execute(ctx, DeleteRoleCommand{ID: "nope"}, fx.ExecCtx("admin")).Error(),
		common.ErrorKindNotFound, common.ErrCodeRoleNotFound)

	for _, r := range []*role.Role{free, heldByInactive} {
		if result := uc.Execute(ctx, DeleteRoleCommand{ID: r.ID}, fx.ExecCtx("admin")); result.IsFailure() {
			t.Fatalf("delete %s failed: %v", r.Name, result.Error())
		}
		if stored, _ := fx.Roles.FindByID(ctx, r.ID); stored != nil {
			t.Errorf("role %s still stored", r.Name)
		}
		if grants := storedGrants(t, fx, r.ID); len(grants) != 0 {
			t.Errorf("grant rows of %s not purged: %+v", r.Name, grants)
		}
	}

	if grants := storedGrants(t, fx, held.ID); len(grants) != 1 {
		t.Error("grants of other roles must be untouched")
	}
}

func tenantRole(t *testing.T, fx *storetest.Fixture, name, tenantID string, grants ...permission.FeatureGrant) *role.Role {
	t.Helper()
	r := fx.Role(t, name, grants...)
	r.TenantScoped = true
	r.TenantID = tenantID
	if err := fx.Tables.Roles.Put(r); err != nil {
		t.Fatalf("store role: %v", err)
	}
	return r
}

func TestReplaceRoleGrants_TenantRoleRefusesPlatformFeatures(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	r := tenantRole(t, fx, "ACME_ADMIN", "acme", g(booking.ID, "rwa"))
	uc := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)
	ctx := context.Background()

	for _, name := range authorization.PlatformFeatures() {
		reserved := fx.Feature(t, name)
		t.Run(name, func(t *testing.T) {
			result := uc.Execute(ctx, ReplaceRoleGrantsCommand{
				RoleID: r.ID,
				Grants: []permission.FeatureGrant{g(booking.ID, "rwa"), g(reserved.ID, "r")},
			}, fx.ExecCtx("platform-admin"))
			expectKind(t, result.Error(), common.ErrorKindForbidden, common.ErrCodeReservedFeature)
		})
	}
	if grants := storedGrants(t, fx, r.ID); len(grants) != 1 {
		t.Errorf("tenant role grants must be untouched, got %+v", grants)
	}

	platformRole := fx.Role(t, "OPERATOR")
	ops, err := fx.Features.FindByCatalogKey(ctx, authorization.FeaturePlatformAdministration)
	if err != nil || ops == nil {
		t.Fatalf("find platform feature: %v", err)
	}
	result := uc.Execute(ctx, ReplaceRoleGrantsCommand{
		RoleID: platformRole.ID,
		Grants: []permission.FeatureGrant{g(ops.ID, "rwa")},
	}, fx.ExecCtx("platform-admin"))
	if result.IsFailure() {
		t.Fatalf("platform roles may carry platform features: %v", result.Error())
	}
}

func TestRoleOperations_TenantCallers(t *testing.T) {
	fx := storetest.New(t)
	booking := fx.Feature(t, "booking")
	own := tenantRole(t, fx, "ACME_USER", "acme", g(booking.ID, "rw"))
	foreign := tenantRole(t, fx, "VICTIM_USER", "victim", g(booking.ID, "rw"))
	platformRole := fx.Role(t, "OPERATOR", g(booking.ID, "rwa"))
	ctx := context.Background()
	caller := fx.TenantExecCtx("acme-admin", "acme")

	replace := NewReplaceRoleGrantsUseCase(fx.Roles, fx.Features, fx.UoW, fx.Locker)
	remove := NewRemoveFeatureUseCase(fx.Roles, fx.Grants, fx.UoW, fx.Locker)
	del := NewDeleteRoleUseCase(fx.Roles, fx.Users, fx.Enterprises, fx.UoW, fx.Locker)
	create := NewCreateRoleUseCase(fx.Roles, fx.Features, fx.UoW)

	for _, id := range []string{foreign.ID, platformRole.ID, "nope"} {
		t.Run("replace "+id, func(t *testing.T) {
			result := replace.Execute(ctx, ReplaceRoleGrantsCommand{RoleID: id, Grants: []permission.FeatureGrant{g(booking.ID, "r")}}, caller)
			expectKind(t, result.Error(), common.ErrorKindForbidden, common.ErrCodeAccessDenied)
		})
		t.Run("remove "+id, func(t *testing.T) {
			result := remove.Execute(ctx, RemoveFeatureCommand{RoleID: id, FeatureID: booking.ID}, caller)
			expectKind(t, result.Error(), common.ErrorKindForbidden, common.ErrCodeAccessDenied)
		})
		t.Run("delete "+id, func(t *testing.T) {
			result := del.Execute(ctx, DeleteRoleCommand{ID: id}, caller)
			expectKind(t, result.Error(), common.ErrorKindForbidden, common.ErrCodeAccessDenied)
		})
	}

	created := create.Execute(ctx, CreateRoleCommand{Name: "escalated", Grants: []permission.FeatureGrant{g(booking.ID, "rwa")}}, caller)
	expectKind(t, created.Error(), common.ErrorKindForbidden, common.ErrCodeAccessDenied)

	for _, r := range []*role.Role{foreign, platformRole} {
		if stored, _ := fx.Roles.FindByID(ctx, r.ID); stored == nil {
			t.Errorf("role %s must survive", r.Name)
		}
	}

	result := replace.Execute(ctx, ReplaceRoleGrantsCommand{RoleID: own.ID, Grants: []permission.FeatureGrant{g(booking.ID, "r")}}, caller)
	if result.IsFailure() {
		t.Fatalf("replacing grants of the caller's own tenant role failed: %v", result.Error())
	}
}
