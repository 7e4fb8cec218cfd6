package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
	roleops "go.venuehub.tech/internal/platform/role/operations"
)

// UpdateEnterpriseFeaturesCommand adds grants to a tenant's admin role
type UpdateEnterpriseFeaturesCommand struct {
	EnterpriseID string                    `json:"enterpriseId" validate:"required"`
	Grants       []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// UpdateEnterpriseFeaturesUseCase merges grants into the admin role
type UpdateEnterpriseFeaturesUseCase struct {
	enterprises enterprise.Repository
	roles       role.Repository
	grants      permission.Repository
	features    feature.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
}

// NewUpdateEnterpriseFeaturesUseCase creates a new UpdateEnterpriseFeaturesUseCase
func NewUpdateEnterpriseFeaturesUseCase(
	enterprises enterprise.Repository,
	roles role.Repository,
	grants permission.Repository,
	features feature.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
) *UpdateEnterpriseFeaturesUseCase {
	return &UpdateEnterpriseFeaturesUseCase{
		enterprises: enterprises,
		roles:       roles,
		grants:      grants,
		features:    features,
		unitOfWork:  uow,
		locker:      locker,
	}
}

// Execute ORs the requested flags into the admin role's current grants and
// writes the result as a full replacement. The enterprise lock is taken
// before the role lock so the update serializes with the cascade and with
// sub-user provisioning. The update only ever adds flags.
func (uc *UpdateEnterpriseFeaturesUseCase) Execute(
	ctx context.Context,
	cmd UpdateEnterpriseFeaturesCommand,
	execCtx *common.ExecutionContext,
) common.Result[*role.Role] {
	if cmd.EnterpriseID == "" {
		return common.Failure[*role.Role](
			common.ValidationError(common.ErrCodeRequired, "Enterprise ID is required", nil),
		)
	}
	if !execCtx.OwnsTenant(cmd.EnterpriseID) {
		return common.Failure[*role.Role](common.TenantAccessDenied())
	}

	added := permission.Normalize(cmd.Grants)
	if failure := validateFeatures(ctx, uc.features, added); failure != nil {
		return common.Failure[*role.Role](failure)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("enterprise", cmd.EnterpriseID))
	if err != nil {
		return common.Failure[*role.Role](common.BusyError("enterprise"))
	}
	defer release()

	ent, err := uc.enterprises.FindByID(ctx, cmd.EnterpriseID)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to find enterprise", err))
	}
	if ent == nil {
		return common.Failure[*role.Role](enterpriseNotFound(cmd.EnterpriseID))
	}

	releaseRole, err := uc.locker.Acquire(ctx, lock.Key("role", ent.AdminRoleID))
	if err != nil {
		return common.Failure[*role.Role](common.BusyError("role"))
	}
	defer releaseRole()

	adminRole, err := uc.roles.FindByID(ctx, ent.AdminRoleID)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to find admin role", err))
	}
	if adminRole == nil {
		return common.Failure[*role.Role](
			common.InternalError(common.ErrCodeInternal, "Enterprise has no admin role", map[string]any{"enterpriseId": ent.ID}),
		)
	}

	rows, err := uc.grants.FindByRoleID(ctx, adminRole.ID)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to load admin grants", err))
	}
	merged := permission.Normalize(append(permission.ToFeatureGrants(rows), added...))

	now := time.Now().UTC()
	adminRole.FeatureIDs = permission.FeatureIDs(merged)
	adminRole.UpdatedAt = now

	changes := roleops.ReplaceGrants(adminRole, merged, now)
	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewEnterpriseFeaturesUpdated(execCtx, ent, merged), cmd)
	return common.Map(result, func(common.DomainEvent) *role.Role { return adminRole })
}
