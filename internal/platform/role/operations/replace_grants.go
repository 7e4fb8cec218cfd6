package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
)

// ReplaceRoleGrantsCommand carries the complete new grant set of a role
type ReplaceRoleGrantsCommand struct {
	RoleID string                    `json:"roleId" validate:"required"`
	Grants []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// ReplaceRoleGrantsUseCase swaps every grant row of a role for a new set
type ReplaceRoleGrantsUseCase struct {
	roles      role.Repository
	features   feature.Repository
	unitOfWork common.UnitOfWork
	locker     lock.Locker
}

// NewReplaceRoleGrantsUseCase creates a new ReplaceRoleGrantsUseCase
func NewReplaceRoleGrantsUseCase(roles role.Repository, features feature.Repository, uow common.UnitOfWork, locker lock.Locker) *ReplaceRoleGrantsUseCase {
	return &ReplaceRoleGrantsUseCase{
		roles:      roles,
		features:   features,
		unitOfWork: uow,
		locker:     locker,
	}
}

// Execute deletes the old rows and writes the new ones in the same commit as
// the recomputed FeatureIDs. Readers see either the old set or the new one.
func (uc *ReplaceRoleGrantsUseCase) Execute(
	ctx context.Context,
	cmd ReplaceRoleGrantsCommand,
	execCtx *common.ExecutionContext,
) common.Result[*role.Role] {
	if cmd.RoleID == "" {
		return common.Failure[*role.Role](
			common.ValidationError(common.ErrCodeRequired, "Role ID is required", nil),
		)
	}

	grants := permission.Normalize(cmd.Grants)
	if err := validateFeatures(ctx, uc.features, grants); err != nil {
		return common.Failure[*role.Role](err)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("role", cmd.RoleID))
	if err != nil {
		return common.Failure[*role.Role](common.BusyError("role"))
	}
	defer release()

	r, err := uc.roles.FindByID(ctx, cmd.RoleID)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to find role", err))
	}
	if r == nil || !execCtx.OwnsTenant(r.TenantID) {
		return common.Failure[*role.Role](roleUnreachable(execCtx, cmd.RoleID))
	}
	if r.TenantScoped {
		if failure := refusePlatformFeatures(ctx, uc.features, grants); failure != nil {
			return common.Failure[*role.Role](failure)
		}
	}

	now := time.Now().UTC()
	r.FeatureIDs = permission.FeatureIDs(grants)
	r.UpdatedAt = now

	changes := ReplaceGrants(r, grants, now)
	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewRoleGrantsReplaced(execCtx, r, grants), cmd)
	return common.Map(result, func(common.DomainEvent) *role.Role { return r })
}

// ReplaceGrants builds the change set that replaces every grant row of r
// with grants. r must already carry the matching FeatureIDs.
func ReplaceGrants(r *role.Role, grants []permission.FeatureGrant, now time.Time) *common.ChangeSet {
	return common.NewChangeSet().
		DeleteMany(permission.CollectionName, map[string]any{"roleId": r.ID}).
		Upsert(r).
		Upsert(rowAggregates(permission.Rows(r.ID, grants, now))...)
}

func roleNotFound(id string) *common.UseCaseError {
	return common.NotFoundError(common.ErrCodeRoleNotFound, "Role not found", map[string]any{"id": id})
}
