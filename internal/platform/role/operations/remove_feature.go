package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
)

// RemoveFeatureCommand names the grant row to remove
type RemoveFeatureCommand struct {
	RoleID    string `json:"roleId" validate:"required"`
	FeatureID string `json:"featureId" validate:"required"`
}

// RemoveFeatureUseCase removes one feature's grant from a role
type RemoveFeatureUseCase struct {
	roles      role.Repository
	grants     permission.Repository
	unitOfWork common.UnitOfWork
	locker     lock.Locker
}

// NewRemoveFeatureUseCase creates a new RemoveFeatureUseCase
func NewRemoveFeatureUseCase(roles role.Repository, grants permission.Repository, uow common.UnitOfWork, locker lock.Locker) *RemoveFeatureUseCase {
	return &RemoveFeatureUseCase{
		roles:      roles,
		grants:     grants,
		unitOfWork: uow,
		locker:     locker,
	}
}

// Execute removes the grant row and recomputes FeatureIDs from the rows that
// remain.
func (uc *RemoveFeatureUseCase) Execute(
	ctx context.Context,
	cmd RemoveFeatureCommand,
	execCtx *common.ExecutionContext,
) common.Result[*role.Role] {
	if cmd.RoleID == "" || cmd.FeatureID == "" {
		return common.Failure[*role.Role](
			common.ValidationError(common.ErrCodeRequired, "Role ID and feature ID are required", nil),
		)
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

	rows, err := uc.grants.FindByRoleID(ctx, r.ID)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to load grants", err))
	}

	var target *permission.Grant
	remaining := make([]*permission.Grant, 0, len(rows))
	for _, row := range rows {
		if row.FeatureID == cmd.FeatureID {
			target = row
			continue
		}
		remaining = append(remaining, row)
	}
	if target == nil {
		return common.Failure[*role.Role](
			common.NotFoundError(common.ErrCodeGrantNotFound,
				"Role has no grant on this feature",
				map[string]any{"roleId": r.ID, "featureId": cmd.FeatureID}),
		)
	}

	r.FeatureIDs = permission.FeatureIDs(permission.ToFeatureGrants(remaining))
	r.UpdatedAt = time.Now().UTC()

	changes := common.NewChangeSet().Delete(target).Upsert(r)
	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewRoleFeatureRemoved(execCtx, r, cmd.FeatureID), cmd)
	return common.Map(result, func(common.DomainEvent) *role.Role { return r })
}
