package operations

import (
	"context"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
)

// DeleteRoleCommand contains the data needed to delete a role
type DeleteRoleCommand struct {
	ID string `json:"id" validate:"required"`
}

// DeleteRoleUseCase handles deleting a role
type DeleteRoleUseCase struct {
	roles       role.Repository
	users       principal.Repository
	enterprises enterprise.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
}

// NewDeleteRoleUseCase creates a new DeleteRoleUseCase
func NewDeleteRoleUseCase(
	roles role.Repository,
	users principal.Repository,
	enterprises enterprise.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
) *DeleteRoleUseCase {
	return &DeleteRoleUseCase{
		roles:       roles,
		users:       users,
		enterprises: enterprises,
		unitOfWork:  uow,
		locker:      locker,
	}
}

// Execute deletes the role and its grant rows. A role held by an active
// user, or serving as an enterprise's admin role, is kept.
func (uc *DeleteRoleUseCase) Execute(
	ctx context.Context,
	cmd DeleteRoleCommand,
	execCtx *common.ExecutionContext,
) common.Result[common.DomainEvent] {
	if cmd.ID == "" {
		return common.Failure[common.DomainEvent](
			common.ValidationError(common.ErrCodeRequired, "Role ID is required", nil),
		)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("role", cmd.ID))
	if err != nil {
		return common.Failure[common.DomainEvent](common.BusyError("role"))
	}
	defer release()

	r, err := uc.roles.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](storeError("Failed to find role", err))
	}
	if r == nil || !execCtx.OwnsTenant(r.TenantID) {
		return common.Failure[common.DomainEvent](roleUnreachable(execCtx, cmd.ID))
	}

	holders, err := uc.users.CountActiveByRoleID(ctx, r.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](storeError("Failed to count role holders", err))
	}
	if holders > 0 {
		return common.Failure[common.DomainEvent](
			common.ConflictError(common.ErrCodeRoleInUse,
				"Role is held by active users",
				map[string]any{"id": r.ID, "activeUsers": holders}),
		)
	}

	isAdminRole, err := uc.enterprises.ExistsByAdminRoleID(ctx, r.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](storeError("Failed to check enterprises", err))
	}
	if isAdminRole {
		return common.Failure[common.DomainEvent](
			common.ConflictError(common.ErrCodeRoleInUse,
				"Role is the admin role of an enterprise",
				map[string]any{"id": r.ID}),
		)
	}

	changes := common.NewChangeSet().
		DeleteMany(permission.CollectionName, map[string]any{"roleId": r.ID}).
		Delete(r)

	return uc.unitOfWork.CommitChanges(ctx, changes, events.NewRoleDeleted(execCtx, r), cmd)
}
