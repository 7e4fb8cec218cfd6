package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/principal"
)

// SetUserActiveCommand activates or deactivates a user
type SetUserActiveCommand struct {
	UserID string `json:"userId" validate:"required"`
	Active bool   `json:"active"`
}

// SetUserActiveUseCase flips a user's active flag. Deactivating the admin of
// an enterprise deactivates the enterprise and every user scoped to it.
type SetUserActiveUseCase struct {
	users       principal.Repository
	enterprises enterprise.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
}

// NewSetUserActiveUseCase creates a new SetUserActiveUseCase
func NewSetUserActiveUseCase(
	users principal.Repository,
	enterprises enterprise.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
) *SetUserActiveUseCase {
	return &SetUserActiveUseCase{
		users:       users,
		enterprises: enterprises,
		unitOfWork:  uow,
		locker:      locker,
	}
}

// Execute applies the change. Users of an inactive enterprise, its admin
// included, cannot be reactivated on their own; the enterprise has to be
// reactivated instead. Tenant callers only reach users of their own tenant.
func (uc *SetUserActiveUseCase) Execute(
	ctx context.Context,
	cmd SetUserActiveCommand,
	execCtx *common.ExecutionContext,
) common.Result[*principal.User] {
	if cmd.UserID == "" {
		return common.Failure[*principal.User](
			common.ValidationError(common.ErrCodeRequired, "User ID is required", nil),
		)
	}

	u, err := uc.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to find user", err))
	}
	if u == nil || !execCtx.OwnsTenant(u.TenantID) {
		return common.Failure[*principal.User](userUnreachable(execCtx, cmd.UserID))
	}

	release, err := uc.locker.Acquire(ctx, userLockKey(u))
	if err != nil {
		return common.Failure[*principal.User](common.BusyError("user"))
	}
	defer release()

	if u, err = uc.users.FindByID(ctx, cmd.UserID); err != nil {
		return common.Failure[*principal.User](storeError("Failed to find user", err))
	} else if u == nil {
		return common.Failure[*principal.User](userNotFound(cmd.UserID))
	}

	var ent *enterprise.Enterprise
	if u.TenantID != "" {
		if ent, err = uc.enterprises.FindByID(ctx, u.TenantID); err != nil {
			return common.Failure[*principal.User](storeError("Failed to find enterprise", err))
		}
	}

	now := time.Now().UTC()
	u.Active = cmd.Active
	u.UpdatedAt = now
	changes := common.NewChangeSet().Upsert(u)
	cascaded := false

	switch {
	case cmd.Active && ent != nil && !ent.Active:
		return common.Failure[*principal.User](
			common.ConflictError(common.ErrCodeEnterpriseInactive,
				"The user's enterprise is inactive; reactivate the enterprise instead",
				map[string]any{"enterpriseId": ent.ID}),
		)

	case !cmd.Active && ent != nil && u.IsTenantAdmin && ent.AdminUserID == u.ID:
		ent.Active = false
		ent.UpdatedAt = now
		changes = enterprise.DeactivationChanges(ent, now).Upsert(u)
		cascaded = true
	}

	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewUserActiveChanged(execCtx, u, cascaded), cmd)
	return common.Map(result, func(common.DomainEvent) *principal.User { return u })
}
