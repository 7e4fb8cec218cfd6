package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/principal"
)

// SetUserBlockedCommand blocks or unblocks a user
type SetUserBlockedCommand struct {
	UserID  string `json:"userId" validate:"required"`
	Blocked bool   `json:"blocked"`
}

// SetUserBlockedUseCase flips a user's blocked flag. Blocked users keep their
// roles but cannot obtain tokens.
type SetUserBlockedUseCase struct {
	users      principal.Repository
	unitOfWork common.UnitOfWork
	locker     lock.Locker
}

// NewSetUserBlockedUseCase creates a new SetUserBlockedUseCase
func NewSetUserBlockedUseCase(users principal.Repository, uow common.UnitOfWork, locker lock.Locker) *SetUserBlockedUseCase {
	return &SetUserBlockedUseCase{
		users:      users,
		unitOfWork: uow,
		locker:     locker,
	}
}

// Execute blocks or unblocks the user. Tenant callers only reach users of
// their own tenant.
func (uc *SetUserBlockedUseCase) Execute(
	ctx context.Context,
	cmd SetUserBlockedCommand,
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

	// The commit writes the whole document, so it must carry the state seen
	// under the lock.
	if u, err = uc.users.FindByID(ctx, cmd.UserID); err != nil {
		return common.Failure[*principal.User](storeError("Failed to find user", err))
	} else if u == nil {
		return common.Failure[*principal.User](userNotFound(cmd.UserID))
	}

	u.Blocked = cmd.Blocked
	u.UpdatedAt = time.Now().UTC()

	result := uc.unitOfWork.Commit(ctx, u, events.NewUserBlockChanged(execCtx, u), cmd)
	return common.Map(result, func(common.DomainEvent) *principal.User { return u })
}
