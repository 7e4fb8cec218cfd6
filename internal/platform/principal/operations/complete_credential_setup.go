package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/auth/jwt"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/principal"
)

// CompleteCredentialSetupCommand redeems a one-time setup token
type CompleteCredentialSetupCommand struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ToAuditJSON records nothing about the secret inputs.
func (c CompleteCredentialSetupCommand) ToAuditJSON() string {
	return "{}"
}

// CompleteCredentialSetupUseCase sets the password of a provisioned user and
// activates the account
type CompleteCredentialSetupUseCase struct {
	users       principal.Repository
	enterprises enterprise.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
	passwords   *local.PasswordService
	now         func() time.Time
}

// NewCompleteCredentialSetupUseCase creates a new CompleteCredentialSetupUseCase
func NewCompleteCredentialSetupUseCase(
	users principal.Repository,
	enterprises enterprise.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
	passwords *local.PasswordService,
) *CompleteCredentialSetupUseCase {
	return &CompleteCredentialSetupUseCase{
		users:       users,
		enterprises: enterprises,
		unitOfWork:  uow,
		locker:      locker,
		passwords:   passwords,
		now:         time.Now,
	}
}

// Execute consumes the token. Unknown, used and expired tokens all fail with
// the same Unauthorized error. Users of an inactive enterprise are refused.
// The password is hashed before the lock is taken; the token and the
// enterprise are checked again under it.
func (uc *CompleteCredentialSetupUseCase) Execute(
	ctx context.Context,
	cmd CompleteCredentialSetupCommand,
	execCtx *common.ExecutionContext,
) common.Result[*principal.User] {
	if cmd.Token == "" {
		return common.Failure[*principal.User](invalidSetupToken())
	}
	hash := jwt.HashToken(cmd.Token)

	found, err := uc.users.FindByResetTokenHash(ctx, hash)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to find user", err))
	}
	if found == nil {
		return common.Failure[*principal.User](invalidSetupToken())
	}

	if err := uc.passwords.ValidatePasswordStrength(cmd.Password); err != nil {
		return common.Failure[*principal.User](passwordTooWeak())
	}
	hashed, err := uc.passwords.HashPassword(cmd.Password)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to hash password", err))
	}

	release, err := uc.locker.Acquire(ctx, userLockKey(found))
	if err != nil {
		return common.Failure[*principal.User](common.BusyError("user"))
	}
	defer release()

	// Re-read under the lock so that a token is redeemed at most once.
	u, err := uc.users.FindByID(ctx, found.ID)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to find user", err))
	}
	now := uc.now().UTC()
	if u == nil || !u.ResetTokenValid(hash, now) {
		return common.Failure[*principal.User](invalidSetupToken())
	}

	if u.TenantID != "" {
		ent, err := uc.enterprises.FindByID(ctx, u.TenantID)
		if err != nil {
			return common.Failure[*principal.User](storeError("Failed to find enterprise", err))
		}
		if ent == nil || !ent.Active {
			return common.Failure[*principal.User](
				common.ForbiddenError(common.ErrCodeEnterpriseInactive, "Enterprise is not active"),
			)
		}
	}

	u.PasswordHash = hashed
	u.Active = true
	u.ClearResetToken()
	u.UpdatedAt = now

	result := uc.unitOfWork.Commit(ctx, u, events.NewCredentialsSet(execCtx, u), cmd)
	return common.Map(result, func(common.DomainEvent) *principal.User { return u })
}

func invalidSetupToken() *common.UseCaseError {
	return common.UnauthorizedError(common.ErrCodeInvalidToken, "Invalid or expired setup token")
}
