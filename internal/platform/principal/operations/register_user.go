package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
)

// RegisterUserCommand contains the data needed for a marketplace signup
type RegisterUserCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
}

// ToAuditJSON keeps the password out of the audit log.
func (c RegisterUserCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{"email": c.Email, "name": c.Name})
}

// RegisterUserUseCase creates an active user holding the default member role
type RegisterUserUseCase struct {
	users      principal.Repository
	roles      role.Repository
	unitOfWork common.UnitOfWork
	locker     lock.Locker
	passwords  *local.PasswordService
}

// NewRegisterUserUseCase creates a new RegisterUserUseCase
func NewRegisterUserUseCase(
	users principal.Repository,
	roles role.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
	passwords *local.PasswordService,
) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		users:      users,
		roles:      roles,
		unitOfWork: uow,
		locker:     locker,
		passwords:  passwords,
	}
}

// Execute registers the user. The member role is created on first use with
// no grants.
func (uc *RegisterUserUseCase) Execute(
	ctx context.Context,
	cmd RegisterUserCommand,
	execCtx *common.ExecutionContext,
) common.Result[*principal.User] {
	email, err := local.ValidateEmail(cmd.Email)
	if err != nil {
		return common.Failure[*principal.User](
			common.ValidationError(common.ErrCodeInvalidEmail, "A valid email is required", nil),
		)
	}
	if err := uc.passwords.ValidatePasswordStrength(cmd.Password); err != nil {
		return common.Failure[*principal.User](passwordTooWeak())
	}

	exists, err := uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to check email", err))
	}
	if exists {
		return common.Failure[*principal.User](duplicateEmail(email))
	}

	member, failure := uc.memberRole(ctx, execCtx)
	if failure != nil {
		return common.Failure[*principal.User](failure)
	}

	hash, err := uc.passwords.HashPassword(cmd.Password)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to hash password", err))
	}

	now := time.Now().UTC()
	u := &principal.User{
		ID:           tsid.Generate(),
		Email:        email,
		Name:         strings.TrimSpace(cmd.Name),
		RoleIDs:      []string{member.ID},
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result := uc.unitOfWork.Commit(ctx, u, events.NewUserRegistered(execCtx, u), cmd)
	if result.IsFailure() && result.Error().Code == common.ErrCodeAlreadyExists {
		return common.Failure[*principal.User](duplicateEmail(email))
	}
	return common.Map(result, func(common.DomainEvent) *principal.User { return u })
}

var errMemberRoleVanished = errors.New("member role not found after conflict")

// memberRole returns the member role, creating it under a lock if needed.
func (uc *RegisterUserUseCase) memberRole(ctx context.Context, execCtx *common.ExecutionContext) (*role.Role, *common.UseCaseError) {
	if r, err := uc.roles.FindByName(ctx, role.MemberRoleName); err != nil {
		return nil, storeError("Failed to find member role", err)
	} else if r != nil {
		return r, nil
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("role-name", role.MemberRoleName))
	if err != nil {
		return nil, common.BusyError("role")
	}
	defer release()

	if r, err := uc.roles.FindByName(ctx, role.MemberRoleName); err != nil {
		return nil, storeError("Failed to find member role", err)
	} else if r != nil {
		return r, nil
	}

	now := time.Now().UTC()
	r := &role.Role{
		ID:          tsid.Generate(),
		Name:        role.MemberRoleName,
		Description: "Default role of self-registered users",
		FeatureIDs:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	result := uc.unitOfWork.Commit(ctx, r, events.NewRoleCreated(execCtx, r, nil), nil)
	if result.IsSuccess() {
		return r, nil
	}
	if result.Error().Code == common.ErrCodeAlreadyExists {
		if existing, err := uc.roles.FindByName(ctx, role.MemberRoleName); err == nil && existing != nil {
			return existing, nil
		}
		return nil, storeError("Failed to create member role", errMemberRoleVanished)
	}
	return nil, result.Error()
}

func duplicateEmail(email string) *common.UseCaseError {
	return common.ConflictError(common.ErrCodeDuplicateEmail,
		"A user with this email already exists",
		map[string]any{"email": email})
}

func passwordTooWeak() *common.UseCaseError {
	return common.ValidationError(common.ErrCodeInvalidPassword,
		"Password must be at least 8 characters and mix three of: upper case, lower case, digits, symbols",
		nil)
}
