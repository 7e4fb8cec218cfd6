package operations

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/notification"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
	"go.venuehub.tech/internal/platform/role"
)

// AddSubUserCommand contains the data needed to add a user to a tenant
type AddSubUserCommand struct {
	EnterpriseID string                    `json:"enterpriseId" validate:"required"`
	Email        string                    `json:"email" validate:"required,email"`
	Name         string                    `json:"name,omitempty"`
	Grants       []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// AddSubUserUseCase lets a tenant admin create a user with its own scoped
// role
type AddSubUserUseCase struct {
	enterprises enterprise.Repository
	roles       role.Repository
	grants      permission.Repository
	users       principal.Repository
	features    feature.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
	notifier    notification.Sender
	config      Config
}

// NewAddSubUserUseCase creates a new AddSubUserUseCase
func NewAddSubUserUseCase(
	enterprises enterprise.Repository,
	roles role.Repository,
	grants permission.Repository,
	users principal.Repository,
	features feature.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
	notifier notification.Sender,
	config Config,
) *AddSubUserUseCase {
	return &AddSubUserUseCase{
		enterprises: enterprises,
		roles:       roles,
		grants:      grants,
		users:       users,
		features:    features,
		unitOfWork:  uow,
		locker:      locker,
		notifier:    notifier,
		config:      config,
	}
}

// Execute creates the scoped role and the inactive user in one commit, then
// hands the credential setup message to the notifier. The caller is the
// principal of execCtx and must be the admin of the active enterprise.
func (uc *AddSubUserUseCase) Execute(
	ctx context.Context,
	cmd AddSubUserCommand,
	execCtx *common.ExecutionContext,
) common.Result[*principal.User] {
	if cmd.EnterpriseID == "" {
		return common.Failure[*principal.User](
			common.ValidationError(common.ErrCodeRequired, "Enterprise ID is required", nil),
		)
	}

	email, err := local.ValidateEmail(cmd.Email)
	if err != nil {
		return common.Failure[*principal.User](
			common.ValidationError(common.ErrCodeInvalidEmail, "A valid email is required", nil),
		)
	}

	grants := permission.Normalize(cmd.Grants)
	if failure := validateFeatures(ctx, uc.features, grants); failure != nil {
		return common.Failure[*principal.User](failure)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("enterprise", cmd.EnterpriseID))
	if err != nil {
		return common.Failure[*principal.User](common.BusyError("enterprise"))
	}
	defer release()

	ent, failure := uc.authorizeCaller(ctx, cmd.EnterpriseID, execCtx.PrincipalID)
	if failure != nil {
		return common.Failure[*principal.User](failure)
	}

	adminRole, err := uc.roles.FindByID(ctx, ent.AdminRoleID)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to find admin role", err))
	}
	if adminRole == nil {
		return common.Failure[*principal.User](
			common.InternalError(common.ErrCodeInternal, "Enterprise has no admin role", map[string]any{"enterpriseId": ent.ID}),
		)
	}

	if uc.config.EnforceAttenuation {
		if failure := uc.checkAttenuation(ctx, adminRole.ID, grants); failure != nil {
			return common.Failure[*principal.User](failure)
		}
	}

	exists, err := uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to check email", err))
	}
	if exists {
		return common.Failure[*principal.User](duplicateEmail(email))
	}

	now := time.Now().UTC()
	userID := tsid.Generate()
	scoped := &role.Role{
		ID:           tsid.Generate(),
		Name:         enterprise.ScopedRoleName(adminRole.Name, userID),
		Description:  "Scoped role of " + email,
		FeatureIDs:   permission.FeatureIDs(grants),
		TenantScoped: true,
		TenantID:     ent.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u := &principal.User{
		ID:        userID,
		Email:     email,
		Name:      strings.TrimSpace(cmd.Name),
		RoleIDs:   []string{scoped.ID},
		TenantID:  ent.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, err := u.IssueResetToken(now, uc.config.tokenTTL())
	if err != nil {
		return common.Failure[*principal.User](storeError("Failed to generate setup token", err))
	}

	changes := common.NewChangeSet().
		Upsert(scoped).
		Upsert(rowAggregates(permission.Rows(scoped.ID, grants, now))...).
		Upsert(u)

	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewSubUserAdded(execCtx, u, scoped.ID, scoped.Name), cmd)
	if result.IsFailure() {
		return common.Failure[*principal.User](result.Error())
	}

	uc.notifier.Enqueue(notification.CredentialSetup(u.Email, token, ent.TenantName, *u.ResetTokenExpiresAt))
	slog.InfoContext(ctx, "Sub-user added",
		"enterpriseId", ent.ID,
		"userId", u.ID,
		"role", scoped.Name)

	return common.Map(result, func(common.DomainEvent) *principal.User { return u })
}

// authorizeCaller returns the enterprise when callerID is its admin and both
// are active. Every other case is the same Forbidden so that the response
// does not reveal whether the enterprise exists.
func (uc *AddSubUserUseCase) authorizeCaller(ctx context.Context, enterpriseID, callerID string) (*enterprise.Enterprise, *common.UseCaseError) {
	forbidden := common.ForbiddenError(common.ErrCodeNotTenantAdmin, "Only the admin of an active enterprise can add users")

	ent, err := uc.enterprises.FindByID(ctx, enterpriseID)
	if err != nil {
		return nil, storeError("Failed to find enterprise", err)
	}
	if ent == nil || !ent.Active || ent.AdminUserID != callerID {
		return nil, forbidden
	}

	caller, err := uc.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, storeError("Failed to find caller", err)
	}
	if caller == nil || !caller.IsTenantAdmin || caller.TenantID != ent.ID || !caller.CanAuthenticate() {
		return nil, forbidden
	}
	return ent, nil
}

// checkAttenuation fails when a requested flag is not held by the admin role
// on the same feature.
func (uc *AddSubUserUseCase) checkAttenuation(ctx context.Context, adminRoleID string, grants []permission.FeatureGrant) *common.UseCaseError {
	rows, err := uc.grants.FindByRoleID(ctx, adminRoleID)
	if err != nil {
		return storeError("Failed to load admin grants", err)
	}
	held := make(map[string]permission.Flags, len(rows))
	for _, row := range rows {
		held[row.FeatureID] = row.Flags
	}
	for _, g := range grants {
		if !held[g.FeatureID].Covers(g.Flags()) {
			return common.ForbiddenError(common.ErrCodeExceedsAdmin, "Requested grants exceed the admin's own")
		}
	}
	return nil
}
