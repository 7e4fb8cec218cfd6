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

// CreateEnterpriseCommand contains the data needed to provision a tenant
type CreateEnterpriseCommand struct {
	TenantName string                    `json:"tenantName" validate:"required"`
	AdminEmail string                    `json:"adminEmail" validate:"required,email"`
	AdminName  string                    `json:"adminName,omitempty"`
	Grants     []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// Provisioned is the outcome of creating an enterprise.
type Provisioned struct {
	Enterprise *enterprise.Enterprise `json:"enterprise"`
	AdminRole  *role.Role             `json:"adminRole"`
	AdminUser  *principal.User        `json:"adminUser"`
}

// CreateEnterpriseUseCase provisions an enterprise with its admin role and
// admin user
type CreateEnterpriseUseCase struct {
	enterprises enterprise.Repository
	roles       role.Repository
	users       principal.Repository
	features    feature.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
	notifier    notification.Sender
	config      Config
}

// NewCreateEnterpriseUseCase creates a new CreateEnterpriseUseCase
func NewCreateEnterpriseUseCase(
	enterprises enterprise.Repository,
	roles role.Repository,
	users principal.Repository,
	features feature.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
	notifier notification.Sender,
	config Config,
) *CreateEnterpriseUseCase {
	return &CreateEnterpriseUseCase{
		enterprises: enterprises,
		roles:       roles,
		users:       users,
		features:    features,
		unitOfWork:  uow,
		locker:      locker,
		notifier:    notifier,
		config:      config,
	}
}

// Execute writes the admin role, its grant rows, the enterprise and the
// inactive admin user in one commit. The admin is activated by completing
// credential setup with the token sent to AdminEmail.
func (uc *CreateEnterpriseUseCase) Execute(
	ctx context.Context,
	cmd CreateEnterpriseCommand,
	execCtx *common.ExecutionContext,
) common.Result[*Provisioned] {
	tenantName := strings.TrimSpace(cmd.TenantName)
	tenantKey := enterprise.TenantKey(tenantName)
	if tenantKey == "" {
		return common.Failure[*Provisioned](
			common.ValidationError(common.ErrCodeRequired, "Tenant name must contain a letter or digit", nil),
		)
	}

	email, err := local.ValidateEmail(cmd.AdminEmail)
	if err != nil {
		return common.Failure[*Provisioned](
			common.ValidationError(common.ErrCodeInvalidEmail, "A valid admin email is required", nil),
		)
	}

	grants := permission.Normalize(cmd.Grants)
	if failure := validateFeatures(ctx, uc.features, grants); failure != nil {
		return common.Failure[*Provisioned](failure)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("enterprise-name", tenantKey))
	if err != nil {
		return common.Failure[*Provisioned](common.BusyError("enterprise"))
	}
	defer release()

	adminRoleName := enterprise.AdminRoleName(tenantName)
	if failure := uc.checkAvailable(ctx, tenantName, tenantKey, adminRoleName, email); failure != nil {
		return common.Failure[*Provisioned](failure)
	}

	now := time.Now().UTC()
	ent := &enterprise.Enterprise{
		ID:         tsid.Generate(),
		TenantName: tenantName,
		TenantKey:  tenantKey,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	adminRole := &role.Role{
		ID:           tsid.Generate(),
		Name:         adminRoleName,
		Description:  "Administrator of " + tenantName,
		FeatureIDs:   permission.FeatureIDs(grants),
		TenantScoped: true,
		TenantID:     ent.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	admin := &principal.User{
		ID:            tsid.Generate(),
		Email:         email,
		Name:          strings.TrimSpace(cmd.AdminName),
		RoleIDs:       []string{adminRole.ID},
		TenantID:      ent.ID,
		IsTenantAdmin: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ent.AdminRoleID = adminRole.ID
	ent.AdminUserID = admin.ID

	token, err := admin.IssueResetToken(now, uc.config.tokenTTL())
	if err != nil {
		return common.Failure[*Provisioned](storeError("Failed to generate setup token", err))
	}

	changes := common.NewChangeSet().
		Upsert(adminRole).
		Upsert(rowAggregates(permission.Rows(adminRole.ID, grants, now))...).
		Upsert(ent, admin)

	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewEnterpriseCreated(execCtx, ent, adminRoleName, grants), cmd)
	if result.IsFailure() {
		return common.Failure[*Provisioned](result.Error())
	}

	uc.notifier.Enqueue(notification.CredentialSetup(admin.Email, token, ent.TenantName, *admin.ResetTokenExpiresAt))
	slog.InfoContext(ctx, "Enterprise provisioned",
		"enterpriseId", ent.ID,
		"adminRole", adminRoleName,
		"adminUserId", admin.ID)

	return common.Map(result, func(common.DomainEvent) *Provisioned {
		return &Provisioned{Enterprise: ent, AdminRole: adminRole, AdminUser: admin}
	})
}

// checkAvailable fails with Conflict when the tenant name, its admin role
// name or the admin email is taken.
func (uc *CreateEnterpriseUseCase) checkAvailable(ctx context.Context, tenantName, tenantKey, adminRoleName, email string) *common.UseCaseError {
	existing, err := uc.enterprises.FindByTenantKey(ctx, tenantKey)
	if err != nil {
		return storeError("Failed to check tenant name", err)
	}
	if existing != nil {
		return common.ConflictError(common.ErrCodeAlreadyExists,
			"An enterprise with this name already exists",
			map[string]any{"tenantName": tenantName})
	}

	taken, err := uc.roles.ExistsByName(ctx, adminRoleName)
	if err != nil {
		return storeError("Failed to check admin role name", err)
	}
	if taken {
		return common.ConflictError(common.ErrCodeAlreadyExists,
			"The admin role name of this enterprise is already in use",
			map[string]any{"roleName": adminRoleName})
	}

	exists, err := uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return storeError("Failed to check email", err)
	}
	if exists {
		return duplicateEmail(email)
	}
	return nil
}
