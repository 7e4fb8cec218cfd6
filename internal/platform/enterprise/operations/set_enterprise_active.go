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

// SetEnterpriseActiveCommand activates or deactivates a tenant
type SetEnterpriseActiveCommand struct {
	EnterpriseID string `json:"enterpriseId" validate:"required"`
	Active       bool   `json:"active"`
}

// SetEnterpriseActiveUseCase runs the activation cascade
type SetEnterpriseActiveUseCase struct {
	enterprises enterprise.Repository
	users       principal.Repository
	unitOfWork  common.UnitOfWork
	locker      lock.Locker
}

// NewSetEnterpriseActiveUseCase creates a new SetEnterpriseActiveUseCase
func NewSetEnterpriseActiveUseCase(
	enterprises enterprise.Repository,
	users principal.Repository,
	uow common.UnitOfWork,
	locker lock.Locker,
) *SetEnterpriseActiveUseCase {
	return &SetEnterpriseActiveUseCase{
		enterprises: enterprises,
		users:       users,
		unitOfWork:  uow,
		locker:      locker,
	}
}

// Execute deactivates the enterprise and every user scoped to it in one
// commit, or reactivates the enterprise and its admin user only. Sub-users
// keep whatever state they have and are reactivated one by one. Setting the
// current state again is a no-op. Tenant callers only reach their own
// enterprise.
func (uc *SetEnterpriseActiveUseCase) Execute(
	ctx context.Context,
	cmd SetEnterpriseActiveCommand,
	execCtx *common.ExecutionContext,
) common.Result[*enterprise.Enterprise] {
	if cmd.EnterpriseID == "" {
		return common.Failure[*enterprise.Enterprise](
			common.ValidationError(common.ErrCodeRequired, "Enterprise ID is required", nil),
		)
	}

	if !execCtx.OwnsTenant(cmd.EnterpriseID) {
		return common.Failure[*enterprise.Enterprise](common.TenantAccessDenied())
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("enterprise", cmd.EnterpriseID))
	if err != nil {
		return common.Failure[*enterprise.Enterprise](common.BusyError("enterprise"))
	}
	defer release()

	ent, err := uc.enterprises.FindByID(ctx, cmd.EnterpriseID)
	if err != nil {
		return common.Failure[*enterprise.Enterprise](storeError("Failed to find enterprise", err))
	}
	if ent == nil {
		return common.Failure[*enterprise.Enterprise](enterpriseNotFound(cmd.EnterpriseID))
	}
	if ent.Active == cmd.Active {
		return common.Resolved(ent)
	}

	now := time.Now().UTC()
	ent.Active = cmd.Active
	ent.UpdatedAt = now

	var changes *common.ChangeSet
	if !cmd.Active {
		changes = enterprise.DeactivationChanges(ent, now)
	} else {
		changes = common.NewChangeSet().Upsert(ent)
		admin, err := uc.users.FindByID(ctx, ent.AdminUserID)
		if err != nil {
			return common.Failure[*enterprise.Enterprise](storeError("Failed to find admin user", err))
		}
		if admin != nil {
			admin.Active = true
			admin.UpdatedAt = now
			changes.Upsert(admin)
		}
	}

	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewEnterpriseActiveChanged(execCtx, ent, events.TriggerEnterprise), cmd)
	return common.Map(result, func(common.DomainEvent) *enterprise.Enterprise { return ent })
}
