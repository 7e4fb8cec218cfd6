package operations

import (
	"context"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
)

// CreateRoleCommand contains the data needed to create a role
type CreateRoleCommand struct {
	Name        string                    `json:"name" validate:"required"`
	Description string                    `json:"description,omitempty"`
	Grants      []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// CreateRoleUseCase handles creating a new role
type CreateRoleUseCase struct {
	roles      role.Repository
	features   feature.Repository
	unitOfWork common.UnitOfWork
}

// NewCreateRoleUseCase creates a new CreateRoleUseCase
func NewCreateRoleUseCase(roles role.Repository, features feature.Repository, uow common.UnitOfWork) *CreateRoleUseCase {
	return &CreateRoleUseCase{
		roles:      roles,
		features:   features,
		unitOfWork: uow,
	}
}

// Execute creates the role together with its grant rows. Grants with no
// flag set are dropped before anything is stored.
func (uc *CreateRoleUseCase) Execute(
	ctx context.Context,
	cmd CreateRoleCommand,
	execCtx *common.ExecutionContext,
) common.Result[*role.Role] {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return common.Failure[*role.Role](
			common.ValidationError(common.ErrCodeRequired, "Role name is required", nil),
		)
	}

	// Created roles are platform-wide; tenants get theirs through
	// provisioning.
	if !execCtx.OwnsTenant("") {
		return common.Failure[*role.Role](common.TenantAccessDenied())
	}

	grants := permission.Normalize(cmd.Grants)
	if err := validateFeatures(ctx, uc.features, grants); err != nil {
		return common.Failure[*role.Role](err)
	}

	exists, err := uc.roles.ExistsByName(ctx, name)
	if err != nil {
		return common.Failure[*role.Role](storeError("Failed to check for existing role", err))
	}
	if exists {
		return common.Failure[*role.Role](
			common.ConflictError(common.ErrCodeAlreadyExists,
				"A role with this name already exists",
				map[string]any{"name": name}),
		)
	}

	now := time.Now().UTC()
	r := &role.Role{
		ID:          tsid.Generate(),
		Name:        name,
		Description: cmd.Description,
		FeatureIDs:  permission.FeatureIDs(grants),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	changes := common.NewChangeSet().
		Upsert(r).
		Upsert(rowAggregates(permission.Rows(r.ID, grants, now))...)

	result := uc.unitOfWork.CommitChanges(ctx, changes, events.NewRoleCreated(execCtx, r, grants), cmd)
	return common.Map(result, func(common.DomainEvent) *role.Role { return r })
}
