package events

import (
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
)

// roleData is the payload shared by role events
type roleData struct {
	RoleID       string                    `json:"roleId"`
	Name         string                    `json:"name"`
	TenantScoped bool                      `json:"tenantScoped"`
	FeatureIDs   []string                  `json:"featureIds"`
	Grants       []permission.FeatureGrant `json:"grants,omitempty"`
}

func newRoleData(r *role.Role, grants []permission.FeatureGrant) roleData {
	return roleData{
		RoleID:       r.ID,
		Name:         r.Name,
		TenantScoped: r.TenantScoped,
		FeatureIDs:   r.FeatureIDs,
		Grants:       grants,
	}
}

// RoleCreated is emitted when a new role is created
type RoleCreated struct {
	common.BaseDomainEvent
	roleData
}

func (e *RoleCreated) ToDataJSON() string {
	return common.MarshalDataJSON(e.roleData)
}

func NewRoleCreated(ctx *common.ExecutionContext, r *role.Role, grants []permission.FeatureGrant) *RoleCreated {
	return &RoleCreated{
		BaseDomainEvent: newBase(ctx, EventTypeRoleCreated, "role", r.ID),
		roleData:        newRoleData(r, grants),
	}
}

// RoleGrantsReplaced is emitted when the full grant set of a role is replaced
type RoleGrantsReplaced struct {
	common.BaseDomainEvent
	roleData
}

func (e *RoleGrantsReplaced) ToDataJSON() string {
	return common.MarshalDataJSON(e.roleData)
}

func NewRoleGrantsReplaced(ctx *common.ExecutionContext, r *role.Role, grants []permission.FeatureGrant) *RoleGrantsReplaced {
	return &RoleGrantsReplaced{
		BaseDomainEvent: newBase(ctx, EventTypeRoleGrantsReplaced, "role", r.ID),
		roleData:        newRoleData(r, grants),
	}
}

// RoleFeatureRemoved is emitted when one grant row is removed from a role
type RoleFeatureRemoved struct {
	common.BaseDomainEvent
	RoleID     string   `json:"roleId"`
	FeatureID  string   `json:"featureId"`
	FeatureIDs []string `json:"featureIds"`
}

func (e *RoleFeatureRemoved) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		RoleID     string   `json:"roleId"`
		FeatureID  string   `json:"featureId"`
		FeatureIDs []string `json:"featureIds"`
	}{
		RoleID:     e.RoleID,
		FeatureID:  e.FeatureID,
		FeatureIDs: e.FeatureIDs,
	})
}

func NewRoleFeatureRemoved(ctx *common.ExecutionContext, r *role.Role, featureID string) *RoleFeatureRemoved {
	return &RoleFeatureRemoved{
		BaseDomainEvent: newBase(ctx, EventTypeRoleFeatureRemoved, "role", r.ID),
		RoleID:          r.ID,
		FeatureID:       featureID,
		FeatureIDs:      r.FeatureIDs,
	}
}

// RoleDeleted is emitted when a role is deleted
type RoleDeleted struct {
	common.BaseDomainEvent
	RoleID string `json:"roleId"`
	Name   string `json:"name"`
}

func (e *RoleDeleted) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		RoleID string `json:"roleId"`
		Name   string `json:"name"`
	}{
		RoleID: e.RoleID,
		Name:   e.Name,
	})
}

func NewRoleDeleted(ctx *common.ExecutionContext, r *role.Role) *RoleDeleted {
	return &RoleDeleted{
		BaseDomainEvent: newBase(ctx, EventTypeRoleDeleted, "role", r.ID),
		RoleID:          r.ID,
		Name:            r.Name,
	}
}
