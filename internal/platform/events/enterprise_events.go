package events

import (
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/enterprise"
	"go.venuehub.tech/internal/platform/permission"
)

// EnterpriseCreated is emitted when a tenant is provisioned together with its
// admin role and admin user
type EnterpriseCreated struct {
	common.BaseDomainEvent
	EnterpriseID  string                    `json:"enterpriseId"`
	TenantName    string                    `json:"tenantName"`
	AdminRoleID   string                    `json:"adminRoleId"`
	AdminRoleName string                    `json:"adminRoleName"`
	AdminUserID   string                    `json:"adminUserId"`
	Grants        []permission.FeatureGrant `json:"grants"`
}

func (e *EnterpriseCreated) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		EnterpriseID  string                    `json:"enterpriseId"`
		TenantName    string                    `json:"tenantName"`
		AdminRoleID   string                    `json:"adminRoleId"`
		AdminRoleName string                    `json:"adminRoleName"`
		AdminUserID   string                    `json:"adminUserId"`
		Grants        []permission.FeatureGrant `json:"grants"`
	}{
		EnterpriseID:  e.EnterpriseID,
		TenantName:    e.TenantName,
		AdminRoleID:   e.AdminRoleID,
		AdminRoleName: e.AdminRoleName,
		AdminUserID:   e.AdminUserID,
		Grants:        e.Grants,
	})
}

func NewEnterpriseCreated(ctx *common.ExecutionContext, ent *enterprise.Enterprise, adminRoleName string, grants []permission.FeatureGrant) *EnterpriseCreated {
	return &EnterpriseCreated{
		BaseDomainEvent: newBase(ctx, EventTypeEnterpriseCreated, "enterprise", ent.ID),
		EnterpriseID:    ent.ID,
		TenantName:      ent.TenantName,
		AdminRoleID:     ent.AdminRoleID,
		AdminRoleName:   adminRoleName,
		AdminUserID:     ent.AdminUserID,
		Grants:          grants,
	}
}

// EnterpriseActiveChanged is emitted when a tenant is activated or
// deactivated. Trigger records whether the change came from the enterprise
// itself or from its admin user.
type EnterpriseActiveChanged struct {
	common.BaseDomainEvent
	EnterpriseID string `json:"enterpriseId"`
	Active       bool   `json:"active"`
	Trigger      string `json:"trigger"`
}

func (e *EnterpriseActiveChanged) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		EnterpriseID string `json:"enterpriseId"`
		Active       bool   `json:"active"`
		Trigger      string `json:"trigger"`
	}{
		EnterpriseID: e.EnterpriseID,
		Active:       e.Active,
		Trigger:      e.Trigger,
	})
}

// Triggers of an enterprise activation change
const (
	TriggerEnterprise = "enterprise"
	TriggerAdminUser  = "admin-user"
)

func NewEnterpriseActiveChanged(ctx *common.ExecutionContext, ent *enterprise.Enterprise, trigger string) *EnterpriseActiveChanged {
	eventType := EventTypeEnterpriseDeactivated
	if ent.Active {
		eventType = EventTypeEnterpriseActivated
	}
	return &EnterpriseActiveChanged{
		BaseDomainEvent: newBase(ctx, eventType, "enterprise", ent.ID),
		EnterpriseID:    ent.ID,
		Active:          ent.Active,
		Trigger:         trigger,
	}
}

// EnterpriseFeaturesUpdated is emitted when grants are merged into a
// tenant's admin role
type EnterpriseFeaturesUpdated struct {
	common.BaseDomainEvent
	EnterpriseID string                    `json:"enterpriseId"`
	AdminRoleID  string                    `json:"adminRoleId"`
	Grants       []permission.FeatureGrant `json:"grants"`
}

func (e *EnterpriseFeaturesUpdated) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		EnterpriseID string                    `json:"enterpriseId"`
		AdminRoleID  string                    `json:"adminRoleId"`
		Grants       []permission.FeatureGrant `json:"grants"`
	}{
		EnterpriseID: e.EnterpriseID,
		AdminRoleID:  e.AdminRoleID,
		Grants:       e.Grants,
	})
}

func NewEnterpriseFeaturesUpdated(ctx *common.ExecutionContext, ent *enterprise.Enterprise, grants []permission.FeatureGrant) *EnterpriseFeaturesUpdated {
	return &EnterpriseFeaturesUpdated{
		BaseDomainEvent: newBase(ctx, EventTypeEnterpriseFeaturesUpdated, "enterprise", ent.ID),
		EnterpriseID:    ent.ID,
		AdminRoleID:     ent.AdminRoleID,
		Grants:          grants,
	}
}
