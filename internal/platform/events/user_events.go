package events

import (
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/principal"
)

// UserRegistered is emitted when a marketplace user signs up
type UserRegistered struct {
	common.BaseDomainEvent
	UserID  string   `json:"userId"`
	Email   string   `json:"email"`
	RoleIDs []string `json:"roleIds"`
}

func (e *UserRegistered) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		UserID  string   `json:"userId"`
		Email   string   `json:"email"`
		RoleIDs []string `json:"roleIds"`
	}{
		UserID:  e.UserID,
		Email:   e.Email,
		RoleIDs: e.RoleIDs,
	})
}

func NewUserRegistered(ctx *common.ExecutionContext, u *principal.User) *UserRegistered {
	return &UserRegistered{
		BaseDomainEvent: newBase(ctx, EventTypeUserRegistered, "user", u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		RoleIDs:         u.RoleIDs,
	}
}

// SubUserAdded is emitted when a tenant admin provisions a sub-user with a
// scoped role
type SubUserAdded struct {
	common.BaseDomainEvent
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	EnterpriseID string `json:"enterpriseId"`
	RoleID       string `json:"roleId"`
	RoleName     string `json:"roleName"`
}

func (e *SubUserAdded) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		UserID       string `json:"userId"`
		Email        string `json:"email"`
		EnterpriseID string `json:"enterpriseId"`
		RoleID       string `json:"roleId"`
		RoleName     string `json:"roleName"`
	}{
		UserID:       e.UserID,
		Email:        e.Email,
		EnterpriseID: e.EnterpriseID,
		RoleID:       e.RoleID,
		RoleName:     e.RoleName,
	})
}

func NewSubUserAdded(ctx *common.ExecutionContext, u *principal.User, roleID, roleName string) *SubUserAdded {
	return &SubUserAdded{
		BaseDomainEvent: newBase(ctx, EventTypeUserSubUserAdded, "user", u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		EnterpriseID:    u.TenantID,
		RoleID:          roleID,
		RoleName:        roleName,
	}
}

// UserActiveChanged is emitted when a user is activated or deactivated.
// Cascaded is set when the change also deactivated the user's enterprise and
// every user scoped to it.
type UserActiveChanged struct {
	common.BaseDomainEvent
	UserID   string `json:"userId"`
	Active   bool   `json:"active"`
	Cascaded bool   `json:"cascaded"`
}

func (e *UserActiveChanged) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		UserID   string `json:"userId"`
		Active   bool   `json:"active"`
		Cascaded bool   `json:"cascaded"`
	}{
		UserID:   e.UserID,
		Active:   e.Active,
		Cascaded: e.Cascaded,
	})
}

func NewUserActiveChanged(ctx *common.ExecutionContext, u *principal.User, cascaded bool) *UserActiveChanged {
	eventType := EventTypeUserDeactivated
	if u.Active {
		eventType = EventTypeUserActivated
	}
	return &UserActiveChanged{
		BaseDomainEvent: newBase(ctx, eventType, "user", u.ID),
		UserID:          u.ID,
		Active:          u.Active,
		Cascaded:        cascaded,
	}
}

// UserBlockChanged is emitted when a user is blocked or unblocked
type UserBlockChanged struct {
	common.BaseDomainEvent
	UserID  string `json:"userId"`
	Blocked bool   `json:"blocked"`
}

func (e *UserBlockChanged) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		UserID  string `json:"userId"`
		Blocked bool   `json:"blocked"`
	}{
		UserID:  e.UserID,
		Blocked: e.Blocked,
	})
}

func NewUserBlockChanged(ctx *common.ExecutionContext, u *principal.User) *UserBlockChanged {
	eventType := EventTypeUserUnblocked
	if u.Blocked {
		eventType = EventTypeUserBlocked
	}
	return &UserBlockChanged{
		BaseDomainEvent: newBase(ctx, eventType, "user", u.ID),
		UserID:          u.ID,
		Blocked:         u.Blocked,
	}
}

// CredentialsSet is emitted when a user completes credential setup with a
// reset token
type CredentialsSet struct {
	common.BaseDomainEvent
	UserID string `json:"userId"`
}

func (e *CredentialsSet) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		UserID string `json:"userId"`
	}{
		UserID: e.UserID,
	})
}

func NewCredentialsSet(ctx *common.ExecutionContext, u *principal.User) *CredentialsSet {
	return &CredentialsSet{
		BaseDomainEvent: newBase(ctx, EventTypeUserCredentialsSet, "user", u.ID),
		UserID:          u.ID,
	}
}
