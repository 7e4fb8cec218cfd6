// Package operations holds the user lifecycle use cases: signup, credential
// setup, activation and blocking.
package operations

import (
	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/principal"
)

func storeError(message string, err error) *common.UseCaseError {
	return common.InternalError(common.ErrCodeInternal, message, map[string]any{"error": err.Error()})
}

func userNotFound(id string) *common.UseCaseError {
	return common.NotFoundError(common.ErrCodeUserNotFound, "User not found", map[string]any{"id": id})
}

// userUnreachable is the failure for a user that is missing or belongs to
// another tenant. Tenant callers get the same Forbidden in both cases.
func userUnreachable(execCtx *common.ExecutionContext, id string) *common.UseCaseError {
	if execCtx != nil && execCtx.TenantID != "" {
		return common.TenantAccessDenied()
	}
	return userNotFound(id)
}

// userLockKey is the lock a write to u must hold. Tenant users share the
// enterprise lock so that no write lands between the read and the commit of
// a deactivation cascade.
func userLockKey(u *principal.User) string {
	if u.TenantID != "" {
		return lock.Key("enterprise", u.TenantID)
	}
	return lock.Key("user", u.ID)
}
