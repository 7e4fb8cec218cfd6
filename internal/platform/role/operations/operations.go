// Package operations holds the role use cases. Every mutation of a role and
// its grant rows runs under the role's lock and commits in one UnitOfWork.
package operations

import (
	"context"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
)

// validateFeatures fails with InvalidReference when a grant names a feature
// that is not in the catalog.
func validateFeatures(ctx context.Context, features feature.Repository, grants []permission.FeatureGrant) *common.UseCaseError {
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.FeatureID)
	}
	missing, err := feature.MissingIDs(ctx, features, ids)
	if err != nil {
		return storeError("Failed to look up features", err)
	}
	if len(missing) > 0 {
		return common.InvalidReferenceError(common.ErrCodeUnknownFeature,
			"Grant references an unknown feature",
			map[string]any{"featureIds": missing})
	}
	return nil
}

// refusePlatformFeatures fails when a grant on a tenant-scoped role names a
// platform feature.
func refusePlatformFeatures(ctx context.Context, features feature.Repository, grants []permission.FeatureGrant) *common.UseCaseError {
	reserved, err := authorization.PlatformFeatureIDs(ctx, features, permission.FeatureIDs(grants))
	if err != nil {
		return storeError("Failed to look up features", err)
	}
	if len(reserved) > 0 {
		return common.ForbiddenError(common.ErrCodeReservedFeature,
			"Platform features cannot be granted to a tenant role")
	}
	return nil
}

// roleUnreachable is the failure for a role that is missing or belongs to
// another tenant. Tenant callers get the same Forbidden in both cases.
func roleUnreachable(execCtx *common.ExecutionContext, id string) *common.UseCaseError {
	if execCtx != nil && execCtx.TenantID != "" {
		return common.TenantAccessDenied()
	}
	return roleNotFound(id)
}

func storeError(message string, err error) *common.UseCaseError {
	return common.InternalError(common.ErrCodeInternal, message, map[string]any{"error": err.Error()})
}

func rowAggregates(rows []*permission.Grant) []common.AggregateRoot {
	out := make([]common.AggregateRoot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out
}
