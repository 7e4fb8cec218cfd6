// Package operations holds the tenant use cases: provisioning an enterprise
// with its admin, adding sub-users, the activation cascade and feature
// updates. Every mutation of an enterprise holds the enterprise lock.
package operations

import (
	"context"
	"time"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/principal"
)

// Config controls how tenant users are provisioned.
type Config struct {
	// EnforceAttenuation limits a sub-user's grants to flags the tenant
	// admin's own role holds on the same feature.
	EnforceAttenuation bool

	// ResetTokenTTL is how long a credential setup token stays valid.
	ResetTokenTTL time.Duration
}

// DefaultConfig enforces attenuation with the default token lifetime.
func DefaultConfig() Config {
	return Config{
		EnforceAttenuation: true,
		ResetTokenTTL:      principal.DefaultResetTokenTTL,
	}
}

func (c Config) tokenTTL() time.Duration {
	if c.ResetTokenTTL <= 0 {
		return principal.DefaultResetTokenTTL
	}
	return c.ResetTokenTTL
}

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
	return refusePlatformFeatures(ctx, features, ids)
}

// refusePlatformFeatures keeps platform features out of tenant roles; a
// tenant holding one would pass the guards of the platform API.
func refusePlatformFeatures(ctx context.Context, features feature.Repository, ids []string) *common.UseCaseError {
	reserved, err := authorization.PlatformFeatureIDs(ctx, features, ids)
	if err != nil {
		return storeError("Failed to look up features", err)
	}
	if len(reserved) > 0 {
		return common.ForbiddenError(common.ErrCodeReservedFeature,
			"Platform features cannot be granted to an enterprise")
	}
	return nil
}

func storeError(message string, err error) *common.UseCaseError {
	return common.InternalError(common.ErrCodeInternal, message, map[string]any{"error": err.Error()})
}

func enterpriseNotFound(id string) *common.UseCaseError {
	return common.NotFoundError(common.ErrCodeEnterpriseNotFound, "Enterprise not found", map[string]any{"id": id})
}

func duplicateEmail(email string) *common.UseCaseError {
	return common.ConflictError(common.ErrCodeDuplicateEmail,
		"A user with this email already exists",
		map[string]any{"email": email})
}

func rowAggregates(rows []*permission.Grant) []common.AggregateRoot {
	out := make([]common.AggregateRoot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out
}
