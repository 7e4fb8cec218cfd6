package authorization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/permission"
	"go.venuehub.tech/internal/platform/role"
)

// Resolver computes AccessProfiles from stored roles and grants. It holds no
// state of its own and is safe for concurrent use.
type Resolver struct {
	roles    role.Repository
	grants   permission.Repository
	features feature.Repository
}

// NewResolver creates a Resolver.
func NewResolver(roles role.Repository, grants permission.Repository, features feature.Repository) *Resolver {
	return &Resolver{roles: roles, grants: grants, features: features}
}

// Resolve loads the roles, loads their grants, groups them by feature and ORs
// the flags. Role ids that no longer exist contribute nothing, and neither
// do grants on features missing from the catalog. The only error returned is
// a failure of the store itself.
func (r *Resolver) Resolve(ctx context.Context, roleIDs []string) (AccessProfile, error) {
	timer := prometheus.NewTimer(resolveDuration)
	defer timer.ObserveDuration()

	profile := AccessProfile{}
	if len(roleIDs) == 0 {
		return profile, nil
	}

	requested := dedupe(roleIDs)
	roles, err := r.roles.FindByIDs(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) < len(requested) {
		slog.DebugContext(ctx, "Skipping dangling role ids",
			"requested", len(requested),
			"found", len(roles))
	}
	if len(roles) == 0 {
		return profile, nil
	}

	known := make([]string, 0, len(roles))
	for _, ro := range roles {
		known = append(known, ro.ID)
	}

	grants, err := r.grants.FindByRoleIDs(ctx, known)
	if err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}

	merged := make(map[string]permission.Flags)
	for _, g := range grants {
		if !g.Flags.Any() {
			continue
		}
		merged[g.FeatureID] = merged[g.FeatureID].Or(g.Flags)
	}
	if len(merged) == 0 {
		return profile, nil
	}

	featureIDs := make([]string, 0, len(merged))
	for id := range merged {
		featureIDs = append(featureIDs, id)
	}
	features, err := r.features.FindByIDs(ctx, featureIDs)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	for _, f := range features {
		profile[f.Name] = profile[f.Name].Or(merged[f.ID])
	}
	return profile, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
