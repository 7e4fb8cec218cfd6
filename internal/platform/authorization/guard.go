package authorization

import (
	"log/slog"

	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/permission"
)

// Decision is the outcome of an access check.
type Decision string

const (
	Allow        Decision = "allow"
	Forbidden    Decision = "forbidden"
	Unauthorized Decision = "unauthorized"
)

// Guard decides per request from the presented token alone. It never reads
// the store, so decisions reflect the profile snapshot taken at issuance.
type Guard struct {
	registry      *Registry
	signer        SessionSigner
	levelByMethod bool
}

// NewGuard creates a Guard. When levelByMethod is set every operation is
// evaluated with PolicyLevel regardless of its registration.
func NewGuard(registry *Registry, signer SessionSigner, levelByMethod bool) *Guard {
	return &Guard{registry: registry, signer: signer, levelByMethod: levelByMethod}
}

// Authorize checks a token against alternative required features using the
// presence policy.
func (g *Guard) Authorize(token string, requiredFeatures []string) (*Session, *common.UseCaseError) {
	return g.decide("", token, Requirement{Features: requiredFeatures, Policy: PolicyPresence}, "")
}

// AuthorizeOperation checks a token against the registered requirement of an
// operation. Unregistered operations are refused.
func (g *Guard) AuthorizeOperation(operationID, token, method string) (*Session, *common.UseCaseError) {
	req, ok := g.registry.Requirement(operationID)
	if !ok {
		slog.Error("Access check for unregistered operation", "operation", operationID)
		guardDecisions.WithLabelValues(operationID, string(Forbidden)).Inc()
		return nil, accessDenied()
	}
	return g.decide(operationID, token, req, method)
}

func (g *Guard) decide(operationID, token string, req Requirement, method string) (*Session, *common.UseCaseError) {
	if token == "" {
		guardDecisions.WithLabelValues(operationID, string(Unauthorized)).Inc()
		return nil, common.UnauthorizedError(common.ErrCodeInvalidToken, "Authentication required")
	}

	session, err := g.signer.Verify(token)
	if err != nil {
		guardDecisions.WithLabelValues(operationID, string(Unauthorized)).Inc()
		return nil, common.UnauthorizedError(common.ErrCodeInvalidToken, "Invalid or expired token")
	}

	if g.levelByMethod {
		req.Policy = PolicyLevel
	}
	if Check(session.Profile, req, method) != Allow {
		guardDecisions.WithLabelValues(operationID, string(Forbidden)).Inc()
		return nil, accessDenied()
	}

	guardDecisions.WithLabelValues(operationID, string(Allow)).Inc()
	return session, nil
}

// Check evaluates a requirement against a profile. It returns Allow or
// Forbidden.
func Check(profile AccessProfile, req Requirement, method string) Decision {
	if len(req.Features) == 0 {
		return Allow
	}
	level := permission.LevelAny
	if req.Policy == PolicyLevel {
		level = LevelForMethod(method)
	}
	if profile.AllowsAny(req.Features, level) {
		return Allow
	}
	return Forbidden
}

// accessDenied carries no detail on which feature was missing.
func accessDenied() *common.UseCaseError {
	return common.ForbiddenError(common.ErrCodeAccessDenied, "Access denied")
}
