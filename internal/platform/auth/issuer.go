// Package auth issues session tokens, either directly for a known user or
// after a credential login.
package auth

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/principal"
)

// ProfileResolver resolves role ids into an AccessProfile.
type ProfileResolver interface {
	Resolve(ctx context.Context, roleIDs []string) (authorization.AccessProfile, error)
}

// IssuedToken is a signed session token together with the claims it carries.
type IssuedToken struct {
	Token   string                 `json:"token"`
	Session *authorization.Session `json:"session"`
}

// Issuer turns an authenticated user into a signed session token.
type Issuer struct {
	resolver ProfileResolver
	signer   authorization.SessionSigner
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer creates an Issuer. Every token it signs expires ttl after
// issuance.
func NewIssuer(resolver ProfileResolver, signer authorization.SessionSigner, ttl time.Duration) *Issuer {
	return &Issuer{
		resolver: resolver,
		signer:   signer,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue resolves the user's profile and signs it. Inactive and blocked users
// are refused with the same error a failed login gets.
func (i *Issuer) Issue(ctx context.Context, user *principal.User) common.Result[*IssuedToken] {
	if user == nil || !user.CanAuthenticate() {
		tokensIssued.WithLabelValues("refused").Inc()
		return common.Failure[*IssuedToken](invalidCredentials())
	}

	profile, err := i.resolver.Resolve(ctx, user.RoleIDs)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve access profile", "error", err, "userId", user.ID)
		tokensIssued.WithLabelValues("error").Inc()
		return common.Failure[*IssuedToken](common.InternalError(
			common.ErrCodeInternal, "Failed to resolve access profile", nil))
	}

	now := i.now().UTC().Truncate(time.Second)
	session := &authorization.Session{
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Roles:     slices.Clone(user.RoleIDs),
		Profile:   profile,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}

	token, err := i.signer.Sign(session)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sign session token", "error", err, "userId", user.ID)
		tokensIssued.WithLabelValues("error").Inc()
		return common.Failure[*IssuedToken](common.InternalError(
			common.ErrCodeInternal, "Failed to create session", nil))
	}

	tokensIssued.WithLabelValues("issued").Inc()
	slog.DebugContext(ctx, "Session token issued",
		"userId", user.ID,
		"tenantId", user.TenantID,
		"features", len(profile))

	return common.Resolved(&IssuedToken{Token: token, Session: session})
}

func invalidCredentials() *common.UseCaseError {
	return common.UnauthorizedError(common.ErrCodeInvalidCredentials, "Invalid email or password")
}
