package auth

import (
	"context"
	"log/slog"

	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/principal"
)

// LoginCommand carries email and password credentials.
type LoginCommand struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ToAuditJSON keeps the password out of logs.
func (c LoginCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{"email": c.Email})
}

// LoginService authenticates email/password credentials and issues a token.
type LoginService struct {
	users     principal.Repository
	issuer    *Issuer
	passwords *local.PasswordService
	throttle  *Throttle
}

// NewLoginService creates a LoginService.
func NewLoginService(users principal.Repository, issuer *Issuer, passwords *local.PasswordService, throttle *Throttle) *LoginService {
	if throttle == nil {
		throttle = NewThrottle(0, 0)
	}
	return &LoginService{
		users:     users,
		issuer:    issuer,
		passwords: passwords,
		throttle:  throttle,
	}
}

// Login verifies the credentials and issues a session token. An unknown
// email, a wrong password and an inactive or blocked account all fail with
// the same Unauthorized error.
func (s *LoginService) Login(ctx context.Context, cmd LoginCommand) common.Result[*IssuedToken] {
	email := local.NormalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" {
		loginAttempts.WithLabelValues("invalid").Inc()
		return common.Failure[*IssuedToken](invalidCredentials())
	}

	if !s.throttle.Allow(email) {
		loginAttempts.WithLabelValues("throttled").Inc()
		slog.WarnContext(ctx, "Login throttled", "email", email)
		return common.Failure[*IssuedToken](common.RateLimitedError(
			common.ErrCodeThrottled, "Too many login attempts, try again later"))
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to find user", "error", err)
		loginAttempts.WithLabelValues("error").Inc()
		return common.Failure[*IssuedToken](common.InternalError(
			common.ErrCodeInternal, "Internal server error", nil))
	}
	if user == nil {
		s.passwords.SpendVerification(cmd.Password)
		loginAttempts.WithLabelValues("invalid").Inc()
		return common.Failure[*IssuedToken](invalidCredentials())
	}

	if err := s.passwords.VerifyPassword(cmd.Password, user.PasswordHash); err != nil {
		loginAttempts.WithLabelValues("invalid").Inc()
		return common.Failure[*IssuedToken](invalidCredentials())
	}

	if !user.CanAuthenticate() {
		slog.InfoContext(ctx, "Login refused for disabled account",
			"userId", user.ID,
			"active", user.Active,
			"blocked", user.Blocked)
		loginAttempts.WithLabelValues("invalid").Inc()
		return common.Failure[*IssuedToken](invalidCredentials())
	}

	result := s.issuer.Issue(ctx, user)
	if result.IsFailure() {
		loginAttempts.WithLabelValues("error").Inc()
		return result
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "Failed to record last login", "error", err, "userId", user.ID)
	}
	loginAttempts.WithLabelValues("success").Inc()
	return result
}
