package api

import (
	"net/http"
	"time"

	"go.venuehub.tech/internal/platform/auth"
	"go.venuehub.tech/internal/platform/auth/jwt"
	"go.venuehub.tech/internal/platform/auth/session"
	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
	principalops "go.venuehub.tech/internal/platform/principal/operations"
)

// AuthHandler handles the public authentication endpoints
type AuthHandler struct {
	login       *auth.LoginService
	sessions    *session.Manager
	keys        *jwt.KeyManager
	register    *principalops.RegisterUserUseCase
	credentials *principalops.CompleteCredentialSetupUseCase
}

// LoginResponse is returned by a successful login. The token is also set as
// the session cookie.
type LoginResponse struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expiresAt"`
	Session   *authorization.Session `json:"session"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd auth.LoginCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	result := h.login.Login(r.Context(), cmd)
	if result.IsFailure() {
		WriteUseCaseError(w, result.Error())
		return
	}

	issued := result.Value()
	h.sessions.SetSession(w, issued.Token, issued.Session.ExpiresAt)
	WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.Session.ExpiresAt,
		Session:   issued.Session,
	})
}

// Logout handles POST /auth/logout. Tokens stay valid until they expire;
// only the cookie is cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd principalops.RegisterUserCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	execCtx := common.ExecutionContextFromRequest(r, "anonymous")
	WriteUseCaseResult(w, h.register.Execute(r.Context(), cmd, execCtx), http.StatusCreated)
}

// CompleteCredentials handles POST /auth/credentials
func (h *AuthHandler) CompleteCredentials(w http.ResponseWriter, r *http.Request) {
	var cmd principalops.CompleteCredentialSetupCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	execCtx := common.ExecutionContextFromRequest(r, "anonymous")
	WriteUseCaseResult(w, h.credentials.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

// JWKS handles GET /.well-known/jwks.json
func (h *AuthHandler) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	WriteJSON(w, http.StatusOK, h.keys.GetJWKS())
}
