package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go.venuehub.tech/internal/platform/common"
	principalops "go.venuehub.tech/internal/platform/principal/operations"
)

// UserHandler handles user lifecycle endpoints and the profile preview
type UserHandler struct {
	setActive  *principalops.SetUserActiveUseCase
	setBlocked *principalops.SetUserBlockedUseCase
}

// Profile handles GET /api/me/profile. It returns the claims of the
// presented token, which may lag behind grant changes made after issuance.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	if s == nil {
		WriteError(w, http.StatusUnauthorized, common.ErrCodeInvalidToken, "Authentication required")
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setUserBlocked(w, r, true)
}

func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setUserBlocked(w, r, false)
}

func (h *UserHandler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	cmd := principalops.SetUserActiveCommand{UserID: chi.URLParam(r, "id"), Active: active}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.setActive.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

func (h *UserHandler) setUserBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	cmd := principalops.SetUserBlockedCommand{UserID: chi.URLParam(r, "id"), Blocked: blocked}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.setBlocked.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}
