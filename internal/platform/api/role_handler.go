package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	featureops "go.venuehub.tech/internal/platform/feature/operations"
	"go.venuehub.tech/internal/platform/permission"
	roleops "go.venuehub.tech/internal/platform/role/operations"
)

// RoleHandler handles the feature catalog and role endpoints
type RoleHandler struct {
	ensureFeature *featureops.EnsureFeatureUseCase
	create        *roleops.CreateRoleUseCase
	replaceGrants *roleops.ReplaceRoleGrantsUseCase
	removeFeature *roleops.RemoveFeatureUseCase
	delete        *roleops.DeleteRoleUseCase
}

// GrantsRequest carries a grant set in a request body.
type GrantsRequest struct {
	Grants []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// EnsureFeature handles POST /api/features. The call is idempotent: an
// existing feature with the same catalog key is returned unchanged.
func (h *RoleHandler) EnsureFeature(w http.ResponseWriter, r *http.Request) {
	var cmd featureops.EnsureFeatureCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	execCtx := execContext(r)
	WriteUseCaseResult(w, h.ensureFeature.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

// Create handles POST /api/roles
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd roleops.CreateRoleCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	execCtx := execContext(r)
	WriteUseCaseResult(w, h.create.Execute(r.Context(), cmd, execCtx), http.StatusCreated)
}

// ReplaceGrants handles PUT /api/roles/{id}/grants
func (h *RoleHandler) ReplaceGrants(w http.ResponseWriter, r *http.Request) {
	var req GrantsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	cmd := roleops.ReplaceRoleGrantsCommand{RoleID: chi.URLParam(r, "id"), Grants: req.Grants}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.replaceGrants.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

// RemoveFeature handles DELETE /api/roles/{id}/features/{featureId}
func (h *RoleHandler) RemoveFeature(w http.ResponseWriter, r *http.Request) {
	cmd := roleops.RemoveFeatureCommand{
		RoleID:    chi.URLParam(r, "id"),
		FeatureID: chi.URLParam(r, "featureId"),
	}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.removeFeature.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

// Delete handles DELETE /api/roles/{id}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cmd := roleops.DeleteRoleCommand{ID: chi.URLParam(r, "id")}
	execCtx := execContext(r)

	result := h.delete.Execute(r.Context(), cmd, execCtx)
	if result.IsFailure() {
		WriteUseCaseError(w, result.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
