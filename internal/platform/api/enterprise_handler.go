package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	enterpriseops "go.venuehub.tech/internal/platform/enterprise/operations"
	"go.venuehub.tech/internal/platform/permission"
)

// EnterpriseHandler handles tenant provisioning and lifecycle endpoints
type EnterpriseHandler struct {
	create         *enterpriseops.CreateEnterpriseUseCase
	addSubUser     *enterpriseops.AddSubUserUseCase
	setActive      *enterpriseops.SetEnterpriseActiveUseCase
	updateFeatures *enterpriseops.UpdateEnterpriseFeaturesUseCase
}

// AddSubUserRequest is the body of POST /api/enterprises/{id}/users
type AddSubUserRequest struct {
	Email  string                    `json:"email" validate:"required,email"`
	Name   string                    `json:"name,omitempty"`
	Grants []permission.FeatureGrant `json:"grants" validate:"dive"`
}

// Create handles POST /api/enterprises. It is the public tenant signup; the
// admin receives a credential setup link.
func (h *EnterpriseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd enterpriseops.CreateEnterpriseCommand
	if err := DecodeJSON(w, r, &cmd); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	execCtx := execContext(r)
	WriteUseCaseResult(w, h.create.Execute(r.Context(), cmd, execCtx), http.StatusCreated)
}

// AddSubUser handles POST /api/enterprises/{id}/users
func (h *EnterpriseHandler) AddSubUser(w http.ResponseWriter, r *http.Request) {
	var req AddSubUserRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	cmd := enterpriseops.AddSubUserCommand{
		EnterpriseID: chi.URLParam(r, "id"),
		Email:        req.Email,
		Name:         req.Name,
		Grants:       req.Grants,
	}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.addSubUser.Execute(r.Context(), cmd, execCtx), http.StatusCreated)
}

// UpdateFeatures handles PUT /api/enterprises/{id}/features
func (h *EnterpriseHandler) UpdateFeatures(w http.ResponseWriter, r *http.Request) {
	var req GrantsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	cmd := enterpriseops.UpdateEnterpriseFeaturesCommand{EnterpriseID: chi.URLParam(r, "id"), Grants: req.Grants}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.updateFeatures.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}

// Activate handles POST /api/enterprises/{id}/activate
func (h *EnterpriseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setEnterpriseActive(w, r, true)
}

// Deactivate handles POST /api/enterprises/{id}/deactivate
func (h *EnterpriseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setEnterpriseActive(w, r, false)
}

func (h *EnterpriseHandler) setEnterpriseActive(w http.ResponseWriter, r *http.Request, active bool) {
	cmd := enterpriseops.SetEnterpriseActiveCommand{EnterpriseID: chi.URLParam(r, "id"), Active: active}
	execCtx := execContext(r)
	WriteUseCaseResult(w, h.setActive.Execute(r.Context(), cmd, execCtx), http.StatusOK)
}
