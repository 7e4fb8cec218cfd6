// Package api exposes the authorization service over HTTP. Every protected
// route is looked up in the operation registration table by id; handlers
// never check features themselves.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/platform/auth"
	"go.venuehub.tech/internal/platform/auth/jwt"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/auth/session"
	"go.venuehub.tech/internal/platform/authorization"
	enterpriseops "go.venuehub.tech/internal/platform/enterprise/operations"
	featureops "go.venuehub.tech/internal/platform/feature/operations"
	"go.venuehub.tech/internal/platform/notification"
	principalops "go.venuehub.tech/internal/platform/principal/operations"
	roleops "go.venuehub.tech/internal/platform/role/operations"
	"go.venuehub.tech/internal/platform/store"
)

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	Store     *store.Store
	Locker    lock.Locker
	Passwords *local.PasswordService
	Login     *auth.LoginService
	Sessions  *session.Manager
	Keys      *jwt.KeyManager
	Guard     *authorization.Guard
	Notifier  notification.Sender
	Tenancy   enterpriseops.Config

	// AuthRequestsPerMinute limits requests per client IP on the public
	// /auth routes. Zero disables the limit.
	AuthRequestsPerMinute int
}

// Handlers contains all API handlers
type Handlers struct {
	access *AccessMiddleware

	auth        *AuthHandler
	roles       *RoleHandler
	enterprises *EnterpriseHandler
	users       *UserHandler

	authRequestsPerMinute int
}

// NewHandlers wires every use case to its handler.
func NewHandlers(s Services) *Handlers {
	st := s.Store
	notifier := s.Notifier
	if notifier == nil {
		notifier = notification.Discard{}
	}

	return &Handlers{
		access: NewAccessMiddleware(s.Guard, s.Sessions),
		auth: &AuthHandler{
			login:       s.Login,
			sessions:    s.Sessions,
			keys:        s.Keys,
			register:    principalops.NewRegisterUserUseCase(st.Users, st.Roles, st.UnitOfWork, s.Locker, s.Passwords),
			credentials: principalops.NewCompleteCredentialSetupUseCase(st.Users, st.Enterprises, st.UnitOfWork, s.Locker, s.Passwords),
		},
		roles: &RoleHandler{
			ensureFeature: featureops.NewEnsureFeatureUseCase(st.Features, st.UnitOfWork, s.Locker),
			create:        roleops.NewCreateRoleUseCase(st.Roles, st.Features, st.UnitOfWork),
			replaceGrants: roleops.NewReplaceRoleGrantsUseCase(st.Roles, st.Features, st.UnitOfWork, s.Locker),
			removeFeature: roleops.NewRemoveFeatureUseCase(st.Roles, st.Grants, st.UnitOfWork, s.Locker),
			delete:        roleops.NewDeleteRoleUseCase(st.Roles, st.Users, st.Enterprises, st.UnitOfWork, s.Locker),
		},
		enterprises: &EnterpriseHandler{
			create:         enterpriseops.NewCreateEnterpriseUseCase(st.Enterprises, st.Roles, st.Users, st.Features, st.UnitOfWork, s.Locker, notifier, s.Tenancy),
			addSubUser:     enterpriseops.NewAddSubUserUseCase(st.Enterprises, st.Roles, st.Grants, st.Users, st.Features, st.UnitOfWork, s.Locker, notifier, s.Tenancy),
			setActive:      enterpriseops.NewSetEnterpriseActiveUseCase(st.Enterprises, st.Users, st.UnitOfWork, s.Locker),
			updateFeatures: enterpriseops.NewUpdateEnterpriseFeaturesUseCase(st.Enterprises, st.Roles, st.Grants, st.Features, st.UnitOfWork, s.Locker),
		},
		users: &UserHandler{
			setActive:  principalops.NewSetUserActiveUseCase(st.Users, st.Enterprises, st.UnitOfWork, s.Locker),
			setBlocked: principalops.NewSetUserBlockedUseCase(st.Users, st.UnitOfWork, s.Locker),
		},
		authRequestsPerMinute: s.AuthRequestsPerMinute,
	}
}

// Mount registers every route on r.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/.well-known/jwks.json", h.auth.JWKS)

	r.Route("/auth", func(r chi.Router) {
		if h.authRequestsPerMinute > 0 {
			r.Use(httprate.Limit(h.authRequestsPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
				}),
			))
		}
		r.Post("/login", h.auth.Login)
		r.Post("/logout", h.auth.Logout)
		r.Post("/signup", h.auth.Signup)
		r.Post("/credentials", h.auth.CompleteCredentials)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(h.access.Require(authorization.OpProfileRead)).Get("/me/profile", h.users.Profile)

		r.With(h.access.Require(authorization.OpFeaturesEnsure)).Post("/features", h.roles.EnsureFeature)

		r.Route("/roles", func(r chi.Router) {
			r.With(h.access.Require(authorization.OpRolesCreate)).Post("/", h.roles.Create)
			r.With(h.access.Require(authorization.OpRolesReplaceGrants)).Put("/{id}/grants", h.roles.ReplaceGrants)
			r.With(h.access.Require(authorization.OpRolesRemoveFeature)).Delete("/{id}/features/{featureId}", h.roles.RemoveFeature)
			r.With(h.access.Require(authorization.OpRolesDelete)).Delete("/{id}", h.roles.Delete)
		})

		r.Route("/enterprises", func(r chi.Router) {
			r.Post("/", h.enterprises.Create)
			r.With(h.access.Require(authorization.OpEnterprisesAddSubUser)).Post("/{id}/users", h.enterprises.AddSubUser)
			r.With(h.access.Require(authorization.OpEnterprisesUpdateFeatures)).Put("/{id}/features", h.enterprises.UpdateFeatures)
			r.Group(func(r chi.Router) {
				r.Use(h.access.Require(authorization.OpEnterprisesSetActive))
				r.Post("/{id}/activate", h.enterprises.Activate)
				r.Post("/{id}/deactivate", h.enterprises.Deactivate)
			})
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.access.Require(authorization.OpUsersSetActive))
				r.Post("/activate", h.users.Activate)
				r.Post("/deactivate", h.users.Deactivate)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.access.Require(authorization.OpUsersSetBlocked))
				r.Post("/block", h.users.Block)
				r.Post("/unblock", h.users.Unblock)
			})
		})
	})
}

// Router returns a chi router with every route mounted.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}
