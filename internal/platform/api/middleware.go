package api

import (
	"context"
	"net/http"

	"go.venuehub.tech/internal/platform/auth/session"
	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/common"
)

type contextKey string

const contextKeySession contextKey = "session"

// AccessMiddleware enforces the operation registration table on routes.
type AccessMiddleware struct {
	guard    *authorization.Guard
	sessions *session.Manager
}

// NewAccessMiddleware creates a new access middleware
func NewAccessMiddleware(guard *authorization.Guard, sessions *session.Manager) *AccessMiddleware {
	return &AccessMiddleware{guard: guard, sessions: sessions}
}

// Require admits requests whose token satisfies the registered requirement
// of operationID. The verified session is stored on the request context.
func (m *AccessMiddleware) Require(operationID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, failure := m.guard.AuthorizeOperation(operationID, m.sessions.Token(r), r.Method)
			if failure != nil {
				WriteUseCaseError(w, failure)
				return
			}
			ctx := context.WithValue(r.Context(), contextKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the verified session, or nil on public routes.
func SessionFromContext(ctx context.Context) *authorization.Session {
	s, _ := ctx.Value(contextKeySession).(*authorization.Session)
	return s
}

// execContext continues the request trace on behalf of the session's user,
// scoped to the session's tenant.
func execContext(r *http.Request) *common.ExecutionContext {
	s := SessionFromContext(r.Context())
	if s == nil {
		return common.ExecutionContextFromRequest(r, "anonymous")
	}
	ec := common.ExecutionContextFromRequest(r, s.UserID)
	ec.TenantID = s.TenantID
	return ec
}
