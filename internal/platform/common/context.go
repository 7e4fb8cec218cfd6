package common

import (
	"context"
	"net/http"
	"time"

	"go.venuehub.tech/internal/common/tsid"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlationID"
	causationIDKey   contextKey = "causationID"
)

// HTTP header names for distributed tracing
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderCausationID   = "X-Causation-ID"
)

// SystemPrincipal is recorded on events produced by startup tasks.
const SystemPrincipal = "system"

// ExecutionContext contains metadata about the current use case execution.
// It is copied onto every domain event and audit log entry.
type ExecutionContext struct {
	// ExecutionID is unique per use case invocation.
	ExecutionID string

	// CorrelationID is propagated across service boundaries.
	CorrelationID string

	// CausationID is the ID of the event that caused this execution, if any.
	CausationID string

	// PrincipalID identifies the acting user, or SystemPrincipal.
	PrincipalID string

	// TenantID is the enterprise the acting user belongs to. Empty for
	// platform users and system tasks.
	TenantID string

	InitiatedAt time.Time
}

// NewExecutionContext creates a new execution context for a fresh request.
func NewExecutionContext(principalID string) *ExecutionContext {
	execID := "exec-" + tsid.Generate()
	return &ExecutionContext{
		ExecutionID:   execID,
		CorrelationID: execID,
		PrincipalID:   principalID,
		InitiatedAt:   time.Now(),
	}
}

// ExecutionContextFromRequest creates an execution context that continues the
// trace carried by the request.
func ExecutionContextFromRequest(r *http.Request, principalID string) *ExecutionContext {
	ec := NewExecutionContext(principalID)
	if id := CorrelationIDFromContext(r.Context()); id != "" {
		ec.CorrelationID = id
	}
	if id, ok := r.Context().Value(causationIDKey).(string); ok {
		ec.CausationID = id
	}
	return ec
}

// OwnsTenant reports whether the caller may act on resources of tenantID.
// Callers outside any tenant act platform-wide; a tenant caller only reaches
// its own tenant.
func (ec *ExecutionContext) OwnsTenant(tenantID string) bool {
	if ec == nil || ec.TenantID == "" {
		return true
	}
	return ec.TenantID == tenantID
}

// CorrelationIDFromContext extracts the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithCorrelationID adds a correlation ID to a context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// TracingMiddleware reads X-Correlation-ID (or X-Request-ID) and
// X-Causation-ID into the request context, generating a correlation ID when
// none was sent, and echoes it on the response.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = r.Header.Get(HeaderRequestID)
		}
		if correlationID == "" {
			correlationID = "trace-" + tsid.Generate()
		}

		ctx := WithCorrelationID(r.Context(), correlationID)
		if causationID := r.Header.Get(HeaderCausationID); causationID != "" {
			ctx = context.WithValue(ctx, causationIDKey, causationID)
		}

		w.Header().Set(HeaderCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
