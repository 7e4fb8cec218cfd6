package common

import (
	"fmt"
	"net/http"
)

// ErrorKind represents the category of use case error.
// Each kind maps to a specific HTTP status code.
type ErrorKind int

const (
	// ErrorKindValidation represents malformed input.
	// Maps to HTTP 400 Bad Request.
	ErrorKindValidation ErrorKind = iota

	// ErrorKindConflict represents a uniqueness violation or a mutation that
	// the current state does not allow.
	// Maps to HTTP 409 Conflict.
	ErrorKindConflict

	// ErrorKindInvalidReference represents a reference to a Feature or Role
	// that does not exist.
	// Maps to HTTP 422 Unprocessable Entity.
	ErrorKindInvalidReference

	// ErrorKindNotFound represents operating on an id that does not exist.
	// Maps to HTTP 404 Not Found.
	ErrorKindNotFound

	// ErrorKindUnauthorized represents a missing, malformed or expired
	// credential. The caller must re-authenticate.
	// Maps to HTTP 401 Unauthorized.
	ErrorKindUnauthorized

	// ErrorKindForbidden represents a known caller lacking capability.
	// Maps to HTTP 403 Forbidden.
	ErrorKindForbidden

	// ErrorKindRateLimited represents a caller that exceeded an attempt
	// budget.
	// Maps to HTTP 429 Too Many Requests.
	ErrorKindRateLimited

	// ErrorKindInternal represents unexpected internal errors.
	// Maps to HTTP 500 Internal Server Error.
	ErrorKindInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "VALIDATION"
	case ErrorKindConflict:
		return "CONFLICT"
	case ErrorKindInvalidReference:
		return "INVALID_REFERENCE"
	case ErrorKindNotFound:
		return "NOT_FOUND"
	case ErrorKindUnauthorized:
		return "UNAUTHORIZED"
	case ErrorKindForbidden:
		return "FORBIDDEN"
	case ErrorKindRateLimited:
		return "RATE_LIMITED"
	case ErrorKindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus returns the HTTP status code for this error kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrorKindValidation:
		return http.StatusBadRequest
	case ErrorKindConflict:
		return http.StatusConflict
	case ErrorKindInvalidReference:
		return http.StatusUnprocessableEntity
	case ErrorKindNotFound:
		return http.StatusNotFound
	case ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case ErrorKindForbidden:
		return http.StatusForbidden
	case ErrorKindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// UseCaseError represents an error from a use case execution.
// It contains structured information about what went wrong,
// suitable for both logging and API responses.
type UseCaseError struct {
	Kind    ErrorKind      `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *UseCaseError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Kind.String(), e.Code, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *UseCaseError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithDetail adds a detail to the error and returns it for chaining.
func (e *UseCaseError) WithDetail(key string, value any) *UseCaseError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(kind ErrorKind, code, message string, details map[string]any) *UseCaseError {
	return &UseCaseError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ValidationError creates a new validation error.
func ValidationError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindValidation, code, message, details)
}

// ConflictError creates a uniqueness or state conflict error.
func ConflictError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindConflict, code, message, details)
}

// InvalidReferenceError reports a reference to a Feature or Role that does
// not exist.
func InvalidReferenceError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindInvalidReference, code, message, details)
}

// NotFoundError creates a new not found error.
func NotFoundError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindNotFound, code, message, details)
}

// UnauthorizedError reports a missing or invalid credential.
func UnauthorizedError(code, message string) *UseCaseError {
	return newError(ErrorKindUnauthorized, code, message, nil)
}

// ForbiddenError reports a known caller that lacks capability. It carries no
// details so that responses never reveal which capability was missing.
func ForbiddenError(code, message string) *UseCaseError {
	return newError(ErrorKindForbidden, code, message, nil)
}

// TenantAccessDenied is returned when a tenant caller targets a resource of
// another tenant. It does not reveal whether the resource exists.
func TenantAccessDenied() *UseCaseError {
	return ForbiddenError(ErrCodeAccessDenied, "Access denied")
}

// BusyError reports that the per-entity lock could not be taken in time.
func BusyError(resource string) *UseCaseError {
	return ConflictError(ErrCodeBusy, "Resource is being modified, retry later", map[string]any{"resource": resource})
}

// RateLimitedError reports too many attempts in a short window.
func RateLimitedError(code, message string) *UseCaseError {
	return newError(ErrorKindRateLimited, code, message, nil)
}

// InternalError creates a new internal error.
func InternalError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindInternal, code, message, details)
}

// Common error codes for reuse across use cases
const (
	// Validation error codes
	ErrCodeRequired        = "REQUIRED"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeInvalidEmail    = "INVALID_EMAIL"
	ErrCodeInvalidPassword = "INVALID_PASSWORD"

	// Conflict error codes
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeRoleInUse          = "ROLE_IN_USE"
	ErrCodeEnterpriseInactive = "ENTERPRISE_INACTIVE"
	ErrCodeCommitFailed       = "COMMIT_FAILED"
	ErrCodeBusy               = "RESOURCE_BUSY"

	// Reference and lookup error codes
	ErrCodeUnknownFeature     = "UNKNOWN_FEATURE"
	ErrCodeRoleNotFound       = "ROLE_NOT_FOUND"
	ErrCodeGrantNotFound      = "GRANT_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEnterpriseNotFound = "ENTERPRISE_NOT_FOUND"

	// Identity and capability error codes
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeAccessDenied       = "ACCESS_DENIED"
	ErrCodeNotTenantAdmin     = "NOT_TENANT_ADMIN"
	ErrCodeExceedsAdmin       = "CAPABILITY_EXCEEDS_ADMIN"
	ErrCodeReservedFeature    = "RESERVED_FEATURE"
	ErrCodeThrottled          = "THROTTLED"

	ErrCodeInternal = "INTERNAL_ERROR"
)
