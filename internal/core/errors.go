package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatPolicy     ErrorCategory = "policy"     // Guarded refusal, not a fault
	ErrCatAuth       ErrorCategory = "auth"       // Authentication/permission failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatConflict   ErrorCategory = "conflict"   // Server rejected a conflicting write
	ErrCatRateLimit  ErrorCategory = "rate_limit" // API rate limited
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatState      ErrorCategory = "state"      // Local state conflict/staleness
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrPolicy creates a policy refusal. Policy errors mean a guard
// declined the operation before any network call was made; callers
// surface them as notices, not failures.
func ErrPolicy(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatPolicy,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrAuth creates an authentication error.
func ErrAuth(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatAuth,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// ErrConflict creates a conflict error.
func ErrConflict(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatConflict,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRateLimit,
		Code:      "RATE_LIMITED",
		Message:   message,
		Retryable: true,
	}
}

// ErrNetwork creates a network error.
func ErrNetwork(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNetwork,
		Code:      "NETWORK_FAILED",
		Message:   message,
		Retryable: true,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "TIMEOUT",
		Message:   message,
		Retryable: true,
	}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrInternal creates an internal error.
func ErrInternal(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatInternal,
		Code:      "INTERNAL",
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// IsPolicyRefusal reports whether the error is a guard declining an
// operation rather than something going wrong.
func IsPolicyRefusal(err error) bool {
	return IsCategory(err, ErrCatPolicy)
}

// IsNotFound reports whether the error is a missing-resource error.
func IsNotFound(err error) bool {
	return IsCategory(err, ErrCatNotFound)
}

// Predefined error codes
const (
	CodeApplyDisabled        = "APPLY_DISABLED"
	CodeClusterNotSafe       = "CLUSTER_NOT_SAFE"
	CodeClusterNotFound      = "CLUSTER_NOT_FOUND"
	CodeReviewBusy           = "REVIEW_BUSY"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodePermissionRequired   = "MANAGE_AI_SETTINGS_REQUIRED"
	CodeModeNotShadowOnly    = "MODE_NOT_SHADOW_ONLY"
	CodeModeNotLoaded        = "MODE_NOT_LOADED"
	CodeStaleWorkspace       = "STALE_WORKSPACE"

	// Validation error codes
	CodeMissingWorkspace = "MISSING_WORKSPACE"
	CodeMissingEventID   = "MISSING_EVENT_ID"
	CodeInvalidLimit     = "INVALID_LIMIT"
	CodeInvalidMode      = "INVALID_MODE"
	CodeEmptyPatch       = "EMPTY_PATCH"

	// Transport error codes
	CodeBadResponse = "BAD_RESPONSE"
	CodeServerError = "SERVER_ERROR"
	CodeForbidden   = "FORBIDDEN"
)
