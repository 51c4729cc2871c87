// Package errors defines the error taxonomy surfaced by the Libris API.
// Every error leaving a service is one of these kinds; the HTTP layer maps
// kinds to status codes without inspecting messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for boundary mapping.
type Kind string

const (
	KindInvalidCredentials   Kind = "invalid_credentials"
	KindUnauthorized         Kind = "unauthorized"
	KindInvalidSession       Kind = "invalid_session"
	KindSessionLimitExceeded Kind = "session_limit_exceeded"
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindInternal             Kind = "internal_error"
)

// HTTPStatus returns the status code a kind maps to at the HTTP boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidCredentials, KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidSession, KindSessionLimitExceeded:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a kind-tagged error. The message is safe to return to clients;
// the wrapped cause is for server-side logs only.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewInvalidCredentials returns the login failure error. The message never
// distinguishes an unknown email from a wrong password.
func NewInvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidSession marks a refresh token that verifies cryptographically
// but has no matching live session.
func NewInvalidSession() *Error {
	return &Error{Kind: KindInvalidSession, Message: "no active session for this token"}
}

func NewSessionLimitExceeded() *Error {
	return &Error{Kind: KindSessionLimitExceeded, Message: "active session limit reached"}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewInternal wraps a store or unexpected failure. The client sees only the
// generic message; cause stays server-side.
func NewInternal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// FieldError describes one failed constraint of a validation pass.
type FieldError struct {
	Fields     []string `json:"fields"`
	Constraint string   `json:"constraint"`
}

// ValidationError aggregates field-level constraint violations found while
// validating a request payload.
type ValidationError struct {
	Entries []FieldError `json:"entries"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d field errors)", len(e.Entries))
}

// Add records a failed constraint and returns the receiver for chaining.
func (e *ValidationError) Add(constraint string, fields ...string) *ValidationError {
	e.Entries = append(e.Entries, FieldError{Fields: fields, Constraint: constraint})
	return e
}

// Empty reports whether the validation pass recorded no violations.
func (e *ValidationError) Empty() bool { return len(e.Entries) == 0 }

// KindOf extracts the taxonomy kind of err. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}
	return KindInternal
}
