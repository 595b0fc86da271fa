// Package apperr provides coded domain errors shared by services and handlers.
//
// Services return *Error values (or wrap them); handlers map them to HTTP
// responses with HTTPStatus and render Details as field-level messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeValidation      Code = "VALIDATION"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
// Signup identity conflicts are reported as 400, like any other bad input.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeConflict:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional field details.
type Error struct {
	Code    Code                `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "authentication credentials were not provided"}
	ErrForbidden       = &Error{Code: CodeForbidden, Message: "you do not have permission to perform this action"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict        = &Error{Code: CodeConflict, Message: "conflict"}
	ErrTooManyRequests = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrUnavailable     = &Error{Code: CodeUnavailable, Message: "service unavailable"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationField reports a single invalid field.
func ValidationField(field, msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: map[string][]string{field: {msg}}}
}

// ValidationDetails reports several invalid fields at once.
func ValidationDetails(details map[string][]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Details: details}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func TooManyRequests(msg string) *Error {
	return &Error{Code: CodeTooManyRequests, Message: msg}
}

func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// Internal wraps an unexpected failure; the cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: err}
}

// From returns the *Error in err's chain, or wraps err as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
