// Package apperror defines the error taxonomy shared by the service and handler layers.
//
// Services return *AppError values that wrap one of the sentinels below.
// Handlers never inspect messages; they call errors.Is against the sentinels
// and pick a status code (see handler/response.go).
package apperror

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
	ErrInternal     = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // message shown to the client
	Field   string // optional: field causing the error
	Cause   error  // optional: underlying error (upstream failures)
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so
// errors.Is(err, ErrUpstream) and errors.Is(err, context.DeadlineExceeded)
// both work on an upstream failure.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is used for failed logins and missing sessions. The message must
// not reveal which credential was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream wraps a failure of an external collaborator (the metadata provider).
// The client sees the underlying message.
func Upstream(cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// Internal replaces a store failure with a fixed client message while keeping
// the cause for logs and errors.Is.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
		Cause:   cause,
	}
}
