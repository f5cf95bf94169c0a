package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-readable error category returned to API clients.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindSeatConflict      Kind = "seat_conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

// AppError carries an HTTP status, a machine error kind, and a user-facing
// message. The wrapped error is logged but never exposed to clients.
type AppError struct {
	Code    int
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code, kind and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message, Err: err}
}

// Validation returns a 400 validation error.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message)
}

// SeatConflict returns a 400 conflict error naming the unavailable seats.
func SeatConflict(seats []string) *AppError {
	return New(http.StatusBadRequest, KindSeatConflict,
		fmt.Sprintf("seats not available: %s", strings.Join(seats, ", ")))
}

// InvalidTransition returns a 400 error for an illegal state change.
func InvalidTransition(message string) *AppError {
	return New(http.StatusBadRequest, KindInvalidTransition, message)
}

// Forbidden returns a 403 error.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindForbidden, message)
}

// NotFound returns a 404 error.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message)
}

// Internal wraps an unexpected error as a 500 with a generic message.
func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, KindInternal, "Something went wrong")
}

// From extracts an *AppError from err, or wraps it as Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
