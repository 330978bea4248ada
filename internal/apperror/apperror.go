package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service's failure taxonomy.
//
//   - ErrNotFound:    owner or document absent; terminal, surfaced to the caller.
//   - ErrValidation:  bad input; terminal, surfaced to the caller.
//   - ErrConflict:    a whole-list replace lost its optimistic-concurrency race
//     and the bounded retry budget ran out.
//   - ErrForbidden:   authenticated caller is not the owner of the collection.
//   - ErrUnavailable: the authoritative store is unreachable; retryable by the
//     caller, never retried here beyond the conflict budget.
//
// Cache failures deliberately have NO sentinel — the cache fails open and its
// errors never leave the cache package.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("Validation Error")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
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

// Unavailable wraps a store outage. HTTP handlers map this to 503 so callers
// know the request is safe to retry.
func Unavailable(op string, err error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s: store unavailable: %v", op, err),
	}
}
