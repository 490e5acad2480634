// Package apperr defines the error kinds surfaced by the API.
//
// Callers wrap these with fmt.Errorf("...: %w", ...) and the HTTP layer maps
// them to status codes with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicate        = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrAlreadyJoined    = errors.New("already joined event")
	ErrRateLimited      = errors.New("rate limited")
)

// ValidationError reports a single invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
