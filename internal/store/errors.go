package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get, Update and Delete when the requested
// entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ValidationError is a rejected request: the reason is human-readable and
// nothing was written to disk.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
