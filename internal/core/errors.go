package core

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrSchema     = errors.New("schema error")
	ErrStore      = errors.New("store error")
	ErrNotFound   = errors.New("not found")

	ErrInvalidDate   = errors.New("invalid date format (use YYYY-MM-DD)")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingHeader = errors.New("missing required header")
)

// ValidationError describes a single malformed input field.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap exposes both the specific cause and ErrValidation.
func (e *ValidationError) Unwrap() []error {
	return []error{e.Err, ErrValidation}
}
