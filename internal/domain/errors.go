package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no active session")
	ErrBusy         = errors.New("operation already in flight")
	ErrStale        = errors.New("stale result discarded")
	ErrDeclined     = errors.New("declined by user")
	ErrUnsupported  = errors.New("operation not supported")
	ErrInvalidState = errors.New("invalid state")
	ErrDeviceDenied = errors.New("device access denied")
	ErrDeviceBusy   = errors.New("device already acquired")
	ErrRemote       = errors.New("remote service error")
	ErrDecode       = errors.New("decode response")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IsQuiet reports whether err should be swallowed instead of shown to the user:
// results discarded after navigation or logout, declined confirmations and
// calls skipped because nobody is logged in.
func IsQuiet(err error) bool {
	return errors.Is(err, ErrStale) || errors.Is(err, ErrDeclined) || errors.Is(err, ErrNoSession)
}
