package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrInvalidRating marks a rating outside {1..4}. Fatal to the one item
	// it was submitted for; other items in a batch proceed.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrUnknownItem marks a reference to an item that does not exist.
	ErrUnknownItem = errors.New("unknown item")

	// ErrSessionUnavailable marks a placement session that is missing,
	// already completed, or owned by another learner.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrNoPlacementItems marks an empty placement candidate pool at
	// session start.
	ErrNoPlacementItems = errors.New("no placement items")

	// ErrStorageUnavailable marks a transient storage failure. The core
	// never retries; callers may.
	ErrStorageUnavailable = errors.New("storage unavailable")
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
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
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
