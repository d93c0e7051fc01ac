package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures. The scoring engine itself favors
// silent defaulting; only genuinely invalid inputs are rejected.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidVehicle  = errors.New("invalid vehicle")
	ErrUnknownFuelType = errors.New("unknown fuel type")
	ErrNegativePrice   = errors.New("price must be non-negative")
	ErrNegativeMiles   = errors.New("annual miles must be non-negative")
	ErrYearOutOfRange  = errors.New("year out of range")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// IsInvalidInput reports whether err is one of the InvalidInput-kind
// rejections surfaced to callers.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownFuelType) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrNegativeMiles)
}
