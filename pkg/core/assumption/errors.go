package assumption

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("required field missing")
	ErrInvalidValue = errors.New("invalid value")
	ErrArrayLength  = errors.New("driver array has wrong length")
)

// ValidationError names the offending input field. Err is one of the
// sentinel errors above so callers can branch with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "required field missing", Err: ErrMissingField}
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: ErrInvalidValue}
}
