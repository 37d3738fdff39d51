package ledger

import (
	"errors"
	"fmt"
)

// ValidationError means the request was well-formed but breaks a business rule.
// Nothing is mutated when it is returned; the caller may retry with other input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError means an ID does not refer to any record in the current state.
type NotFoundError struct {
	Kind string // "trip", "driver", "asset" or "trailer"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
