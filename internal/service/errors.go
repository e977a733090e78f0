package service

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to the transport layer. Validation and
// ownership checks always run before any write; a StoreError means the
// write itself failed and is never retried here.
var (
	// ErrUnauthorized is returned when no caller identity could be resolved.
	ErrUnauthorized = errors.New("caller identity not resolved")

	// ErrForbidden is returned when the caller does not own the target task.
	ErrForbidden = errors.New("task belongs to another user")

	// ErrNotFound is returned when the target task does not exist.
	ErrNotFound = errors.New("task not found")
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a datastore failure. The cause is preserved for
// logging but callers treat it as a generic failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
