package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrUnknownStatus = errors.New("unknown status")
)

// StoreError wraps a failed repository operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError carries a user-facing message for a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string { return fmt.Sprintf("unknown status %q", e.Value) }

func (e *UnknownStatusError) Is(target error) bool { return target == ErrUnknownStatus }
