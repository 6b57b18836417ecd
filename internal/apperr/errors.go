// Package apperr defines the error taxonomy shared by repositories, services
// and the HTTP layer. Handlers map these onto status codes; everything else
// wraps them with %w and context.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both "does not exist" and "exists but belongs to someone
// else". The two cases are deliberately indistinguishable so that resource IDs
// of other users cannot be probed.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or ill-formed request field, including
// references to categories or parent tasks the caller does not own.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a uniqueness violation, e.g. a duplicate category
// name for the same owner.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}

// TransactionError means the atomic credit-and-complete unit could not
// commit. Nothing was applied; the request may be retried safely.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
