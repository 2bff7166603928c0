// Package apperr holds the error taxonomy shared by the sequencing and
// reconciliation services.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyVoided = errors.New("record is already voided")
	ErrAlreadyClosed = errors.New("day is already closed")
	ErrForbidden     = errors.New("operation not allowed for this role")
)

// ValidationError rejects an operation before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConsistencyError reports a day whose ordinal sequence is not exactly 1..N.
// Recovery is a full renumber of that day.
type ConsistencyError struct {
	Date   time.Time
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ordinal sequence for %s is inconsistent: %s (run a renumber for this date)",
		e.Date.Format(time.DateOnly), e.Detail)
}

// StoreError wraps a failure of the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a *StoreError unless it already carries a taxonomy error.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsDomain(err) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}

// IsDomain reports whether err is one of the package's typed or sentinel errors.
func IsDomain(err error) bool {
	var (
		ve *ValidationError
		ce *ConsistencyError
		se *StoreError
	)

	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &se):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyVoided),
		errors.Is(err, ErrAlreadyClosed), errors.Is(err, ErrForbidden):
		return true
	}

	return false
}

// Required returns a validation error when s is blank.
func Required(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return Invalid(field, "is required")
	}

	return nil
}
