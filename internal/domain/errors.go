package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var ErrNotFound = errors.New("flight not found")

// FieldViolation is one rejected input field. Field is empty for
// violations that concern the request as a whole.
type FieldViolation struct {
	Field   string
	Message string
}

func (v *FieldViolation) Error() string {
	return v.Message
}

// ValidationError carries every violation found in one input.
type ValidationError struct {
	errs *multierror.Error
}

// NewValidationError builds an error from request-level messages.
func NewValidationError(messages ...string) *ValidationError {
	e := &ValidationError{}
	for _, msg := range messages {
		e.Add("", msg)
	}
	return e
}

func (e *ValidationError) Add(field, message string) {
	e.errs = multierror.Append(e.errs, &FieldViolation{Field: field, Message: message})
	e.errs.ErrorFormat = joinViolations
}

// Merge appends the violations of other, skipping fields e already reports.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil || other.errs == nil {
		return
	}
	for _, err := range other.errs.Errors {
		var fv *FieldViolation
		if errors.As(err, &fv) && fv.Field != "" && e.HasField(fv.Field) {
			continue
		}
		e.errs = multierror.Append(e.errs, err)
		e.errs.ErrorFormat = joinViolations
	}
}

func (e *ValidationError) HasField(field string) bool {
	if e.errs == nil {
		return false
	}
	for _, err := range e.errs.Errors {
		var fv *FieldViolation
		if errors.As(err, &fv) && fv.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) Len() int {
	if e.errs == nil {
		return 0
	}
	return len(e.errs.Errors)
}

// ErrorOrNil returns nil when nothing was reported.
func (e *ValidationError) ErrorOrNil() error {
	if e == nil || e.Len() == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Violations() []string {
	if e.errs == nil {
		return nil
	}
	out := make([]string, 0, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		out = append(out, err.Error())
	}
	return out
}

func (e *ValidationError) Error() string {
	if e.errs == nil {
		return "Validation error"
	}
	return "Validation error: " + e.errs.Error()
}

func (e *ValidationError) Unwrap() error {
	if e.errs == nil {
		return nil
	}
	return e.errs
}

func joinViolations(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, ", ")
}

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return "Flight not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError is a store failure. Op is the message shown to clients
// when details must not leak.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PublicMessage returns the client-facing text; verbose includes the cause.
func (e *PersistenceError) PublicMessage(verbose bool) string {
	if verbose && e.Err != nil {
		return e.Error()
	}
	return e.Op
}

// CacheDegradedError marks a cache failure that was absorbed.
type CacheDegradedError struct {
	Op  string
	Err error
}

func (e *CacheDegradedError) Error() string {
	return fmt.Sprintf("cache %s degraded: %v", e.Op, e.Err)
}

func (e *CacheDegradedError) Unwrap() error {
	return e.Err
}
