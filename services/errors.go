package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced meal/goal/summary does not
// exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects malformed client input before any external call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidInput(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type EstimationKind string

const (
	// The text-generation provider was unreachable or returned an error.
	EstimationUpstream EstimationKind = "upstream"
	// The provider replied, but the content was not valid JSON or failed
	// schema validation.
	EstimationMalformed EstimationKind = "malformed"
)

// EstimationError is a recoverable provider failure. The caller may retry
// or ask the user to re-enter the description; it is never fatal to the
// process.
type EstimationError struct {
	Kind EstimationKind
	Err  error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("estimation %s: %v", e.Kind, e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

func upstreamErr(format string, args ...any) *EstimationError {
	return &EstimationError{Kind: EstimationUpstream, Err: fmt.Errorf(format, args...)}
}

func malformedErr(format string, args ...any) *EstimationError {
	return &EstimationError{Kind: EstimationMalformed, Err: fmt.Errorf(format, args...)}
}

// notFound maps gorm's sentinel onto the service-level one.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
