package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned when a request carries no image payload
	ErrNoImage = errors.New("no image provided")
	// ErrUnsupportedImage is returned for uploads that are not jpeg or png
	ErrUnsupportedImage = errors.New("only jpeg, jpg and png images are allowed")
	// ErrImageTooLarge is returned for uploads above the size limit
	ErrImageTooLarge = errors.New("image exceeds the upload size limit")

	// ErrMissingCredential is returned in production when no classifier credential is configured
	ErrMissingCredential = errors.New("classifier credential not configured")
	// ErrUnreachable is returned when the classifier could not be reached or answered with an error status
	ErrUnreachable = errors.New("classifier unreachable")
	// ErrTimeout is returned when the classifier did not answer in time
	ErrTimeout = errors.New("classifier request timed out")
	// ErrInvalidResponse is returned when the classifier body is not a ranked label list
	ErrInvalidResponse = errors.New("invalid classifier response")

	// ErrPoolSaturated is returned when too many callers are already waiting for a connection
	ErrPoolSaturated = errors.New("database connection pool saturated")
	// ErrNotFound is returned when a lookup has no rows
	ErrNotFound = errors.New("record not found")
)

// ErrorCategory distinguishes terminal pipeline failures
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryClassification ErrorCategory = "classification"
	CategoryPersistence    ErrorCategory = "persistence"
	CategoryInternal       ErrorCategory = "internal"
)

// ValidationError rejects a request before any classification or storage work
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// NewValidationError wraps reason as a ValidationError
func NewValidationError(reason error) error {
	return &ValidationError{Reason: reason}
}

// ClassificationError is a failure of the remote classifier. Kind is one of
// ErrMissingCredential, ErrUnreachable, ErrTimeout or ErrInvalidResponse.
type ClassificationError struct {
	Kind     error
	Provider string
	Err      error
}

func (e *ClassificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewClassificationError builds a ClassificationError of the given kind
func NewClassificationError(provider string, kind, err error) error {
	return &ClassificationError{Kind: kind, Provider: provider, Err: err}
}

// PersistenceError is a failure of the analysis store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err as a PersistenceError for op. Existing
// persistence errors are returned unchanged.
func NewPersistenceError(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Categorize reports which stage of the pipeline produced err
func Categorize(err error) ErrorCategory {
	var (
		ve *ValidationError
		ce *ClassificationError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return CategoryValidation
	case errors.As(err, &ce):
		return CategoryClassification
	case errors.As(err, &pe):
		return CategoryPersistence
	default:
		return CategoryInternal
	}
}

// IsRetryable reports whether the caller may retry the same request unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPoolSaturated)
}
