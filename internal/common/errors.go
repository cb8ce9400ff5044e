// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrFormat         = errors.New("invalid spreadsheet format")
	ErrColumnNotFound = errors.New("column not found")
	ErrDataNotLoaded  = errors.New("no data loaded")

	// Classification errors.
	ErrNoConstructs      = errors.New("no constructs loaded")
	ErrUnknownClassifier = errors.New("unknown classifier")
	ErrInterrupted       = errors.New("classification interrupted")

	// External service errors.
	ErrExternalService = errors.New("external service call failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ColumnNotFound reports a missing column by name.
func ColumnNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// FormatError wraps a spreadsheet parsing failure with the offending path.
func FormatError(path string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrFormat, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
}

// ExternalServiceError marks err as a failure of the embedding or language-model service.
func ExternalServiceError(service string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalService, service, err)
}

// IsCanceled reports whether err stems from a canceled or interrupted run.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrInterrupted)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
