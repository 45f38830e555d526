package engine

import (
	"errors"
	"time"
)

// Error categories reported with a TaskError.
const (
	ErrorTypeTransient = "transient"
	ErrorTypePermanent = "permanent"
	ErrorTypeUserError = "user_error"
)

// TaskError wraps a task failure with retry hints for the orchestrator.
// A plain error returned by a task is treated as permanent.
type TaskError struct {
	Err        error
	Retryable  bool
	RetryAfter time.Duration
	Type       string
}

// NewTaskError wraps err in a TaskError. The error defaults to permanent and
// not retryable; use the With* methods to adjust.
func NewTaskError(err error) *TaskError {
	return &TaskError{Err: err, Type: ErrorTypePermanent}
}

// WithRetryHint marks the error retryable and sets the suggested delay.
func (e *TaskError) WithRetryHint(after time.Duration) *TaskError {
	e.Retryable = true
	e.RetryAfter = after
	if e.Type == ErrorTypePermanent {
		e.Type = ErrorTypeTransient
	}
	return e
}

// WithType sets the error category.
func (e *TaskError) WithType(errorType string) *TaskError {
	e.Type = errorType
	return e
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return "task error"
	}
	return e.Err.Error()
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err carries a retryable TaskError hint.
func IsRetryable(err error) bool {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Retryable
	}
	return false
}

// RetryAfter returns the suggested retry delay of err, or zero.
func RetryAfter(err error) time.Duration {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.RetryAfter
	}
	return 0
}
