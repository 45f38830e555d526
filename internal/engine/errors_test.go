package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTaskError_RetryHint(t *testing.T) {
	base := errors.New("rate limited")
	err := NewTaskError(base).WithRetryHint(5 * time.Second)

	if !err.Retryable {
		t.Error("expected error to be retryable")
	}
	if err.RetryAfter != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", err.RetryAfter)
	}
	if err.Type != ErrorTypeTransient {
		t.Errorf("Type = %q, want %q", err.Type, ErrorTypeTransient)
	}
	if !errors.Is(err, base) {
		t.Error("TaskError should unwrap to the base error")
	}
}

func TestTaskError_Defaults(t *testing.T) {
	err := NewTaskError(errors.New("bad request"))
	if err.Retryable {
		t.Error("new TaskError should not be retryable by default")
	}
	if err.Type != ErrorTypePermanent {
		t.Errorf("Type = %q, want %q", err.Type, ErrorTypePermanent)
	}
}

func TestIsRetryable(t *testing.T) {
	plain := errors.New("plain")
	if IsRetryable(plain) {
		t.Error("plain errors are not retryable")
	}

	retryable := NewTaskError(plain).WithRetryHint(time.Second)
	if !IsRetryable(retryable) {
		t.Error("expected retryable")
	}

	// Wrapped TaskError is still detected
	wrapped := fmt.Errorf("task gmail.send: %w", retryable)
	if !IsRetryable(wrapped) {
		t.Error("expected retryable through wrapping")
	}
	if RetryAfter(wrapped) != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", RetryAfter(wrapped))
	}
}
