package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context, detailedLabels bool) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
		DetailedLabels:  detailedLabels,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newTestProvider(t, ctx, false)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/healthz", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/readyz", 500, 50*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordGoogleAPIOperation(ctx, ServiceGmail, "list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, "create", StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceSheets, "read", StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordOAuthTokenRefresh(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultFailure)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultExpired)
}

func TestMetrics_RecordTaskExecution(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordTaskExecution(ctx, "gmail.send", StatusSuccess, 100*time.Millisecond)
	metrics.RecordTaskExecution(ctx, "calendar.create_event", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordTaskExecutionWithAccount(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic - account label is omitted without detailed labels
	metrics.RecordTaskExecutionWithAccount(ctx, "gmail.send", StatusSuccess, "user@example.com", 100*time.Millisecond)
}

func TestMetrics_RecordTaskExecutionWithAccount_DetailedLabels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, true).Metrics()

	// Should not panic - account domain is included
	metrics.RecordTaskExecutionWithAccount(ctx, "gmail.send", StatusSuccess, "user@example.com", 100*time.Millisecond)
}

func TestMetrics_RecordTriggerPoll(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordTriggerPoll(ctx, "new-invoices", "drive.file_created", StatusSuccess, 200*time.Millisecond)
	metrics.RecordTriggerPoll(ctx, "inbox-watch", "gmail.mail_received", StatusError, 2*time.Second)
}

func TestMetrics_RecordTriggerEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordTriggerEvents(ctx, "new-invoices", "drive.file_created", 3)
	metrics.RecordTriggerEvents(ctx, "new-invoices", "drive.file_created", 0)
}

func TestMetrics_ActiveTriggers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.IncrementActiveTriggers(ctx)
	metrics.IncrementActiveTriggers(ctx)
	metrics.DecrementActiveTriggers(ctx)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/healthz", 200, 100*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceGmail, "list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordTaskExecution(ctx, "gmail.send", StatusSuccess, 100*time.Millisecond)
	metrics.RecordTaskExecutionWithAccount(ctx, "gmail.send", StatusSuccess, "user@example.com", 100*time.Millisecond)
	metrics.RecordTriggerPoll(ctx, "inbox-watch", "gmail.mail_received", StatusSuccess, 100*time.Millisecond)
	metrics.RecordTriggerEvents(ctx, "inbox-watch", "gmail.mail_received", 1)
	metrics.IncrementActiveTriggers(ctx)
	metrics.DecrementActiveTriggers(ctx)
}
