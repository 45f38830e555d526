package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTask      = "task"
	attrTrigger   = "trigger"
	attrType      = "type"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthTokenRefreshTotal metric.Int64Counter

	// Task metrics
	taskExecutionsTotal metric.Int64Counter
	taskDuration        metric.Float64Histogram

	// Trigger metrics
	triggerPollsTotal   metric.Int64Counter
	triggerPollDuration metric.Float64Histogram
	triggerEventsTotal  metric.Int64Counter
	activeTriggers      metric.Int64UpDownCounter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	// OAuth Metrics
	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	// Task Metrics
	m.taskExecutionsTotal, err = meter.Int64Counter(
		"task_executions_total",
		metric.WithDescription("Total number of task executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task_executions_total counter: %w", err)
	}

	m.taskDuration, err = meter.Float64Histogram(
		"task_duration_seconds",
		metric.WithDescription("Task execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task_duration_seconds histogram: %w", err)
	}

	// Trigger Metrics
	m.triggerPollsTotal, err = meter.Int64Counter(
		"trigger_polls_total",
		metric.WithDescription("Total number of trigger polls"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trigger_polls_total counter: %w", err)
	}

	m.triggerPollDuration, err = meter.Float64Histogram(
		"trigger_poll_duration_seconds",
		metric.WithDescription("Trigger poll duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trigger_poll_duration_seconds histogram: %w", err)
	}

	m.triggerEventsTotal, err = meter.Int64Counter(
		"trigger_events_total",
		metric.WithDescription("Total number of events fired by triggers"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trigger_events_total counter: %w", err)
	}

	m.activeTriggers, err = meter.Int64UpDownCounter(
		"active_triggers",
		metric.WithDescription("Number of running trigger pollers"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_triggers gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar, drive, sheets, gmail, chat)
//   - operation: Operation type (list, get, create, update, delete, send, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTaskExecution records a task execution with task name, status, and duration.
//
// Parameters:
//   - taskName: Name of the task (e.g., "gmail.send", "calendar.create_event")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the task execution
func (m *Metrics) RecordTaskExecution(ctx context.Context, taskName, status string, duration time.Duration) {
	if m.taskExecutionsTotal == nil || m.taskDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTask, taskName),
		attribute.String(attrStatus, status),
	}

	m.taskExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTaskExecutionWithAccount records a task execution with account info.
// This is the detailed version that includes account information when detailedLabels is enabled.
func (m *Metrics) RecordTaskExecutionWithAccount(ctx context.Context, taskName, status, account string, duration time.Duration) {
	if m.taskExecutionsTotal == nil || m.taskDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTask, taskName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.taskExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTriggerPoll records one poll of a trigger source.
//
// Parameters:
//   - trigger: Configured trigger name
//   - triggerType: Source type (e.g., "drive.file_created")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the poll
func (m *Metrics) RecordTriggerPoll(ctx context.Context, trigger, triggerType, status string, duration time.Duration) {
	if m.triggerPollsTotal == nil || m.triggerPollDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTrigger, trigger),
		attribute.String(attrType, triggerType),
		attribute.String(attrStatus, status),
	}

	m.triggerPollsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.triggerPollDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTriggerEvents records events fired by a trigger.
func (m *Metrics) RecordTriggerEvents(ctx context.Context, trigger, triggerType string, count int64) {
	if m.triggerEventsTotal == nil || count <= 0 {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTrigger, trigger),
		attribute.String(attrType, triggerType),
	}

	m.triggerEventsTotal.Add(ctx, count, metric.WithAttributes(attrs...))
}

// IncrementActiveTriggers increments the active triggers counter.
func (m *Metrics) IncrementActiveTriggers(ctx context.Context) {
	if m.activeTriggers == nil {
		return // Instrumentation not initialized
	}

	m.activeTriggers.Add(ctx, 1)
}

// DecrementActiveTriggers decrements the active triggers counter.
func (m *Metrics) DecrementActiveTriggers(ctx context.Context) {
	if m.activeTriggers == nil {
		return // Instrumentation not initialized
	}

	m.activeTriggers.Add(ctx, -1)
}
