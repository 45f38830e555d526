package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TaskExecution captures all information about one task execution for audit
// logging. This provides an audit trail for every workflow task run against
// a Google account.
//
// # Privacy Considerations
//
// The Account field may contain an email address. When logging, consider:
//   - Using AccountDomain() to get only the domain for metrics/general logs
//   - Only logging the full account in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type TaskExecution struct {
	// Task name, e.g. "gmail.send"
	Task string

	// ExecutionID correlates all tasks of one workflow execution
	ExecutionID string

	// Trigger is the trigger name when the execution was started by one
	Trigger string

	// Target information for Google services
	Account     string // Account name (default, work, personal)
	ServiceName string // Google service (calendar, drive, sheets, gmail, chat)
	Operation   string // Operation type (list, get, create, update, delete, send)

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// AccountDomain returns the domain portion of the account for
// lower-cardinality logging when the account is an email address.
func (te *TaskExecution) AccountDomain() string {
	return ExtractUserDomain(te.Account)
}

// Status returns "success" or "error" based on the Success field.
func (te *TaskExecution) Status() string {
	if te.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all task execution logs.
func (te *TaskExecution) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("task", te.Task),
		slog.Duration("duration", te.Duration),
		slog.Bool("success", te.Success),
	}

	// Add optional fields only if present
	if te.ExecutionID != "" {
		attrs = append(attrs, slog.String("execution_id", te.ExecutionID))
	}
	if te.Trigger != "" {
		attrs = append(attrs, slog.String("trigger", te.Trigger))
	}
	if te.Account != "" && te.Account != "default" {
		attrs = append(attrs, slog.String("account", te.Account))
	}
	if te.ServiceName != "" {
		attrs = append(attrs, slog.String("service", te.ServiceName))
	}
	if te.Operation != "" {
		attrs = append(attrs, slog.String("operation", te.Operation))
	}
	if te.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", te.TraceID))
	}
	if te.Error != "" {
		attrs = append(attrs, slog.String("error", te.Error))
	}

	return attrs
}

// NewTaskExecution creates a new TaskExecution with timing started.
// Call Complete() when the task finishes.
func NewTaskExecution(task string) *TaskExecution {
	return &TaskExecution{
		Task:      task,
		StartTime: time.Now(),
	}
}

// WithExecutionID sets the workflow execution identifier.
func (te *TaskExecution) WithExecutionID(id string) *TaskExecution {
	te.ExecutionID = id
	return te
}

// WithTrigger sets the trigger that started the execution.
func (te *TaskExecution) WithTrigger(trigger string) *TaskExecution {
	te.Trigger = trigger
	return te
}

// WithAccount sets the Google account name.
func (te *TaskExecution) WithAccount(account string) *TaskExecution {
	te.Account = account
	return te
}

// WithService sets the Google service and operation.
func (te *TaskExecution) WithService(serviceName, operation string) *TaskExecution {
	te.ServiceName = serviceName
	te.Operation = operation
	return te
}

// WithSpanContext extracts trace context from the current span.
func (te *TaskExecution) WithSpanContext(ctx context.Context) *TaskExecution {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		te.TraceID = span.SpanContext().TraceID().String()
		te.SpanID = span.SpanContext().SpanID().String()
	}
	return te
}

// Complete marks the execution as completed and calculates duration.
// Returns the same TaskExecution for method chaining.
func (te *TaskExecution) Complete(success bool, err error) *TaskExecution {
	te.Duration = time.Since(te.StartTime)
	te.Success = success
	if err != nil {
		te.Error = err.Error()
	}
	return te
}

// CompleteWithError marks the execution as failed with the given error.
func (te *TaskExecution) CompleteWithError(err error) *TaskExecution {
	return te.Complete(false, err)
}

// CompleteSuccess marks the execution as successful.
func (te *TaskExecution) CompleteSuccess() *TaskExecution {
	return te.Complete(true, nil)
}

// AuditLogger provides structured audit logging for task executions.
// It wraps slog.Logger with convenience methods for logging task runs.
type AuditLogger struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogTaskExecution logs a task execution using the standard log attributes.
func (al *AuditLogger) LogTaskExecution(te *TaskExecution) {
	if !al.enabled {
		return
	}

	attrs := te.LogAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if te.Success {
		al.logger.Info("task_executed", args...)
	} else {
		al.logger.Warn("task_failed", args...)
	}
}
