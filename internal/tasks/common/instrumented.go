package common

import (
	"context"
	"time"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
)

// InstrumentedTask wraps a task function with metrics and audit logging.
// It records task execution metrics, Google API operation metrics, and logs
// the execution for audit purposes.
//
// Usage:
//
//	registry.Register(engine.Task{
//		Name: "gmail.send",
//		Func: common.InstrumentedTask("gmail.send", "gmail", "send", sc, handler),
//	})
func InstrumentedTask(
	taskName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	fn engine.TaskFunc,
) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		// Metrics and audit logger may be nil if not configured
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the task
		if metrics == nil && auditLogger == nil {
			return fn(ctx, exec, in)
		}

		// Start timing and create the execution record
		start := time.Now()
		record := instrumentation.NewTaskExecution(taskName).
			WithSpanContext(ctx).
			WithService(serviceName, operation)
		if exec != nil {
			record.WithExecutionID(exec.ID)
		}
		if account := Account(exec, in); account != "" {
			record.WithAccount(account)
		}

		// Call the actual task
		out, err := fn(ctx, exec, in)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			record.CompleteWithError(err)
		} else {
			record.CompleteSuccess()
		}

		// Record metrics
		if metrics != nil {
			metrics.RecordTaskExecution(ctx, taskName, status, duration)

			// The service/operation pair gives per-API visibility on top of
			// the per-task counters
			if serviceName != "" {
				metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
			}
		}

		// Log audit
		if auditLogger != nil {
			auditLogger.LogTaskExecution(record)
		}

		return out, err
	}
}
