// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the flowspace automation server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for task executions, trigger polls, and Google API calls
//   - Distributed tracing for trigger cycles and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Task Metrics:
//   - task_executions_total: Counter of task executions by task name and status
//   - task_duration_seconds: Histogram of task execution durations
//
// Trigger Metrics:
//   - trigger_polls_total: Counter of poll cycles by trigger, type, and status
//   - trigger_poll_duration_seconds: Histogram of poll cycle durations
//   - trigger_events_total: Counter of events delivered per trigger
//   - active_triggers: Gauge of currently running trigger pollers
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - Task executions (task.<name>)
//   - Trigger poll cycles (trigger.<name>)
//   - Google API calls (google.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: flowspace)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "flowspace",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a Google API operation
//	recorder.RecordGoogleAPIOperation(ctx, "gmail", "list", "success", time.Since(start))
//
//	// Record a task execution
//	recorder.RecordTaskExecution(ctx, "gmail.send", "success", time.Since(start))
package instrumentation
