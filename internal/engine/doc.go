// Package engine defines the surface between flowspace and a workflow
// orchestrator: task registration, per-run execution state, templated
// parameter rendering and retryable task errors.
//
// A task is a named function the orchestrator invokes with an Execution and
// an Input map. String inputs are rendered as Go templates against the
// execution's variable map before the task sees them, so flow definitions can
// reference results of earlier steps:
//
//	args:
//	  calendar_id: "{{ .properties_calendar_id }}"
//	  summary:     "Sync for {{ .trigger_file_name }}"
//
// Task outputs are merged back into the execution variables under the step's
// key prefix, with dots and hyphens folded to underscores.
package engine
