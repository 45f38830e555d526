package engine

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Input is the map of arguments a task receives after template rendering.
type Input = map[string]any

// Output is the map of results a task returns. Output values are stored in
// the execution variables and can be referenced by later steps.
type Output = map[string]any

// Execution is the per-run state shared by all tasks of a single flow run.
// It carries the variable map that templated parameters render against.
type Execution struct {
	// ID uniquely identifies this run.
	ID string

	// Flow is the name of the flow definition this run belongs to.
	Flow string

	// Account selects the Google account credentials used by tasks in this run.
	Account string

	// StartedAt is when the run began.
	StartedAt time.Time

	logger *slog.Logger

	mu        sync.RWMutex
	variables map[string]any
}

// NewExecution creates an execution for the named flow with a fresh ID.
// A nil logger falls back to slog.Default().
func NewExecution(flow, account string, logger *slog.Logger) *Execution {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Execution{
		ID:        id,
		Flow:      flow,
		Account:   account,
		StartedAt: time.Now(),
		logger:    logger.With(slog.String("execution_id", id)),
		variables: make(map[string]any),
	}
}

// Logger returns the execution-scoped logger.
func (e *Execution) Logger() *slog.Logger {
	return e.logger
}

// SetVariable stores a single variable. The key is normalized with FormatKey.
func (e *Execution) SetVariable(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[FormatKey(key)] = value
}

// Variable returns the variable stored under the normalized key.
func (e *Execution) Variable(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.variables[FormatKey(key)]
	return v, ok
}

// MergeOutput stores every entry of a task output under prefix_key.
// A step "fetch-file" returning {"id": ...} yields the variable fetch_file_id.
func (e *Execution) MergeOutput(prefix string, out Output) {
	if len(out) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range out {
		e.variables[FormatKey(prefix+"_"+k)] = v
	}
}

// Variables returns a copy of the variable map. The copy is safe to hand to
// the template renderer while tasks keep writing.
func (e *Execution) Variables() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	snapshot := make(map[string]any, len(e.variables))
	for k, v := range e.variables {
		snapshot[k] = v
	}
	return snapshot
}

// FormatKey normalizes a variable key: dots and hyphens become underscores so
// flow step IDs like "fetch-data" and task names like "drive.upload" produce
// addressable template identifiers.
func FormatKey(key string) string {
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}
