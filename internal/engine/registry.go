package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// TaskFunc is the signature every plugin task implements. The input map has
// already been template-rendered against the execution variables.
type TaskFunc func(ctx context.Context, exec *Execution, in Input) (Output, error)

// Task is a named, registered task.
type Task struct {
	// Name identifies the task in flow definitions, e.g. "calendar.create_event".
	Name string

	// Description is a one-line summary shown by `flowspace tasks`.
	Description string

	// Func executes the task.
	Func TaskFunc
}

// Registry holds the tasks available to the orchestrator.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Task)}
}

// Register adds a task. Registering a name twice is a programming error and
// returns an error rather than silently replacing the earlier task.
func (r *Registry) Register(task Task) error {
	if task.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if task.Func == nil {
		return fmt.Errorf("task %s has no function", task.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.Name]; exists {
		return fmt.Errorf("task %s is already registered", task.Name)
	}
	r.tasks[task.Name] = task
	return nil
}

// MustRegister registers a task and panics on error. Intended for package
// level registration where a failure is a bug.
func (r *Registry) MustRegister(task Task) {
	if err := r.Register(task); err != nil {
		panic(err)
	}
}

// Get returns the task registered under name.
func (r *Registry) Get(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[name]
	return task, ok
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks returns all registered tasks, sorted by name.
func (r *Registry) Tasks() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}

// Run renders the raw input against the execution variables, looks up the
// task and executes it. This is the single entry point an orchestrator needs.
func (r *Registry) Run(ctx context.Context, exec *Execution, name string, raw Input) (Output, error) {
	task, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown task %s", name)
	}

	rendered, err := DefaultRenderer().RenderInput(raw, exec.Variables())
	if err != nil {
		return nil, fmt.Errorf("failed to render parameters for task %s: %w", name, err)
	}

	out, err := task.Func(ctx, exec, rendered)
	if err != nil {
		return nil, err
	}

	exec.MergeOutput(name, out)
	return out, nil
}
