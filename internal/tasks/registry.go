// Package tasks holds the named, zero-argument operations the CLI exposes
// outside the configuration pass (currently just "clean").
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Task is a zero-argument operation.
type Task func(ctx context.Context) error

// Registry maps task names to tasks.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry creates a new empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Task)}
}

// Register adds a task. Registering the same name twice is an error.
func (r *Registry) Register(name string, task Task) error {
	if name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if task == nil {
		return fmt.Errorf("cannot register nil task %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}
	r.tasks[name] = task
	return nil
}

// Run executes the named task.
func (r *Registry) Run(ctx context.Context, name string) error {
	r.mu.RLock()
	task, ok := r.tasks[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("task %q not found", name)
	}
	return task(ctx)
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
