package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnregisteredType is returned when a task names a type no handler
// was registered for. Enqueue does not check this; the failure surfaces
// when a worker tries to dispatch the task.
var ErrUnregisteredType = errors.New("unregistered task type")

// Registry maps task type names to handler factories. Registration
// happens once at process startup; lookups happen concurrently from
// worker loops, so the map is guarded by an RWMutex.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]HandlerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]HandlerFactory),
	}
}

// Register associates a task type name with a handler factory.
// Re-registering the same name overwrites silently; last write wins.
func (r *Registry) Register(taskType string, factory HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Handler returns the factory registered for taskType, or an error
// wrapping ErrUnregisteredType when the type is unknown.
func (r *Registry) Handler(taskType string) (HandlerFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, taskType)
	}
	return factory, nil
}

// Types returns the registered task type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
