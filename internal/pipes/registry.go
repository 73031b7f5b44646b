package pipes

import (
	"fmt"
	"sort"
	"sync"
)

// UnknownStageError is returned when a pipeline references a stage
// that was never registered. A lookup miss at execution time is a
// configuration bug, not a recoverable condition.
type UnknownStageError struct {
	Namespace string
	Name      string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown pipe %q in pipeline %q", e.Name, e.Namespace)
}

// IsUnknownStage returns true if err is an UnknownStageError.
func IsUnknownStage(err error) bool {
	_, ok := err.(*UnknownStageError)
	return ok
}

// ConfigInvalidError is returned when a pipe rejects its own
// configuration at check time.
type ConfigInvalidError struct {
	Namespace string
	Name      string
	Err       error
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("invalid config for pipe %q in pipeline %q: %v", e.Name, e.Namespace, e.Err)
}

func (e *ConfigInvalidError) Unwrap() error { return e.Err }

// Registry maps (pipeline namespace, short stage name) to loaded pipe
// implementations. Namespaces keep independent pipelines from
// shadowing each other's short names.
//
// The registry has an explicit lifecycle: create it at process start,
// register pipes during setup, then treat it as an immutable lookup
// table during execution.
type Registry struct {
	mu    sync.RWMutex
	pipes map[string]map[string]Pipe
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pipes: make(map[string]map[string]Pipe),
	}
}

// Register inserts p under (namespace, name). Re-registration is not
// an error: the last registration wins, which lets tests override
// builtin pipes.
func (r *Registry) Register(namespace, name string, p Pipe) {
	if namespace == "" {
		panic("pipes: namespace cannot be empty")
	}
	if name == "" {
		panic("pipes: pipe name cannot be empty")
	}
	if p == nil {
		panic(fmt.Sprintf("pipes: pipe %q cannot be nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.pipes[namespace]
	if !ok {
		ns = make(map[string]Pipe)
		r.pipes[namespace] = ns
	}
	ns[name] = p
}

// Resolve returns the pipe registered under (namespace, name).
func (r *Registry) Resolve(namespace, name string) (Pipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pipes[namespace][name]
	if !ok {
		return nil, &UnknownStageError{Namespace: namespace, Name: name}
	}
	return p, nil
}

// CheckConfig resolves the pipe under (namespace, name) and asks it to
// validate cfg.
func (r *Registry) CheckConfig(namespace, name string, cfg Config) error {
	p, err := r.Resolve(namespace, name)
	if err != nil {
		return err
	}
	if err := p.CheckConfig(cfg); err != nil {
		return &ConfigInvalidError{Namespace: namespace, Name: name, Err: err}
	}
	return nil
}

// Names returns the short names registered in namespace, sorted.
func (r *Registry) Names(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.pipes[namespace]))
	for name := range r.pipes[namespace] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
