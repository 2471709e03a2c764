// Package transform provides the registry of named value transforms applied
// to raw CSV cells while loading.
//
// A transform is a pure function from a raw string cell to a typed value.
// Mapping rules refer to transforms by name so a mapping table stays plain data.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInvalidValue is wrapped by every error a transform returns for a cell it
// cannot convert. The loader treats it as a row-level failure.
var ErrInvalidValue = errors.New("invalid value")

// Func converts one raw cell into the value stored in the target field.
type Func func(raw string) (any, error)

// Registry maps transform names to functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry pre-loaded with the built-in transforms.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func, len(builtins))}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}
	return r
}

// Register adds or replaces a transform.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Get retrieves a transform by name.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns all registered transform names (sorted).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownTransformError is returned when a rule names a transform that is not registered.
type UnknownTransformError struct {
	Name      string
	Available []string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transform %q (available: %v)", e.Name, e.Available)
}

// Lookup is Get with a descriptive error for unknown names.
func (r *Registry) Lookup(name string) (Func, error) {
	if fn, ok := r.Get(name); ok {
		return fn, nil
	}
	return nil, &UnknownTransformError{Name: name, Available: r.Names()}
}

func invalid(raw, want string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %q is not %s: %v", ErrInvalidValue, raw, want, cause)
	}
	return fmt.Errorf("%w: %q is not %s", ErrInvalidValue, raw, want)
}
