// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps function names to the local [Function] that serves them.
// Names are unique. A Registry is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Function
}

// NewRegistry creates a Registry holding fns.
func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{fns: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds fn under its name. It returns an error wrapping
// [ErrDuplicateFunction] if the name is taken.
func (r *Registry) Register(fn Function) error {
	name := fn.Name()
	if name == "" {
		return fmt.Errorf("%w: function name is empty", ErrTool)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fns[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFunction, name)
	}
	r.fns[name] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns)
}

// Functions returns the registered functions sorted by name.
func (r *Registry) Functions() []Function {
	r.mu.RLock()
	out := make([]Function, 0, len(r.fns))
	for _, fn := range r.fns {
		out = append(out, fn)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Definitions returns the declarations of all registered functions, sorted
// by name, for use when creating an agent.
func (r *Registry) Definitions() []FunctionDefinition {
	fns := r.Functions()
	defs := make([]FunctionDefinition, len(fns))
	for i, fn := range fns {
		defs[i] = Define(fn)
	}
	return defs
}
