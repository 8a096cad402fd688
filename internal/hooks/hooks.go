// Package hooks holds the callback table used by the response layer. Monitor
// hooks contribute values to the envelope's monitor map; pre-request hooks
// attach values to the request before the view runs. Hooks are registered
// by name at startup and bound to configuration keys once.
package hooks

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// ErrSkip is the signal a hook returns to say it has nothing to contribute.
// It is logged and swallowed, never escalated.
var ErrSkip = errors.New("hook skipped")

// SkipError carries the reason a hook skipped.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return "hook skipped: " + e.Reason }

// Is makes errors.Is(err, ErrSkip) true for every SkipError.
func (e *SkipError) Is(target error) bool { return target == ErrSkip }

// Skip returns a SkipError with the given reason.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// SkipReason extracts the reason of a skip signal.
func SkipReason(err error) string {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason
	}
	return err.Error()
}

// PassKey is the log-message code recorded when a hook skips.
const PassKey = "pass"

// PassText renders the log message recorded when hook skipped with err.
func PassText(hook string, err error) string {
	return fmt.Sprintf("message:%s, hook: %s", SkipReason(err), hook)
}

// Func computes a value for the current request.
type Func func(r *http.Request) (any, error)

// Registry maps hook names to functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds fn under name. Names must be unique.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return errors.New("hook name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("hook %q: function cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("hook %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister is like Register but panics on error. Intended for startup
// wiring only.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		// ALLOW-PANIC: startup wiring error
		panic(err)
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Binding ties a configuration key to a registered hook.
type Binding struct {
	Key  string
	Hook string
	Fn   Func
}

// Bind resolves key → hook name pairs against the registry. Bindings are
// returned sorted by key so that hooks run in a stable order.
func (r *Registry) Bind(pairs map[string]string) ([]Binding, error) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bindings := make([]Binding, 0, len(keys))
	for _, key := range keys {
		name := pairs[key]
		fn, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("key %q: hook %q is not registered", key, name)
		}
		bindings = append(bindings, Binding{Key: key, Hook: name, Fn: fn})
	}
	return bindings, nil
}

// Resolved is the immutable hook table used while serving requests.
type Resolved struct {
	Monitor    []Binding
	PreRequest []Binding
}

// Resolve binds the monitor and pre-request configuration once.
func (r *Registry) Resolve(monitor, preRequest map[string]string) (*Resolved, error) {
	m, err := r.Bind(monitor)
	if err != nil {
		return nil, fmt.Errorf("failed to bind monitor hooks: %w", err)
	}
	p, err := r.Bind(preRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to bind pre-request hooks: %w", err)
	}
	return &Resolved{Monitor: m, PreRequest: p}, nil
}
