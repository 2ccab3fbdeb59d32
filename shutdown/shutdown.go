// Package shutdown is a process-exit registry of flush/teardown callbacks.
// Providers register themselves here so buffered telemetry is flushed
// best-effort at termination even when the caller forgets an explicit
// shutdown. Registration is explicit and testable; nothing hooks the runtime
// behind the caller's back — the program decides when Run executes (usually
// after signal.NotifyContext fires).
package shutdown

import (
	"context"
	"errors"
	"sync"
)

// Hook is a teardown callback. Hooks must be idempotent: an explicit
// provider shutdown followed by Run must execute the underlying teardown
// exactly once, and the hooks themselves carry that guard.
type Hook func(ctx context.Context) error

// Registry holds registered hooks and runs them once, in reverse
// registration order.
type Registry struct {
	mu    sync.Mutex
	hooks []*entry
	ran   bool
}

type entry struct {
	fn      Hook
	removed bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a hook and returns a function that removes it again.
// Removing an already-removed hook is a no-op.
func (r *Registry) Register(fn Hook) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{fn: fn}
	r.hooks = append(r.hooks, e)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		e.removed = true
	}
}

// Run executes every registered hook in reverse registration order and joins
// their errors. Only the first call runs anything; later calls return nil.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return nil
	}
	r.ran = true
	// The removed flags are owned by the mutex; snapshot the surviving hooks
	// before releasing it. A removal that lands after the snapshot runs its
	// hook anyway, which is safe because hooks are idempotent.
	hooks := make([]Hook, 0, len(r.hooks))
	for _, e := range r.hooks {
		if !e.removed {
			hooks = append(hooks, e.fn)
		}
	}
	r.mu.Unlock()

	var err error
	for i := len(hooks) - 1; i >= 0; i-- {
		err = errors.Join(err, hooks[i](ctx))
	}
	return err
}

var std = NewRegistry()

// Register adds a hook to the process-wide registry.
func Register(fn Hook) (remove func()) {
	return std.Register(fn)
}

// Run executes the process-wide registry once.
func Run(ctx context.Context) error {
	return std.Run(ctx)
}
