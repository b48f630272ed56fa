package keyframe

import (
	"fmt"
	"sync"
)

// Registry maps unique names to pure functions. Registration is serialized;
// lookups take a read lock and are safe from any goroutine.
type Registry[F any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]F
	order   []string
}

func newRegistry[F any](kind string) *Registry[F] {
	return &Registry[F]{
		kind:    kind,
		entries: make(map[string]F),
	}
}

// Register adds fn under name. A name can be registered once.
func (r *Registry[F]) Register(name string, fn F) error {
	if name == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateName, r.kind, name)
	}
	r.entries[name] = fn
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for init-time tables; it panics on error.
func (r *Registry[F]) MustRegister(name string, fn F) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry[F]) Lookup(name string) (F, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.entries[name]
	return fn, ok
}

// Names returns registered names in registration order.
func (r *Registry[F]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry[F]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
