package animator

import (
	"runtime"
	"sync"
	"weak"

	"github.com/zeusync/posekit/internal/core/events/bus"
)

// Cache keeps one Animator per live model instance. Models are held weakly:
// once the garbage collector reclaims a model its entry disappears on its own.
// Clear drops everything and must run whenever part structure may have changed.
type Cache[T any] struct {
	rigOf func(*T) Rig

	mu      sync.Mutex
	entries map[weak.Pointer[T]]*cacheEntry
}

type cacheEntry struct {
	animator *Animator
	cleanup  runtime.Cleanup
}

// NewCache creates a cache that builds animators from rigOf(model).
func NewCache[T any](rigOf func(*T) Rig) *Cache[T] {
	return &Cache[T]{
		rigOf:   rigOf,
		entries: make(map[weak.Pointer[T]]*cacheEntry),
	}
}

// GetOrCreate returns the animator of model, building it on first use.
func (c *Cache[T]) GetOrCreate(model *T) *Animator {
	if model == nil {
		return New(nil)
	}
	key := weak.Make(model)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.animator
	}

	e := &cacheEntry{animator: New(c.rigOf(model))}
	e.cleanup = runtime.AddCleanup(model, c.evict, key)
	c.entries[key] = e
	return e.animator
}

// Clear drops every cached animator.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		e.cleanup.Stop()
		delete(c.entries, key)
	}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ClearOnReload subscribes Clear to clip reload events.
func (c *Cache[T]) ClearOnReload(b bus.EventBus) (bus.Subscription, error) {
	return b.Subscribe(bus.TypeClipsReloaded, func(bus.Event) error {
		c.Clear()
		return nil
	})
}

func (c *Cache[T]) evict(key weak.Pointer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
