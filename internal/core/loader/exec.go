package loader

import (
	"context"
	"sync"
)

// Executor runs the commit step of a reload on the goroutine that reads clips.
type Executor interface {
	Execute(fn func())
}

// Immediate runs commits inline on the reloading goroutine.
type Immediate struct{}

func (Immediate) Execute(fn func()) { fn() }

// FrameQueue defers commits until the consumer calls Drain, typically once per
// frame before evaluating animations.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) Execute(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len reports how many commits are waiting.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs queued work in submission order and returns how many ran.
func (q *FrameQueue) Drain() int {
	q.mu.Lock()
	work := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range work {
		fn()
	}
	return len(work)
}

// Barrier blocks a reload between parsing and commit until the host says it
// is safe to apply.
type Barrier interface {
	Wait(ctx context.Context) error
}

// BarrierFunc adapts a function to Barrier.
type BarrierFunc func(ctx context.Context) error

func (f BarrierFunc) Wait(ctx context.Context) error { return f(ctx) }

// NoBarrier lets every reload through.
var NoBarrier Barrier = BarrierFunc(func(ctx context.Context) error { return ctx.Err() })
