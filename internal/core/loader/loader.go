package loader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/posekit/internal/core/clip"
	"github.com/zeusync/posekit/internal/core/events/bus"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/core/resource"
	"github.com/zeusync/posekit/pkg/concurrent"
)

// Table is an immutable snapshot of loaded clips.
type Table struct {
	generation uint64
	clips      map[resource.Identifier]*clip.Clip
}

func newTable(generation uint64, clips map[resource.Identifier]*clip.Clip) *Table {
	if clips == nil {
		clips = make(map[resource.Identifier]*clip.Clip, 1)
	}
	clips[playback.BlankID] = clip.Blank()
	return &Table{generation: generation, clips: clips}
}

func (t *Table) Clip(id resource.Identifier) (*clip.Clip, bool) {
	c, ok := t.clips[id]
	return c, ok
}

func (t *Table) Len() int { return len(t.clips) }

func (t *Table) Generation() uint64 { return t.generation }

// IDs returns every identifier, sorted.
func (t *Table) IDs() []resource.Identifier {
	out := make([]resource.Identifier, 0, len(t.clips))
	for id := range t.clips {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Loader owns the live clip table. Readers call Clip without locking; Reload
// builds a complete new table off the reading goroutine and swaps it in with a
// single pointer store.
type Loader struct {
	source   Source
	parser   *Parser
	log      log.Log
	bus      bus.EventBus
	workers  int
	barrier  Barrier
	executor Executor

	table      atomic.Pointer[Table]
	generation atomic.Uint64
	reloading  sync.Mutex
}

var _ playback.Library = (*Loader)(nil)

type Option func(*Loader)

func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithLogger(logger log.Log) Option {
	return func(l *Loader) { l.log = logger }
}

// WithBus publishes bus.TypeClipsReloaded after every commit.
func WithBus(b bus.EventBus) Option {
	return func(l *Loader) { l.bus = b }
}

func WithBarrier(b Barrier) Option {
	return func(l *Loader) { l.barrier = b }
}

// WithExecutor selects where commits run; see FrameQueue.
func WithExecutor(e Executor) Option {
	return func(l *Loader) { l.executor = e }
}

// New creates a Loader whose table holds only the blank clip until the first
// Reload commits.
func New(source Source, parser *Parser, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		parser:   parser,
		log:      log.NewNop(),
		workers:  4,
		barrier:  NoBarrier,
		executor: Immediate{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.table.Store(newTable(0, nil))
	return l
}

// Clip resolves id against the live table.
func (l *Loader) Clip(id resource.Identifier) (*clip.Clip, bool) {
	return l.table.Load().Clip(id)
}

// Table returns the live snapshot.
func (l *Loader) Table() *Table {
	return l.table.Load()
}

type parsed struct {
	candidate Candidate
	clip      *clip.Clip
	err       error
}

// Reload rebuilds the clip table in the background. The returned channel
// yields nil once the new table is live, or the error that left the old table
// in place, and is then closed. Concurrent reloads are serialized.
func (l *Loader) Reload(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- l.reload(ctx)
		close(ch)
	}()
	return ch
}

func (l *Loader) reload(ctx context.Context) error {
	l.reloading.Lock()
	defer l.reloading.Unlock()
	start := time.Now()

	candidates, err := l.source.Discover(ctx)
	if err != nil {
		l.log.Error("clip discovery failed", log.Error(err))
		return fmt.Errorf("loader: discover: %w", err)
	}

	results, err := concurrent.Map(ctx, candidates, l.workers, func(_ context.Context, c Candidate) parsed {
		data, err := l.source.ReadFile(c.Path)
		if err != nil {
			return parsed{candidate: c, err: err}
		}
		cl, err := l.parser.Parse(c.Path, data)
		return parsed{candidate: c, clip: cl, err: err}
	})
	if err != nil {
		return fmt.Errorf("loader: parse: %w", err)
	}

	clips := make(map[resource.Identifier]*clip.Clip, len(results)+1)
	origin := make(map[resource.Identifier]string, len(results))
	skipped := 0
	for _, r := range results {
		if r.err != nil {
			skipped++
			l.log.Warn("skipping clip file", log.String("path", r.candidate.Path), log.Error(r.err))
			continue
		}
		if first, dup := origin[r.candidate.ID]; dup {
			skipped++
			l.log.Warn("duplicate clip identifier, keeping first",
				log.Stringer("id", r.candidate.ID),
				log.String("kept", first),
				log.String("ignored", r.candidate.Path))
			continue
		}
		if r.candidate.ID == playback.BlankID {
			skipped++
			l.log.Warn("clip file shadows the blank clip, ignoring", log.String("path", r.candidate.Path))
			continue
		}
		origin[r.candidate.ID] = r.candidate.Path
		clips[r.candidate.ID] = r.clip
	}

	if err := l.barrier.Wait(ctx); err != nil {
		return fmt.Errorf("loader: barrier: %w", err)
	}

	generation := l.generation.Add(1)
	next := newTable(generation, clips)
	summary := bus.ReloadSummary{
		Generation: generation,
		Clips:      len(clips) - 1,
		Skipped:    skipped,
		Duration:   time.Since(start),
	}
	return l.commit(ctx, next, summary)
}

// commit hands the swap to the executor. Once the executor has claimed the
// commit it always completes; a cancellation that wins the claim leaves the
// old table untouched.
func (l *Loader) commit(ctx context.Context, next *Table, summary bus.ReloadSummary) error {
	var claimed atomic.Bool
	done := make(chan struct{})

	l.executor.Execute(func() {
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		defer close(done)
		l.table.Store(next)
		l.log.Info("clips reloaded",
			log.Uint64("generation", summary.Generation),
			log.Int("clips", summary.Clips),
			log.Int("skipped", summary.Skipped),
			log.Duration("took", summary.Duration))
		if l.bus != nil {
			if err := l.bus.Publish(bus.NewEvent(bus.TypeClipsReloaded, "loader", summary)); err != nil {
				l.log.Warn("reload subscriber failed", log.Error(err))
			}
		}
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return fmt.Errorf("loader: commit: %w", ctx.Err())
		}
		<-done
		return nil
	}
}
