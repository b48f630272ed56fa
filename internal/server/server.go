package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeusync/posekit/internal/config"
	"github.com/zeusync/posekit/internal/core/events/bus"
	"github.com/zeusync/posekit/internal/core/loader"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/core/resource"
)

// Server is the authoritative posekit process: it keeps the clip table
// loaded (and hot reloaded when configured) and serves the trigger hub.
type Server struct {
	cfg      config.Config
	log      log.Log
	loader   *loader.Loader
	registry *playback.Registry
	bus      bus.EventBus
	hub      *Hub

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	watcher  *loader.Watcher
	reloads  bus.Subscription
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	running atomic.Bool
	closed  atomic.Bool
}

// NewServer wires a server. b is the bus the loader publishes reloads on; it
// may be nil, in which case clips added by hot reload are not registered.
func NewServer(cfg config.Config, logger log.Log, l *loader.Loader, registry *playback.Registry, b bus.EventBus) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "server"))
	return &Server{
		cfg:      cfg,
		log:      logger,
		loader:   l,
		registry: registry,
		bus:      b,
		hub:      NewHub(registry, logger.Named("hub")),
	}
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Loader() *loader.Loader { return s.loader }

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start loads clips, registers a handle for each of them and begins serving.
// The initial load must succeed; later hot reloads only log failures. Clips
// that appear on a hot reload are registered after the existing ones, so
// their IDs depend on reload history; observers detect the drift through the
// hello fingerprint.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	if err := <-s.loader.Reload(ctx); err != nil {
		s.running.Store(false)
		return fmt.Errorf("initial clip load: %w", err)
	}
	registered := RegisterClips(s.registry, s.loader.Table())
	s.log.Info("clips loaded",
		log.Int("clips", s.loader.Table().Len()),
		log.Int("registered", registered),
		log.Uint64("fingerprint", s.registry.Fingerprint()))

	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen: %w", err)
	}

	var reloads bus.Subscription
	if s.bus != nil {
		reloads, err = s.bus.Subscribe(bus.TypeClipsReloaded, func(bus.Event) error {
			if n := RegisterClips(s.registry, s.loader.Table()); n > 0 {
				s.log.Info("registered reloaded clips",
					log.Int("registered", n),
					log.Uint64("fingerprint", s.registry.Fingerprint()))
			}
			return nil
		})
		if err != nil {
			_ = ln.Close()
			s.running.Store(false)
			return fmt.Errorf("subscribe reloads: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())

	var watcher *loader.Watcher
	if s.cfg.Clips.Watch {
		watcher, err = loader.NewWatcher(s.cfg.Clips.Root, s.cfg.Clips.Extensions...)
		if err != nil {
			cancel()
			_ = ln.Close()
			if reloads != nil {
				_ = reloads.Cancel()
			}
			s.running.Store(false)
			return fmt.Errorf("watch clips: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			watcher.AutoReload(runCtx, s.loader, s.cfg.Clips.Debounce, s.log.Named("reload"))
		}()
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Server.Path, s.hub)
	mux.HandleFunc(s.cfg.Server.Path+"/trigger", s.handleTrigger)

	srv := &http.Server{Handler: mux}

	s.mu.Lock()
	s.http = srv
	s.listener = ln
	s.watcher = watcher
	s.reloads = reloads
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", log.Error(err))
		}
	}()

	s.log.Info("serving", log.String("addr", ln.Addr().String()), log.String("path", s.cfg.Server.Path))
	return nil
}

// Stop shuts the server down. A stopped server cannot be restarted. A server
// still inside Start reports ErrServerNotRunning.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return ErrServerNotRunning
	}

	s.mu.Lock()
	srv, watcher, reloads, cancel := s.http, s.watcher, s.reloads, s.cancel
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotRunning
	}
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}

	cancel()
	s.hub.Close()
	err := srv.Shutdown(ctx)
	if watcher != nil {
		err = errors.Join(err, watcher.Close())
	}
	s.wg.Wait()
	s.running.Store(false)

	fields := []log.Field{log.Int("handles", s.registry.Len())}
	if s.bus != nil {
		err = errors.Join(err, s.bus.Unsubscribe(reloads))
		m := s.bus.GetMetrics()
		fields = append(fields,
			log.Uint64("events_published", m.Published),
			log.Uint64("handler_errors", m.Errors))
	}
	s.log.Info("stopped", fields...)
	return err
}

// Trigger broadcasts handle for target to every observer.
func (s *Server) Trigger(target int32, handle playback.Handle) error {
	if !s.running.Load() {
		return ErrServerNotRunning
	}
	return s.hub.Trigger(target, handle)
}

// handleTrigger serves POST <path>/trigger?target=<int>&animation=<ns:path>.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	target, err := strconv.ParseInt(q.Get("target"), 10, 32)
	if err != nil {
		http.Error(w, "bad target", http.StatusBadRequest)
		return
	}
	id, err := resource.Parse(q.Get("animation"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	handle, ok := HandleFor(s.registry, id)
	if !ok {
		http.Error(w, "unknown animation", http.StatusNotFound)
		return
	}
	if err := s.Trigger(int32(target), handle); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RegisterClips registers one play-once handle per clip in table, in sorted
// identifier order, skipping handles already present. Peers loading the same
// clip set end up with the same registration order. Returns how many were
// added.
func RegisterClips(registry *playback.Registry, table *loader.Table) int {
	added := 0
	for _, id := range table.IDs() {
		c, _ := table.Clip(id)
		h := playback.New(id, int32(math.Ceil(float64(c.Length()))), playback.LoopNone)
		if _, exists := registry.ID(h); exists || id == playback.BlankID {
			continue
		}
		if _, err := registry.Register(h); err == nil {
			added++
		}
	}
	return added
}

// HandleFor returns the first registered handle for id.
func HandleFor(registry *playback.Registry, id resource.Identifier) (playback.Handle, bool) {
	for _, h := range registry.Handles() {
		if h.ID == id {
			return h, true
		}
	}
	return playback.Handle{}, false
}
