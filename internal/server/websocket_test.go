package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/posekit/internal/config"
	"github.com/zeusync/posekit/internal/core/events/bus"
	"github.com/zeusync/posekit/internal/core/keyframe"
	"github.com/zeusync/posekit/internal/core/loader"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/core/protocol"
	"github.com/zeusync/posekit/internal/core/resource"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	wave = playback.New(resource.MustParse("mobs:wave"), 20, playback.LoopNone)
	idle = playback.New(resource.MustParse("mobs:idle"), 10, playback.LoopRepeat)
)

type received struct {
	target int32
	handle playback.Handle
}

func newRegistry(handles ...playback.Handle) *playback.Registry {
	r := playback.NewRegistry()
	for _, h := range handles {
		r.MustRegister(h)
	}
	return r
}

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func startObserver(t *testing.T, url string, registry *playback.Registry, b bus.EventBus) (<-chan received, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	got := make(chan received, 8)
	o := NewObserver(registry, func(target int32, h playback.Handle) {
		got <- received{target, h}
	}, b, log.NewWithCore(core))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, o.Dial(ctx, url))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return got, logs
}

func next(t *testing.T, ch <-chan received) received {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger received")
		return received{}
	}
}

func TestHubBroadcastsTriggers(t *testing.T) {
	hub := NewHub(newRegistry(wave, idle), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	b := bus.New()
	events := make(chan bus.Trigger, 1)
	_, err := b.Subscribe(bus.TypeAnimationTriggered, func(e bus.Event) error {
		events <- e.Data().(bus.Trigger)
		return nil
	})
	require.NoError(t, err)

	got, logs := startObserver(t, wsURL(srv.URL, ""), newRegistry(wave, idle), b)
	require.Eventually(t, func() bool { return hub.Peers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Trigger(5, idle))
	assert.Equal(t, received{5, idle}, next(t, got))
	assert.Equal(t, bus.Trigger{TargetID: 5, AnimationID: 2, Known: true}, <-events)

	require.NoError(t, hub.Trigger(-1, playback.Blank))
	assert.Equal(t, received{-1, playback.Blank}, next(t, got))

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestObserverFallsBackToBlank(t *testing.T) {
	hub := NewHub(newRegistry(wave, idle), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	got, logs := startObserver(t, wsURL(srv.URL, ""), newRegistry(wave), nil)
	require.Eventually(t, func() bool { return hub.Peers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Trigger(3, idle))
	r := next(t, got)
	assert.Equal(t, int32(3), r.target)
	assert.True(t, r.handle.IsBlank())

	assert.Equal(t, 1, logs.FilterMessage("unknown animation id, playing blank").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("registry differs").Len())
}

func TestHubRejectsUnregisteredHandle(t *testing.T) {
	hub := NewHub(newRegistry(wave), nil)
	assert.ErrorIs(t, hub.Trigger(1, idle), ErrUnknownHandle)
}

func TestObserverSkipsMalformedFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var got []received
	o := NewObserver(newRegistry(wave), func(target int32, h playback.Handle) {
		got = append(got, received{target, h})
	}, nil, log.NewWithCore(core))

	codec := protocol.JSONCodec{}
	short, err := codec.Encode(protocol.NewMessage(protocol.TypeTrigger, []byte{0, 1}))
	require.NoError(t, err)
	other, err := codec.Encode(protocol.NewMessage("chat", nil))
	require.NoError(t, err)
	valid, err := codec.Encode(protocol.Trigger{TargetID: 9, AnimationID: 1}.Message())
	require.NoError(t, err)

	o.handle([]byte("{"))
	o.handle(short)
	o.handle(other)
	o.handle(valid)

	assert.Equal(t, []received{{9, wave}}, got)
	assert.Equal(t, 2, logs.FilterMessage("dropping frame").Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping trigger").Len())
}

func TestObserverRunWithoutDial(t *testing.T) {
	o := NewObserver(newRegistry(), nil, nil, nil)
	assert.ErrorIs(t, o.Run(context.Background()), ErrServerNotRunning)
}

const waveClip = `{"length": 20, "parts": {"arm": {"rotation": [
  {"time": 0, "transform": [0, 0, 0]},
  {"time": 20, "transform": [0, 0, 90]}
]}}}`

func waveFS() fstest.MapFS {
	return fstest.MapFS{"mobs/animations/wave.json": {Data: []byte(waveClip)}}
}

func newTestServer(t *testing.T, registry *playback.Registry, fsys fstest.MapFS, opts ...loader.Option) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Clips.Watch = false
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	b := bus.New()
	parser := loader.NewParser(keyframe.NewAlgorithmRegistry(), keyframe.NewEasingRegistry(), nil)
	opts = append([]loader.Option{loader.WithBus(b)}, opts...)
	return NewServer(cfg, nil, loader.New(&loader.FSSource{FS: fsys}, parser, opts...), registry, b)
}

func TestServerLifecycle(t *testing.T) {
	registry := playback.NewRegistry()
	s := newTestServer(t, registry, waveFS())

	assert.ErrorIs(t, s.Stop(context.Background()), ErrServerNotRunning)
	assert.ErrorIs(t, s.Trigger(1, wave), ErrServerNotRunning)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrServerAlreadyRunning)

	_, ok := s.Loader().Clip(wave.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []playback.Handle{playback.Blank, wave}, registry.Handles())

	base := "http://" + s.Addr() + "/animations"
	got, _ := startObserver(t, wsURL(base, ""), newRegistry(wave), nil)
	require.Eventually(t, func() bool { return s.Hub().Peers() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(base+"/trigger?target=4&animation=mobs:wave", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, received{4, wave}, next(t, got))

	resp, err = http.Post(base+"/trigger?target=4&animation=mobs:missing", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(base+"/trigger?target=x&animation=mobs:wave", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.ErrorIs(t, s.Start(ctx), ErrServerClosed)
}

func TestRegisterClipsIsIdempotent(t *testing.T) {
	s := newTestServer(t, playback.NewRegistry(), waveFS())
	require.NoError(t, <-s.Loader().Reload(context.Background()))

	registry := playback.NewRegistry()
	assert.Equal(t, 1, RegisterClips(registry, s.Loader().Table()))
	assert.Equal(t, 0, RegisterClips(registry, s.Loader().Table()))

	h, ok := HandleFor(registry, wave.ID)
	require.True(t, ok)
	assert.Equal(t, wave, h)
}

func TestServerRegistersHotReloadedClips(t *testing.T) {
	registry := playback.NewRegistry()
	fsys := waveFS()
	s := newTestServer(t, registry, fsys)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()
	before := registry.Fingerprint()

	fsys["mobs/animations/idle.json"] = &fstest.MapFile{Data: []byte(waveClip)}
	require.NoError(t, <-s.Loader().Reload(ctx))

	h, ok := HandleFor(registry, resource.MustParse("mobs:idle"))
	require.True(t, ok)
	id, _ := registry.ID(h)
	assert.Equal(t, int32(2), id)
	waveID, _ := registry.ID(wave)
	assert.Equal(t, int32(1), waveID)
	assert.NotEqual(t, before, registry.Fingerprint())

	resp, err := http.Post("http://"+s.Addr()+"/animations/trigger?target=1&animation=mobs:idle", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestServerStopDuringStart(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	barrier := loader.BarrierFunc(func(ctx context.Context) error {
		once.Do(func() { close(entered) })
		<-release
		return ctx.Err()
	})
	s := newTestServer(t, playback.NewRegistry(), waveFS(), loader.WithBarrier(barrier))

	ctx := context.Background()
	started := make(chan error, 1)
	go func() { started <- s.Start(ctx) }()

	<-entered
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, s.Stop(ctx), ErrServerNotRunning)
	})

	close(release)
	require.NoError(t, <-started)
	require.NoError(t, s.Stop(ctx))
}

func TestHubReachesEveryObserver(t *testing.T) {
	hub := NewHub(newRegistry(wave), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	var feeds []<-chan received
	for range 3 {
		got, _ := startObserver(t, wsURL(srv.URL, ""), newRegistry(wave), nil)
		feeds = append(feeds, got)
	}
	require.Eventually(t, func() bool { return hub.Peers() == 3 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Trigger(11, wave))
	for _, got := range feeds {
		assert.Equal(t, received{11, wave}, next(t, got))
	}
}
