package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/core/protocol"
	"github.com/zeusync/posekit/pkg/concurrent"
)

const broadcastWorkers = 8

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type peer struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, frame)
}

// Hub is the authoritative end of the animation channel. Observers connect
// over websocket, receive a Hello with the registry fingerprint, and then
// every Trigger broadcast by the hub.
type Hub struct {
	registry *playback.Registry
	codec    protocol.Codec
	log      log.Log

	mu     sync.Mutex
	peers  map[string]*peer
	closed bool
}

func NewHub(registry *playback.Registry, logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		registry: registry,
		codec:    protocol.JSONCodec{},
		log:      logger,
		peers:    make(map[string]*peer),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	p := &peer{id: uuid.NewString(), conn: conn}
	hello := protocol.Hello{
		Handles:     int32(h.registry.Len()),
		Fingerprint: h.registry.Fingerprint(),
	}
	frame, err := h.codec.Encode(hello.Message())
	if err == nil {
		err = p.send(frame)
	}
	if err != nil {
		h.log.Warn("hello failed", log.String("peer", p.id), log.Error(err))
		_ = conn.Close()
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.peers[p.id] = p
	h.mu.Unlock()
	h.log.Debug("observer connected", log.String("peer", p.id), log.String("remote", conn.RemoteAddr().String()))

	// Observers only listen; reading keeps control frames flowing and
	// notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(p)
}

// Trigger tells every observer to play handle on target.
func (h *Hub) Trigger(target int32, handle playback.Handle) error {
	id, ok := h.registry.ID(handle)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	return h.broadcast(protocol.Trigger{TargetID: target, AnimationID: id})
}

func (h *Hub) broadcast(t protocol.Trigger) error {
	frame, err := h.codec.Encode(t.Message())
	if err != nil {
		return err
	}

	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	// A failing peer is dropped; it never stops delivery to the others.
	return concurrent.ForEach(context.Background(), peers, broadcastWorkers, func(_ context.Context, p *peer) error {
		if err := p.send(frame); err != nil {
			h.log.Warn("dropping observer", log.String("peer", p.id), log.Error(err))
			h.drop(p)
		}
		return nil
	})
}

// Peers reports how many observers are connected.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close disconnects every observer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := h.peers
	h.peers = make(map[string]*peer)
	h.mu.Unlock()

	for _, p := range peers {
		_ = p.conn.Close()
	}
}

func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p.id]
	delete(h.peers, p.id)
	h.mu.Unlock()
	if ok {
		_ = p.conn.Close()
		h.log.Debug("observer disconnected", log.String("peer", p.id))
	}
}
