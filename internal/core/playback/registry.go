package playback

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Registry assigns compact integer IDs to handles for the wire. IDs are handed
// out in registration order starting at 0 (always the Blank handle) and never
// change. Peers that exchange IDs must register the same handles in the same
// order; Fingerprint lets them check.
type Registry struct {
	mu       sync.RWMutex
	byID     []Handle
	byHandle map[Handle]int32
	digest   *xxhash.Digest
}

func NewRegistry() *Registry {
	r := &Registry{
		byHandle: make(map[Handle]int32),
		digest:   xxhash.New(),
	}
	r.MustRegister(Blank)
	return r
}

// Register assigns the next ID to h. Registering the same handle twice is a
// programming error and fails with ErrAlreadyRegistered.
func (r *Registry) Register(h Handle) (int32, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.byHandle[h]; exists {
		return 0, fmt.Errorf("%w: %s (id %d)", ErrAlreadyRegistered, h, id)
	}
	id := int32(len(r.byID))
	r.byID = append(r.byID, h)
	r.byHandle[h] = id

	_, _ = r.digest.WriteString(h.String())
	_, _ = r.digest.Write([]byte{0})
	return id, nil
}

// MustRegister panics where Register would fail. Meant for startup tables.
func (r *Registry) MustRegister(h Handle) int32 {
	id, err := r.Register(h)
	if err != nil {
		panic(err)
	}
	return id
}

// Handle resolves an ID received from the wire.
func (r *Registry) Handle(id int32) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.byID) {
		return Handle{}, false
	}
	return r.byID[id], true
}

// ID resolves a handle to the integer sent on the wire.
func (r *Registry) ID(h Handle) (int32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHandle[h]
	return id, ok
}

// HandleOrBlank resolves id and falls back to Blank. The bool reports whether
// id was known, so callers can log the miss.
func (r *Registry) HandleOrBlank(id int32) (Handle, bool) {
	if h, ok := r.Handle(id); ok {
		return h, true
	}
	return Blank, false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Handles returns every handle indexed by its ID.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handle, len(r.byID))
	copy(out, r.byID)
	return out
}

// Fingerprint hashes the ordered handle list. Two registries agree on every
// ID exactly when their fingerprints match.
func (r *Registry) Fingerprint() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.digest.Sum64()
}
