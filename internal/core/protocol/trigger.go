package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	triggerSize = 8
	helloSize   = 12
)

// Trigger asks observers to play animation AnimationID on entity TargetID.
// AnimationID is an index into the shared playback registry.
type Trigger struct {
	TargetID    int32
	AnimationID int32
}

// MarshalBinary encodes the trigger as two big-endian int32.
func (t Trigger) MarshalBinary() ([]byte, error) {
	buf := make([]byte, triggerSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(t.TargetID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(t.AnimationID))
	return buf, nil
}

func (t *Trigger) UnmarshalBinary(data []byte) error {
	if len(data) != triggerSize {
		return fmt.Errorf("%w: trigger wants %d bytes, got %d", ErrInvalidFrame, triggerSize, len(data))
	}
	t.TargetID = int32(binary.BigEndian.Uint32(data[0:4]))
	t.AnimationID = int32(binary.BigEndian.Uint32(data[4:8]))
	return nil
}

// Message wraps the trigger in an envelope.
func (t Trigger) Message() Message {
	payload, _ := t.MarshalBinary()
	return NewMessage(TypeTrigger, payload)
}

// Hello is sent by the authoritative peer when an observer connects. It lets
// the observer check that both playback registries were built in the same
// order before any integer IDs are trusted.
type Hello struct {
	Handles     int32
	Fingerprint uint64
}

func (h Hello) MarshalBinary() ([]byte, error) {
	buf := make([]byte, helloSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(h.Handles))
	binary.BigEndian.PutUint64(buf[4:12], h.Fingerprint)
	return buf, nil
}

func (h *Hello) UnmarshalBinary(data []byte) error {
	if len(data) != helloSize {
		return fmt.Errorf("%w: hello wants %d bytes, got %d", ErrInvalidFrame, helloSize, len(data))
	}
	h.Handles = int32(binary.BigEndian.Uint32(data[0:4]))
	h.Fingerprint = binary.BigEndian.Uint64(data[4:12])
	return nil
}

func (h Hello) Message() Message {
	payload, _ := h.MarshalBinary()
	return NewMessage(TypeHello, payload)
}
