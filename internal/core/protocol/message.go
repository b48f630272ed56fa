package protocol

import (
	"encoding/json"
	"fmt"
)

// Message types carried by the animation channel.
const (
	TypeHello   = "hello"
	TypeTrigger = "animation.trigger"
)

// Message is a typed envelope around an opaque payload.
type Message interface {
	Type() string
	Payload() []byte
}

// Codec turns messages into transport frames and back.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// BasicMessage is a simple, concrete implementation of the Message interface.
type BasicMessage struct {
	MsgType    string `json:"type"`
	MsgPayload []byte `json:"payload"`
}

// NewMessage creates a new BasicMessage.
func NewMessage(msgType string, payload []byte) *BasicMessage {
	return &BasicMessage{
		MsgType:    msgType,
		MsgPayload: payload,
	}
}

func (m *BasicMessage) Type() string {
	return m.MsgType
}

func (m *BasicMessage) Payload() []byte {
	return m.MsgPayload
}

// JSONCodec implements Codec with a JSON envelope. Payload bytes travel
// base64-encoded inside it.
type JSONCodec struct{}

func (c JSONCodec) Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(BasicMessage{MsgType: msg.Type(), MsgPayload: msg.Payload()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

func (c JSONCodec) Decode(data []byte) (Message, error) {
	var msg BasicMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}
	if msg.MsgType == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return &msg, nil
}
