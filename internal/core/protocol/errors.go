package protocol

import "errors"

var (
	ErrInvalidMessage        = errors.New("invalid message")
	ErrInvalidFrame          = errors.New("invalid frame")
	ErrUnknownMessageType    = errors.New("unknown message type")
	ErrSerializationFailed   = errors.New("message serialization failed")
	ErrDeserializationFailed = errors.New("message deserialization failed")
)
