package playback

import "errors"

var (
	ErrAlreadyRegistered = errors.New("playback: handle already registered")
	ErrInvalidHandle     = errors.New("playback: invalid handle")
)
