package server

import "errors"

var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrUnknownHandle        = errors.New("handle is not registered")
	ErrInvalidConfig        = errors.New("invalid server configuration")
)
