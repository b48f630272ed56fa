package loader

import "errors"

var (
	ErrMalformedClip  = errors.New("loader: malformed clip")
	ErrEmptyKeyframe  = errors.New("loader: keyframe has no transform")
	ErrUnknownChannel = errors.New("loader: unknown channel")
	ErrInvalidTime    = errors.New("loader: keyframe time is not finite")
)
