package keyframe

import "errors"

var (
	ErrEmptyName        = errors.New("keyframe: empty registry name")
	ErrDuplicateName    = errors.New("keyframe: name already registered")
	ErrUnknownEasing    = errors.New("keyframe: unknown easing")
	ErrUnknownAlgorithm = errors.New("keyframe: unknown interpolation algorithm")
)
