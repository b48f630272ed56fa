package playback

import (
	"fmt"
	"math"

	"github.com/zeusync/posekit/internal/core/clip"
	"github.com/zeusync/posekit/internal/core/resource"
)

// LoopMode decides what happens once a handle's duration has elapsed.
type LoopMode uint8

const (
	LoopNone LoopMode = iota
	LoopRepeat
	LoopHold
)

func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopRepeat:
		return "loop"
	case LoopHold:
		return "hold"
	default:
		return fmt.Sprintf("LoopMode(%d)", uint8(m))
	}
}

func ParseLoopMode(s string) (LoopMode, error) {
	switch s {
	case "", "none":
		return LoopNone, nil
	case "loop":
		return LoopRepeat, nil
	case "hold":
		return LoopHold, nil
	default:
		return 0, fmt.Errorf("%w: loop mode %q", ErrInvalidHandle, s)
	}
}

// BlankID identifies the sentinel no-op clip.
var BlankID = resource.New(resource.DefaultNamespace, "blank")

// Blank is the sentinel handle registered first in every Registry.
var Blank = Handle{ID: BlankID}

// Library resolves clip identifiers; the clip loader implements it.
type Library interface {
	Clip(id resource.Identifier) (*clip.Clip, bool)
}

// Handle references a clip by identifier together with how long and how it
// plays. It is a comparable value and never holds the clip itself.
type Handle struct {
	ID       resource.Identifier
	Duration int32 // ticks
	Loop     LoopMode
}

func New(id resource.Identifier, duration int32, loop LoopMode) Handle {
	return Handle{ID: id, Duration: duration, Loop: loop}
}

func (h Handle) String() string {
	return fmt.Sprintf("%s/%dt/%s", h.ID, h.Duration, h.Loop)
}

func (h Handle) IsBlank() bool {
	return h == Blank
}

func (h Handle) Validate() error {
	if err := h.ID.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	if h.Duration < 0 {
		return fmt.Errorf("%w: negative duration %d", ErrInvalidHandle, h.Duration)
	}
	if h.Loop > LoopHold {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h.Loop)
	}
	return nil
}

// Clip resolves the handle against lib. A miss is not an error: the clip may
// simply not be loaded (yet).
func (h Handle) Clip(lib Library) (*clip.Clip, bool) {
	if lib == nil {
		return nil, false
	}
	return lib.Clip(h.ID)
}

// ClipTime maps elapsed ticks onto a time within a clip of the given length,
// applying the loop mode. It reports false once a non-looping handle has run
// out, and always for zero-duration handles.
func (h Handle) ClipTime(elapsedTicks, length float32) (float32, bool) {
	if h.Duration <= 0 {
		return 0, false
	}
	duration := float32(h.Duration)
	if elapsedTicks < 0 || elapsedTicks != elapsedTicks {
		elapsedTicks = 0
	}

	var progress float32
	switch h.Loop {
	case LoopRepeat:
		progress = float32(math.Mod(float64(elapsedTicks), float64(duration))) / duration
	case LoopHold:
		progress = min(elapsedTicks/duration, 1)
	default:
		if elapsedTicks >= duration {
			return length, false
		}
		progress = elapsedTicks / duration
	}
	return progress * length, true
}
