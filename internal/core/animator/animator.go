package animator

import (
	"github.com/zeusync/posekit/internal/core/clip"
)

// ResetMode selects whether Apply starts from a neutral pose.
type ResetMode uint8

const (
	// Full resets every part before accumulating; use for the sole or first
	// clip driving a model this frame.
	Full ResetMode = iota
	// Additive accumulates on top of whatever earlier Apply calls left.
	Additive
)

func (m ResetMode) String() string {
	if m == Additive {
		return "additive"
	}
	return "full"
}

// Rig exposes the named parts of an animated model.
type Rig interface {
	PartNames() []string
}

// Animator owns one PosedPart per rig part of a single model instance and
// evaluates clips into them. It is not safe for concurrent use; it belongs to
// the goroutine that renders the model.
type Animator struct {
	parts map[string]*clip.PosedPart
	names []string
}

// New allocates accumulators for every part of rig.
func New(rig Rig) *Animator {
	var names []string
	if rig != nil {
		names = rig.PartNames()
	}
	a := &Animator{
		parts: make(map[string]*clip.PosedPart, len(names)),
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		if _, dup := a.parts[name]; dup {
			continue
		}
		a.parts[name] = &clip.PosedPart{}
		a.names = append(a.names, name)
	}
	return a
}

// Apply evaluates c at time t with weight 1.
func (a *Animator) Apply(c *clip.Clip, t float32, mode ResetMode) {
	a.ApplyWeighted(c, t, mode, 1)
}

// ApplyWeighted evaluates c at time t and adds weight times each channel's
// value onto the parts. t is clamped to the clip. Parts the clip animates but
// the rig lacks are ignored, as are empty channels. Two calls with weights w
// and 1-w cross-fade between clips.
func (a *Animator) ApplyWeighted(c *clip.Clip, t float32, mode ResetMode, weight float32) {
	if mode == Full {
		a.Reset()
	}
	if c == nil || c.Empty() {
		return
	}
	t = c.ClampTime(t)

	c.Each(func(part string, track *clip.PartTrack) {
		pose, ok := a.parts[part]
		if !ok {
			return
		}
		for _, ch := range clip.Channels {
			keys := track.Track(ch)
			if len(keys) == 0 {
				continue
			}
			ch.Accumulate(pose, ch.Evaluate(keys, t), weight)
		}
	})
}

// Reset returns every part to neutral.
func (a *Animator) Reset() {
	for _, p := range a.parts {
		p.Reset()
	}
}

// Pose returns the accumulator of part for the renderer to read.
func (a *Animator) Pose(part string) (*clip.PosedPart, bool) {
	p, ok := a.parts[part]
	return p, ok
}

// Parts lists the rig's part names in rig order.
func (a *Animator) Parts() []string {
	return a.names
}
