package clip

import "github.com/zeusync/posekit/internal/core/keyframe"

// PartTrack holds the keyframes of one part, one ascending sequence per channel.
type PartTrack struct {
	Channels [channelCount][]keyframe.Keyframe
}

// Track returns the keyframes of channel c.
func (pt *PartTrack) Track(c Channel) []keyframe.Keyframe {
	return pt.Channels[c]
}

// Empty reports whether no channel carries keyframes.
func (pt *PartTrack) Empty() bool {
	for _, ch := range pt.Channels {
		if len(ch) > 0 {
			return false
		}
	}
	return true
}

// Clip is an immutable animation for one rig. It is shared read-only by every
// animator playing it.
type Clip struct {
	length float32
	tracks map[string]*PartTrack
}

// New builds a Clip. The tracks map is taken over by the clip; callers must not
// modify it afterwards.
func New(length float32, tracks map[string]*PartTrack) *Clip {
	if tracks == nil {
		tracks = make(map[string]*PartTrack)
	}
	if length < 0 {
		length = 0
	}
	return &Clip{length: length, tracks: tracks}
}

// Blank is the clip with no tracks and zero length.
func Blank() *Clip {
	return New(0, nil)
}

func (c *Clip) Length() float32 { return c.length }

func (c *Clip) Track(part string) (*PartTrack, bool) {
	pt, ok := c.tracks[part]
	return pt, ok
}

// Parts returns the names of every animated part in unspecified order.
func (c *Clip) Parts() []string {
	out := make([]string, 0, len(c.tracks))
	for name := range c.tracks {
		out = append(out, name)
	}
	return out
}

// Each calls fn for every part track.
func (c *Clip) Each(fn func(part string, track *PartTrack)) {
	for name, pt := range c.tracks {
		fn(name, pt)
	}
}

func (c *Clip) Empty() bool {
	return len(c.tracks) == 0
}

// ClampTime limits t to [0, Length].
func (c *Clip) ClampTime(t float32) float32 {
	if t < 0 || t != t {
		return 0
	}
	if t > c.length {
		return c.length
	}
	return t
}
