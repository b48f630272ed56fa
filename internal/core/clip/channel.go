package clip

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/posekit/internal/core/keyframe"
)

// Channel identifies one of the four animated properties of a part.
type Channel uint8

const (
	Position Channel = iota
	Rotation
	Offset
	Scale

	channelCount
)

// Channels lists every channel in evaluation order.
var Channels = [channelCount]Channel{Position, Rotation, Offset, Scale}

var channelNames = [channelCount]string{"position", "rotation", "offset", "scale"}

func (c Channel) String() string {
	if c < channelCount {
		return channelNames[c]
	}
	return "unknown"
}

// ParseChannel maps a file key onto a Channel.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// Neutral is the authored value meaning "no change": zero for additive
// channels, one for scale factors.
func (c Channel) Neutral() keyframe.Vec3 {
	if c == Scale {
		return keyframe.Vec3{1, 1, 1}
	}
	return keyframe.Vec3{}
}

// Evaluate samples track, substituting the neutral value for an empty track.
func (c Channel) Evaluate(track []keyframe.Keyframe, t float32) keyframe.Vec3 {
	if v, ok := keyframe.Evaluate(track, t); ok {
		return v
	}
	return c.Neutral()
}

// Accumulate adds v, weighted, onto the matching accumulator of pose.
// Rotation is authored in degrees; scale is accumulated as deviation from 1.
func (c Channel) Accumulate(pose *PosedPart, v keyframe.Vec3, weight float32) {
	switch c {
	case Position:
		pose.Position = pose.Position.Add(v.Mul(weight))
	case Rotation:
		rad := keyframe.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
		pose.Rotation = pose.Rotation.Add(rad.Mul(weight))
	case Offset:
		pose.Offset = pose.Offset.Add(v.Mul(weight))
	case Scale:
		pose.Scale = pose.Scale.Add(v.Sub(c.Neutral()).Mul(weight))
	}
}
