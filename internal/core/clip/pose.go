package clip

import "github.com/zeusync/posekit/internal/core/keyframe"

// PosedPart accumulates the per-frame delta of one rig part. All four fields
// are additive and zero means "no deviation"; Scale holds deviation from 1.
type PosedPart struct {
	Position keyframe.Vec3
	Rotation keyframe.Vec3 // radians
	Offset   keyframe.Vec3
	Scale    keyframe.Vec3
}

// Reset returns the part to its neutral pose.
func (p *PosedPart) Reset() {
	*p = PosedPart{}
}

// ScaleFactor is the multiplicative scale a renderer applies.
func (p *PosedPart) ScaleFactor() keyframe.Vec3 {
	return keyframe.Vec3{1 + p.Scale[0], 1 + p.Scale[1], 1 + p.Scale[2]}
}

// IsNeutral reports whether nothing has been accumulated.
func (p *PosedPart) IsNeutral() bool {
	return *p == PosedPart{}
}
