package keyframe

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the value type carried by every channel.
type Vec3 = mgl32.Vec3

// Interpolator pairs an interpolation algorithm with an easing function.
// The zero value behaves as linear/linear.
type Interpolator struct {
	Algorithm     AlgorithmFunc
	Easing        EasingFunc
	AlgorithmName string
	EasingName    string
}

// DefaultInterpolator is linear/linear.
func DefaultInterpolator() Interpolator {
	return Interpolator{
		Algorithm:     LinearAlgorithm,
		Easing:        Linear,
		AlgorithmName: AlgorithmLinear,
		EasingName:    EasingLinear,
	}
}

// ResolveInterpolator looks both names up. An empty name selects the linear default.
func ResolveInterpolator(algorithms *AlgorithmRegistry, easings *EasingRegistry, algorithm, easing string) (Interpolator, error) {
	ip := DefaultInterpolator()
	if algorithm != "" && algorithm != AlgorithmLinear {
		fn, ok := algorithms.Lookup(algorithm)
		if !ok {
			return Interpolator{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
		}
		ip.Algorithm, ip.AlgorithmName = fn, algorithm
	}
	if easing != "" && easing != EasingLinear {
		fn, ok := easings.Lookup(easing)
		if !ok {
			return Interpolator{}, fmt.Errorf("%w: %q", ErrUnknownEasing, easing)
		}
		ip.Easing, ip.EasingName = fn, easing
	}
	return ip, nil
}

func (ip Interpolator) algorithm() AlgorithmFunc {
	if ip.Algorithm == nil {
		return LinearAlgorithm
	}
	return ip.Algorithm
}

func (ip Interpolator) ease(p float32) float32 {
	if ip.Easing == nil {
		return p
	}
	return ip.Easing(p)
}

// Keyframe is a timed sample. Pre is the value approached from the left,
// Post the value departing to the right; they differ only for deliberate snaps.
type Keyframe struct {
	Time         float32
	Pre          Vec3
	Post         Vec3
	Interpolator Interpolator
}

// At builds a continuous keyframe (Pre == Post) with the default interpolator.
func At(time float32, v Vec3) Keyframe {
	return Keyframe{Time: time, Pre: v, Post: v, Interpolator: DefaultInterpolator()}
}

// Continuous reports whether the keyframe has no discontinuity at its instant.
func (k Keyframe) Continuous() bool {
	return k.Pre == k.Post
}
