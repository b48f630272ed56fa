package keyframe

// AlgorithmFunc interpolates between track[i] and track[i+1] at eased progress p.
// The full track is passed so spline algorithms can look at neighbours.
type AlgorithmFunc func(track []Keyframe, i int, p float32) Vec3

// AlgorithmRegistry holds named interpolation algorithms.
type AlgorithmRegistry = Registry[AlgorithmFunc]

const (
	AlgorithmLinear     = "linear"
	AlgorithmCatmullRom = "catmull_rom"
	AlgorithmStep       = "step"
)

// NewAlgorithmRegistry returns a registry preloaded with linear, catmull_rom and step.
func NewAlgorithmRegistry() *AlgorithmRegistry {
	r := newRegistry[AlgorithmFunc]("algorithm")
	r.MustRegister(AlgorithmLinear, LinearAlgorithm)
	r.MustRegister(AlgorithmCatmullRom, CatmullRomAlgorithm)
	r.MustRegister(AlgorithmStep, StepAlgorithm)
	return r
}

func LinearAlgorithm(track []Keyframe, i int, p float32) Vec3 {
	from, to := track[i].Post, track[i+1].Pre
	return Vec3{
		lerp(from[0], to[0], p),
		lerp(from[1], to[1], p),
		lerp(from[2], to[2], p),
	}
}

// CatmullRomAlgorithm runs a uniform Catmull-Rom blend between the two
// bounding keyframes. The control points are track[i-2].Post and
// track[i+2].Pre; a missing one is replaced by the nearer bounding value.
func CatmullRomAlgorithm(track []Keyframe, i int, p float32) Vec3 {
	p1 := track[i].Post
	p2 := track[i+1].Pre
	p0 := p1
	if i-2 >= 0 {
		p0 = track[i-2].Post
	}
	p3 := p2
	if i+2 < len(track) {
		p3 = track[i+2].Pre
	}
	return Vec3{
		catmullRom(p0[0], p1[0], p2[0], p3[0], p),
		catmullRom(p0[1], p1[1], p2[1], p3[1], p),
		catmullRom(p0[2], p1[2], p2[2], p3[2], p),
	}
}

// StepAlgorithm holds the left value for the whole segment.
func StepAlgorithm(track []Keyframe, i int, p float32) Vec3 {
	if p >= 1 {
		return track[i+1].Pre
	}
	return track[i].Post
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func catmullRom(p0, p1, p2, p3, t float32) float32 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}
