package keyframe

import "math"

// EasingFunc reshapes interpolation progress. Inputs are in [0,1]; outputs
// usually are too, although overshooting easers (back, elastic) leave it briefly.
type EasingFunc func(progress float32) float32

// EasingRegistry holds named easing functions.
type EasingRegistry = Registry[EasingFunc]

const EasingLinear = "linear"

// NewEasingRegistry returns a registry preloaded with the built-in easers.
func NewEasingRegistry() *EasingRegistry {
	r := newRegistry[EasingFunc]("easing")
	r.MustRegister(EasingLinear, Linear)
	for _, c := range curves {
		r.MustRegister("ease_in_"+c.name, in(c.fn))
		r.MustRegister("ease_out_"+c.name, out(c.fn))
		r.MustRegister("ease_in_out_"+c.name, inOut(c.fn))
	}
	return r
}

func Linear(p float32) float32 { return p }

type curve struct {
	name string
	fn   func(float64) float64 // ease-in shape
}

const (
	backC1    = 1.70158
	backC3    = backC1 + 1
	elasticC4 = 2 * math.Pi / 3
)

var curves = []curve{
	{"sine", func(x float64) float64 { return 1 - math.Cos(x*math.Pi/2) }},
	{"quad", func(x float64) float64 { return x * x }},
	{"cubic", func(x float64) float64 { return x * x * x }},
	{"quart", func(x float64) float64 { return x * x * x * x }},
	{"quint", func(x float64) float64 { return x * x * x * x * x }},
	{"expo", func(x float64) float64 {
		if x == 0 {
			return 0
		}
		return math.Pow(2, 10*x-10)
	}},
	{"circ", func(x float64) float64 { return 1 - math.Sqrt(1-x*x) }},
	{"back", func(x float64) float64 { return backC3*x*x*x - backC1*x*x }},
	{"elastic", func(x float64) float64 {
		if x == 0 || x == 1 {
			return x
		}
		return -math.Pow(2, 10*x-10) * math.Sin((x*10-10.75)*elasticC4)
	}},
	{"bounce", func(x float64) float64 { return 1 - bounceOut(1-x) }},
}

func bounceOut(x float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case x < 1/d1:
		return n1 * x * x
	case x < 2/d1:
		x -= 1.5 / d1
		return n1*x*x + 0.75
	case x < 2.5/d1:
		x -= 2.25 / d1
		return n1*x*x + 0.9375
	default:
		x -= 2.625 / d1
		return n1*x*x + 0.984375
	}
}

func in(f func(float64) float64) EasingFunc {
	return func(p float32) float32 { return float32(f(float64(p))) }
}

func out(f func(float64) float64) EasingFunc {
	return func(p float32) float32 { return float32(1 - f(1-float64(p))) }
}

func inOut(f func(float64) float64) EasingFunc {
	return func(p float32) float32 {
		x := float64(p)
		if x < 0.5 {
			return float32(f(2*x) / 2)
		}
		return float32(1 - f(2-2*x)/2)
	}
}
