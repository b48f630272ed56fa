package keyframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func linearTrack() []Keyframe {
	return []Keyframe{
		At(0, Vec3{0, 0, 0}),
		At(10, Vec3{0, 0, 45}),
		At(20, Vec3{0, 0, 0}),
	}
}

func TestEvaluateEmptyTrack(t *testing.T) {
	_, ok := Evaluate(nil, 3)
	assert.False(t, ok)
}

func TestEvaluateHoldsOutsideRange(t *testing.T) {
	track := []Keyframe{
		{Time: 2, Pre: Vec3{1, 1, 1}, Post: Vec3{2, 2, 2}},
		{Time: 8, Pre: Vec3{3, 3, 3}, Post: Vec3{4, 4, 4}},
	}
	for _, tm := range []float32{-5, 0, 1.99, 2} {
		v, ok := Evaluate(track, tm)
		require.True(t, ok)
		assert.Equal(t, Vec3{1, 1, 1}, v, "t=%v", tm)
	}
	for _, tm := range []float32{8, 8.01, 100} {
		v, _ := Evaluate(track, tm)
		assert.Equal(t, Vec3{4, 4, 4}, v, "t=%v", tm)
	}
}

func TestEvaluateSingleKeyframeIsConstant(t *testing.T) {
	track := []Keyframe{At(0, Vec3{1, 2, 3})}
	for _, tm := range []float32{-1, 0, 0.5, 7, 1000} {
		v, ok := Evaluate(track, tm)
		require.True(t, ok)
		assert.Equal(t, Vec3{1, 2, 3}, v)
	}
}

func TestEvaluateLinearMidpoint(t *testing.T) {
	v, ok := Evaluate(linearTrack(), 5)
	require.True(t, ok)
	assert.InDelta(t, 22.5, v[2], eps)

	v, _ = Evaluate(linearTrack(), 15)
	assert.InDelta(t, 22.5, v[2], eps)
}

func TestLinearUsesPostAndPre(t *testing.T) {
	track := []Keyframe{
		{Time: 0, Pre: Vec3{9, 9, 9}, Post: Vec3{0, 0, 0}},
		{Time: 1, Pre: Vec3{10, 10, 10}, Post: Vec3{-3, -3, -3}},
	}
	assert.Equal(t, Vec3{0, 0, 0}, LinearAlgorithm(track, 0, 0))
	assert.Equal(t, Vec3{10, 10, 10}, LinearAlgorithm(track, 0, 1))

	v, _ := Evaluate(track, 0.25)
	assert.InDelta(t, 2.5, v[0], eps)
}

func TestLinearIsMonotonic(t *testing.T) {
	track := []Keyframe{At(0, Vec3{0, 0, 0}), At(4, Vec3{8, -8, 1})}
	prev, _ := Evaluate(track, 0)
	for tm := float32(0.1); tm <= 4; tm += 0.1 {
		v, _ := Evaluate(track, tm)
		assert.GreaterOrEqual(t, v[0], prev[0])
		assert.LessOrEqual(t, v[1], prev[1])
		prev = v
	}
}

func TestSearchMatchesLinearScan(t *testing.T) {
	track := make([]Keyframe, 0, 50)
	for i := 0; i < 50; i++ {
		track = append(track, At(float32(i)*0.7, Vec3{float32(i), 0, 0}))
	}
	scan := func(tm float32) int {
		for i := 0; i < len(track)-1; i++ {
			if track[i].Time <= tm && tm < track[i+1].Time {
				return i
			}
		}
		return -1
	}
	for tm := float32(0.01); tm < track[len(track)-1].Time; tm += 0.13 {
		assert.Equal(t, scan(tm), Search(track, tm), "t=%v", tm)
	}
}

func TestEvaluateUsesFromInterpolator(t *testing.T) {
	easings := NewEasingRegistry()
	algorithms := NewAlgorithmRegistry()
	ip, err := ResolveInterpolator(algorithms, easings, AlgorithmStep, "")
	require.NoError(t, err)

	track := []Keyframe{
		{Time: 0, Pre: Vec3{}, Post: Vec3{}, Interpolator: ip},
		At(1, Vec3{1, 1, 1}),
		At(2, Vec3{0, 0, 0}),
	}
	v, _ := Evaluate(track, 0.9)
	assert.Equal(t, Vec3{}, v)

	v, _ = Evaluate(track, 1.5)
	assert.InDelta(t, 0.5, v[0], eps)
}

func TestCatmullRomPassesThroughControlPoints(t *testing.T) {
	track := []Keyframe{
		At(0, Vec3{0, 0, 0}),
		At(1, Vec3{1, 2, 3}),
		At(2, Vec3{4, 0, -1}),
		At(3, Vec3{2, 2, 2}),
	}
	for i := 0; i < len(track)-1; i++ {
		assert.Equal(t, track[i].Post, CatmullRomAlgorithm(track, i, 0))
		v := CatmullRomAlgorithm(track, i, 1)
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, track[i+1].Pre[axis], v[axis], eps)
		}
	}
}

func spikeTrack() []Keyframe {
	return []Keyframe{
		At(0, Vec3{100, 0, 0}),
		At(1, Vec3{0, 0, 0}),
		At(2, Vec3{1, 0, 0}),
		At(3, Vec3{2, 0, 0}),
		At(4, Vec3{3, 0, 0}),
	}
}

func TestCatmullRomControlPointsAreTwoAway(t *testing.T) {
	track := spikeTrack()
	v := CatmullRomAlgorithm(track, 2, 0.5)
	assert.InDelta(t, -4.75, v[0], eps)

	// the immediate neighbour does not take part
	track[1] = At(1, Vec3{-50, 0, 0})
	assert.Equal(t, v, CatmullRomAlgorithm(track, 2, 0.5))
}

func TestCatmullRomMissingControlPoints(t *testing.T) {
	track := spikeTrack()
	// i=1: p0 falls back to from.Post since track[-1] does not exist
	v := CatmullRomAlgorithm(track, 1, 0.5)
	assert.InDelta(t, catmullRom(0, 0, 1, 2, 0.5), v[0], eps)

	// i=3: p3 falls back to to.Pre
	v = CatmullRomAlgorithm(track, 3, 0.5)
	assert.InDelta(t, catmullRom(0, 2, 3, 3, 0.5), v[0], eps)
}

func TestEvaluateCatmullRomWithEasing(t *testing.T) {
	ip, err := ResolveInterpolator(NewAlgorithmRegistry(), NewEasingRegistry(), AlgorithmCatmullRom, "ease_in_quad")
	require.NoError(t, err)

	track := spikeTrack()
	track[2].Interpolator = ip

	v, ok := Evaluate(track, 2.5)
	require.True(t, ok)
	assert.InDelta(t, catmullRom(100, 1, 2, 3, 0.25), v[0], eps)
	assert.InDelta(t, -5.78125, v[0], eps)

	// neighbouring segments keep their own linear interpolator
	v, _ = Evaluate(track, 3.5)
	assert.InDelta(t, 2.5, v[0], eps)
}

func TestEvaluateNonFiniteTimes(t *testing.T) {
	nan := float32(math.NaN())
	track := []Keyframe{
		At(0, Vec3{0, 0, 0}),
		At(10, Vec3{1, 1, 1}),
		At(nan, Vec3{9, 9, 9}),
	}
	assert.NotPanics(t, func() {
		v, ok := Evaluate(track, 15)
		assert.True(t, ok)
		assert.Equal(t, Vec3{9, 9, 9}, v)
	})
	assert.NotPanics(t, func() {
		v, ok := Evaluate(linearTrack(), nan)
		assert.True(t, ok)
		assert.Equal(t, Vec3{0, 0, 0}, v)
	})
}

func TestResolveInterpolatorUnknownNames(t *testing.T) {
	easings := NewEasingRegistry()
	algorithms := NewAlgorithmRegistry()

	_, err := ResolveInterpolator(algorithms, easings, "bezier", "")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = ResolveInterpolator(algorithms, easings, "", "ease_sideways")
	assert.ErrorIs(t, err, ErrUnknownEasing)

	ip, err := ResolveInterpolator(algorithms, easings, "", "")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmLinear, ip.AlgorithmName)
	assert.Equal(t, EasingLinear, ip.EasingName)
}
