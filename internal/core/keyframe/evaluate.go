package keyframe

import "sort"

// Evaluate samples track at time t. It reports false for an empty track so the
// caller can substitute its channel's neutral value. Before the first keyframe
// the first Pre is held; from the last keyframe on, the last Post is held.
func Evaluate(track []Keyframe, t float32) (Vec3, bool) {
	n := len(track)
	if n == 0 {
		return Vec3{}, false
	}
	if t <= track[0].Time {
		return track[0].Pre, true
	}
	if t >= track[n-1].Time {
		return track[n-1].Post, true
	}

	i := Search(track, t)
	switch {
	case i < 0:
		return track[0].Pre, true
	case i+1 >= n:
		return track[n-1].Post, true
	}
	from, to := &track[i], &track[i+1]

	span := to.Time - from.Time
	progress := float32(1)
	if span > 0 {
		progress = clamp01((t - from.Time) / span)
	}
	eased := from.Interpolator.ease(progress)
	return from.Interpolator.algorithm()(track, i, eased), true
}

// Search returns i such that track[i].Time <= t < track[i+1].Time. It returns
// -1 or len-1 when t falls outside the track (or is NaN).
func Search(track []Keyframe, t float32) int {
	// first index whose time is strictly after t
	j := sort.Search(len(track), func(k int) bool { return track[k].Time > t })
	return j - 1
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
