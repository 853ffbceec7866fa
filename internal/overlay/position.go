package overlay

import (
	"sort"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
)

// PositionAt resolves an overlay's transform at master time `at`.
//
// Without keyframes the static transform is used. With keyframes, the pair
// bracketing `at` is linearly interpolated; before the first or after the
// last keyframe the nearest one is returned unchanged.
func PositionAt(o domain.Overlay, at time.Duration) domain.Transform {
	kfs := o.Keyframes
	if len(kfs) == 0 {
		return o.Transform
	}
	if at <= kfs[0].Timestamp {
		return kfs[0].Transform
	}
	last := kfs[len(kfs)-1]
	if at >= last.Timestamp {
		return last.Transform
	}

	// first keyframe strictly after `at`; i >= 1 here
	i := sort.Search(len(kfs), func(i int) bool { return kfs[i].Timestamp > at })
	prev, next := kfs[i-1], kfs[i]
	f := float64(at-prev.Timestamp) / float64(next.Timestamp-prev.Timestamp)

	return domain.Transform{
		X:        lerp(prev.X, next.X, f),
		Y:        lerp(prev.Y, next.Y, f),
		Scale:    lerp(prev.Scale, next.Scale, f),
		Rotation: lerp(prev.Rotation, next.Rotation, f),
	}
}

func lerp(a, b, f float64) float64 {
	if f == 0 {
		return a
	}
	return a + (b-a)*f
}
