// Package speedramp holds the piecewise playback-rate function over master time.
package speedramp

import (
	"math"
	"sort"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

const DefaultRate = 1.0

// Ramp keeps its segments sorted by Start and non-overlapping.
type Ramp struct {
	segments []domain.SpeedSegment
}

func New() *Ramp {
	return &Ramp{}
}

func (r *Ramp) Segments() []domain.SpeedSegment {
	out := make([]domain.SpeedSegment, len(r.segments))
	copy(out, r.segments)
	return out
}

// RateAt returns the rate of the segment containing t, else DefaultRate.
func (r *Ramp) RateAt(t time.Duration) float64 {
	if i := r.find(t); i >= 0 {
		return r.segments[i].Rate
	}
	return DefaultRate
}

// SetSegment inserts seg. Whatever part of an existing segment seg overlaps is
// replaced: earlier segments are truncated, later ones shortened, and a
// segment that fully contains seg is split around it.
func (r *Ramp) SetSegment(seg domain.SpeedSegment) error {
	if err := seg.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	next := make([]domain.SpeedSegment, 0, len(r.segments)+2)
	for _, cur := range r.segments {
		if cur.End <= seg.Start || cur.Start >= seg.End {
			next = append(next, cur)
			continue
		}
		if cur.Start < seg.Start {
			next = append(next, domain.SpeedSegment{Start: cur.Start, End: seg.Start, Rate: cur.Rate})
		}
		if cur.End > seg.End {
			next = append(next, domain.SpeedSegment{Start: seg.End, End: cur.End, Rate: cur.Rate})
		}
	}
	next = append(next, seg)
	sort.Slice(next, func(i, j int) bool { return next[i].Start < next[j].Start })
	r.segments = next
	return nil
}

// RemoveAt drops the segment containing t, if any.
func (r *Ramp) RemoveAt(t time.Duration) bool {
	i := r.find(t)
	if i < 0 {
		return false
	}
	r.segments = append(r.segments[:i], r.segments[i+1:]...)
	return true
}

func (r *Ramp) Clear() {
	r.segments = nil
}

// Advance moves master time forward from `from` by `wall` of real time,
// integrating the rate exactly across any segment boundary crossed.
func (r *Ramp) Advance(from time.Duration, wall time.Duration) time.Duration {
	t := from
	remaining := float64(wall)
	for remaining > 0 {
		rate := r.RateAt(t)
		boundary, ok := r.nextBoundary(t)
		if !ok {
			return t + time.Duration(math.Round(remaining*rate))
		}
		wallToBoundary := float64(boundary-t) / rate
		if wallToBoundary >= remaining {
			return t + time.Duration(math.Round(remaining*rate))
		}
		t = boundary
		remaining -= wallToBoundary
	}
	return t
}

// nextBoundary is the first segment edge strictly after t.
func (r *Ramp) nextBoundary(t time.Duration) (time.Duration, bool) {
	for _, s := range r.segments {
		if s.Start > t {
			return s.Start, true
		}
		if s.End > t {
			return s.End, true
		}
	}
	return 0, false
}

func (r *Ramp) find(t time.Duration) int {
	i := sort.Search(len(r.segments), func(i int) bool { return r.segments[i].End > t })
	if i < len(r.segments) && r.segments[i].Contains(t) {
		return i
	}
	return -1
}
