package speedramp

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

func sec(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func seg(start, end, rate float64) domain.SpeedSegment {
	return domain.SpeedSegment{Start: sec(start), End: sec(end), Rate: rate}
}

func assertWellFormed(t *testing.T, segs []domain.SpeedSegment) {
	t.Helper()
	for i, s := range segs {
		if err := s.Validate(); err != nil {
			t.Fatalf("segment %d invalid: %v", i, err)
		}
		if i > 0 && segs[i-1].End > s.Start {
			t.Fatalf("segments %d and %d overlap or are unsorted: %+v %+v", i-1, i, segs[i-1], s)
		}
	}
}

func TestRamp_ScenarioD(t *testing.T) {
	r := New()
	if err := r.SetSegment(seg(0, 5, 2.0)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.SetSegment(seg(3, 8, 0.5)); err != nil {
		t.Fatalf("set: %v", err)
	}

	want := []domain.SpeedSegment{seg(0, 3, 2.0), seg(3, 8, 0.5)}
	if got := r.Segments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRamp_SetSegmentSplitsContainingSegment(t *testing.T) {
	r := New()
	_ = r.SetSegment(seg(0, 10, 2))
	_ = r.SetSegment(seg(4, 6, 0.25))

	want := []domain.SpeedSegment{seg(0, 4, 2), seg(4, 6, 0.25), seg(6, 10, 2)}
	if got := r.Segments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRamp_SetSegmentSwallowsCoveredSegments(t *testing.T) {
	r := New()
	_ = r.SetSegment(seg(1, 2, 2))
	_ = r.SetSegment(seg(3, 4, 3))
	_ = r.SetSegment(seg(0, 5, 0.5))

	want := []domain.SpeedSegment{seg(0, 5, 0.5)}
	if got := r.Segments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRamp_RejectsInvalidSegments(t *testing.T) {
	r := New()
	for _, s := range []domain.SpeedSegment{seg(2, 2, 1), seg(3, 1, 1), seg(0, 1, 0), seg(0, 1, -1), seg(-1, 1, 1)} {
		if err := r.SetSegment(s); !errors.Is(err, errors.ErrInvalidInput) {
			t.Fatalf("segment %+v: expected ErrInvalidInput, got %v", s, err)
		}
	}
	if len(r.Segments()) != 0 {
		t.Fatalf("invalid segments must not be stored")
	}
}

func TestRamp_RandomInsertsStayOrdered(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := New()
	for i := 0; i < 200; i++ {
		start := rng.Intn(60)
		length := 1 + rng.Intn(10)
		rate := 0.25 + rng.Float64()*3
		s := domain.SpeedSegment{Start: time.Duration(start) * time.Second, End: time.Duration(start+length) * time.Second, Rate: rate}
		if err := r.SetSegment(s); err != nil {
			t.Fatalf("set %+v: %v", s, err)
		}
		assertWellFormed(t, r.Segments())

		// The latest writer always owns its range.
		for at := s.Start; at < s.End; at += 250 * time.Millisecond {
			if got := r.RateAt(at); got != rate {
				t.Fatalf("rate at %v = %v, want %v", at, got, rate)
			}
		}
	}
}

func TestRamp_RateAtDefaultsOutsideSegments(t *testing.T) {
	r := New()
	_ = r.SetSegment(seg(2, 4, 3))

	cases := map[time.Duration]float64{
		0:            1,
		sec(2) - 1:   1,
		sec(2):       3,
		sec(3.99):    3,
		sec(4):       1,
		sec(100):     1,
		-time.Second: 1,
	}
	for at, want := range cases {
		if got := r.RateAt(at); got != want {
			t.Fatalf("rate at %v = %v, want %v", at, got, want)
		}
	}
}

func TestRamp_AdvanceIntegratesAcrossBoundaries(t *testing.T) {
	r := New()
	_ = r.SetSegment(seg(1, 2, 2))

	cases := []struct {
		name string
		from time.Duration
		wall time.Duration
		want time.Duration
	}{
		{"no segment", 0, 500 * time.Millisecond, 500 * time.Millisecond},
		{"inside segment", time.Second, 250 * time.Millisecond, 1500 * time.Millisecond},
		// 0.9 -> 1.0 at rate 1 takes 100ms, remaining 100ms at rate 2 -> 1.2
		{"enter segment mid-frame", 900 * time.Millisecond, 200 * time.Millisecond, 1200 * time.Millisecond},
		// 1.9 -> 2.0 at rate 2 takes 50ms, remaining 50ms at rate 1 -> 2.05
		{"leave segment mid-frame", 1900 * time.Millisecond, 100 * time.Millisecond, 2050 * time.Millisecond},
		// 0 -> 1 (1s), 1 -> 2 (0.5s), then 0.5s at rate 1
		{"cross whole segment", 0, 2 * time.Second, 2500 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Advance(tc.from, tc.wall); got != tc.want {
				t.Fatalf("advance(%v, %v) = %v, want %v", tc.from, tc.wall, got, tc.want)
			}
		})
	}
}

func TestRamp_RemoveAt(t *testing.T) {
	r := New()
	_ = r.SetSegment(seg(0, 1, 2))
	_ = r.SetSegment(seg(1, 2, 3))

	if !r.RemoveAt(sec(1.5)) {
		t.Fatalf("expected a segment to be removed")
	}
	if r.RemoveAt(sec(1.5)) {
		t.Fatalf("nothing left to remove at 1.5s")
	}
	if got := r.RateAt(sec(1.5)); got != 1 {
		t.Fatalf("rate after removal %v, want 1", got)
	}
}
