package clipstore

import (
	"testing"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

func sec(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func clip(id string, total, start, end float64) domain.Clip {
	return domain.Clip{ID: id, SourceURI: id + ".mp4", TotalDuration: sec(total), TrimStart: sec(start), TrimEnd: sec(end)}
}

func sumLengths(s *Store) time.Duration {
	var total time.Duration
	for _, c := range s.Clips() {
		total += c.Length()
	}
	return total
}

func TestStore_MasterDurationTracksEdits(t *testing.T) {
	s := New()
	check := func(step string) {
		t.Helper()
		if got, want := s.MasterDuration(), sumLengths(s); got != want {
			t.Fatalf("%s: master duration %v, sum of clips %v", step, got, want)
		}
	}

	if _, err := s.Append(clip("a", 10, 0, 4)); err != nil {
		t.Fatalf("append a: %v", err)
	}
	check("append a")
	if _, err := s.Append(clip("b", 8, 1, 7)); err != nil {
		t.Fatalf("append b: %v", err)
	}
	check("append b")
	if _, err := s.Insert(1, clip("c", 3, 0, 3)); err != nil {
		t.Fatalf("insert c: %v", err)
	}
	check("insert c")
	if err := s.Trim("b", sec(2), sec(5)); err != nil {
		t.Fatalf("trim b: %v", err)
	}
	check("trim b")
	if _, err := s.Remove("c"); err != nil {
		t.Fatalf("remove c: %v", err)
	}
	check("remove c")
	if err := s.Move("b", 0); err != nil {
		t.Fatalf("move b: %v", err)
	}
	check("move b")

	if got := s.MasterDuration(); got != sec(7) {
		t.Fatalf("final master duration %v, want 7s", got)
	}
}

func TestStore_RejectsInvalidTrim(t *testing.T) {
	s := New()
	if _, err := s.Append(clip("a", 5, 0, 5)); err != nil {
		t.Fatalf("append: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Duration
	}{
		{"negative start", -sec(1), sec(2)},
		{"empty range", sec(2), sec(2)},
		{"reversed", sec(3), sec(1)},
		{"past total", sec(1), sec(6)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Trim("a", tc.start, tc.end)
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if s.MasterDuration() != sec(5) {
				t.Fatalf("failed trim changed duration to %v", s.MasterDuration())
			}
		})
	}

	if err := s.Trim("missing", 0, sec(1)); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_LocateScenarioA(t *testing.T) {
	s := New()
	_, _ = s.Append(clip("clip1", 10, 2, 6))
	_, _ = s.Append(clip("clip2", 10, 3, 9))

	e, err := s.Locate(sec(5))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if e.Clip == nil || e.Clip.ID != "clip2" {
		t.Fatalf("expected clip2, got %+v", e.Clip)
	}
	if e.Local != sec(1) {
		t.Fatalf("expected local offset 1s, got %v", e.Local)
	}
	if e.SourcePosition() != sec(4) {
		t.Fatalf("expected source position 4s, got %v", e.SourcePosition())
	}
}

func TestStore_LocateHalfOpenBoundaries(t *testing.T) {
	s := New()
	_, _ = s.Append(clip("a", 4, 0, 4))
	_, _ = s.Append(clip("b", 6, 0, 6))
	_, _ = s.Append(clip("c", 1, 0, 0.5))

	cases := []struct {
		at    time.Duration
		id    string
		local time.Duration
	}{
		{0, "a", 0},
		{sec(4) - 1, "a", sec(4) - 1},
		{sec(4), "b", 0},
		{sec(10), "c", 0},
		{sec(10.5) - 1, "c", sec(0.5) - 1},
	}
	for _, tc := range cases {
		e, err := s.Locate(tc.at)
		if err != nil {
			t.Fatalf("locate %v: %v", tc.at, err)
		}
		if e.Clip.ID != tc.id || e.Local != tc.local {
			t.Fatalf("locate %v: got (%s, %v), want (%s, %v)", tc.at, e.Clip.ID, e.Local, tc.id, tc.local)
		}
	}

	if _, err := s.Locate(s.MasterDuration()); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("end of timeline should be outside, got %v", err)
	}
	if _, err := s.Locate(-1); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("negative time should be outside, got %v", err)
	}
}

func TestStore_EveryInstantHasExactlyOneClip(t *testing.T) {
	s := New()
	_, _ = s.Append(clip("a", 3, 0.5, 1.25))
	_, _ = s.Append(clip("b", 2, 0, 2))
	_, _ = s.Append(clip("c", 9, 4, 4.75))

	step := 10 * time.Millisecond
	counts := map[string]time.Duration{}
	for at := time.Duration(0); at < s.MasterDuration(); at += step {
		e, err := s.Locate(at)
		if err != nil {
			t.Fatalf("no clip at %v: %v", at, err)
		}
		if at < e.Start || at >= e.End {
			t.Fatalf("%v outside entry bounds [%v, %v)", at, e.Start, e.End)
		}
		counts[e.Clip.ID] += step
	}
	for _, c := range s.Clips() {
		if counts[c.ID] != c.Length() {
			t.Fatalf("clip %s covered %v, want %v", c.ID, counts[c.ID], c.Length())
		}
	}
}

func TestStore_SlideshowMode(t *testing.T) {
	s := New()
	_, _ = s.Append(clip("a", 4, 0, 4))

	err := s.SetSlides([]domain.Slide{{ImageURI: "1.png"}, {ImageURI: "2.png"}, {ImageURI: "3.png"}}, sec(2))
	if err != nil {
		t.Fatalf("set slides: %v", err)
	}
	if s.Mode() != domain.MediaModeSlideshow {
		t.Fatalf("expected slideshow mode")
	}
	if len(s.Clips()) != 0 {
		t.Fatalf("slideshow should drop clips")
	}
	if s.MasterDuration() != sec(6) {
		t.Fatalf("master duration %v, want 6s", s.MasterDuration())
	}

	e, err := s.Locate(sec(4))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if e.Slide == nil || e.Slide.ImageURI != "3.png" || e.Local != 0 {
		t.Fatalf("unexpected entry %+v", e)
	}

	if _, err := s.Append(clip("b", 2, 0, 2)); err != nil {
		t.Fatalf("append after slideshow: %v", err)
	}
	if s.Mode() != domain.MediaModeVideo || s.MasterDuration() != sec(2) {
		t.Fatalf("expected video mode with 2s, got %s %v", s.Mode(), s.MasterDuration())
	}
}

func TestStore_RemoveLast(t *testing.T) {
	s := New()
	if _, err := s.RemoveLast(); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	_, _ = s.Append(clip("a", 1, 0, 1))
	_, _ = s.Append(clip("b", 2, 0, 2))

	removed, err := s.RemoveLast()
	if err != nil {
		t.Fatalf("remove last: %v", err)
	}
	if removed.ID != "b" || s.MasterDuration() != sec(1) {
		t.Fatalf("removed %s, remaining %v", removed.ID, s.MasterDuration())
	}
}
