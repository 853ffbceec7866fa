// Package clipstore keeps the ordered clips (or slides) of a composition and
// the prefix sums used to map master time onto them.
package clipstore

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

// Entry is the timeline item covering a master time.
type Entry struct {
	Index int
	// Key identifies the entry across edits (clip or slide id).
	Key   string
	Clip  *domain.Clip
	Slide *domain.Slide
	// Start and End are the entry's master-time bounds, [Start, End).
	Start time.Duration
	End   time.Duration
	// Local is the offset from Start.
	Local time.Duration
}

// SourcePosition is where a playback handle on the clip's source should be.
func (e Entry) SourcePosition() time.Duration {
	if e.Clip == nil {
		return e.Local
	}
	return e.Clip.TrimStart + e.Local
}

// Store is not safe for concurrent use; composition.Composition guards it.
type Store struct {
	mode          domain.MediaMode
	clips         []domain.Clip
	slides        []domain.Slide
	slideDuration time.Duration
	// ends[i] is the master time at which entry i ends.
	ends []time.Duration
}

func New() *Store {
	return &Store{mode: domain.MediaModeVideo}
}

func (s *Store) Mode() domain.MediaMode {
	return s.mode
}

func (s *Store) Len() int {
	if s.mode == domain.MediaModeSlideshow {
		return len(s.slides)
	}
	return len(s.clips)
}

// ClipLen counts video clips only; a slideshow has none.
func (s *Store) ClipLen() int {
	return len(s.clips)
}

// MasterDuration is the sum of trimmed clip lengths, or slides × slide duration.
func (s *Store) MasterDuration() time.Duration {
	if len(s.ends) == 0 {
		return 0
	}
	return s.ends[len(s.ends)-1]
}

func (s *Store) Clips() []domain.Clip {
	out := make([]domain.Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

func (s *Store) Slides() []domain.Slide {
	out := make([]domain.Slide, len(s.slides))
	copy(out, s.slides)
	return out
}

func (s *Store) SlideDuration() time.Duration {
	return s.slideDuration
}

// Append adds a clip at the end of the timeline. Appending a clip to a
// slideshow switches the store back to video mode and drops the slides.
func (s *Store) Append(clip domain.Clip) (domain.Clip, error) {
	return s.Insert(len(s.clips), clip)
}

// Insert places clip at index, shifting later clips right.
func (s *Store) Insert(index int, clip domain.Clip) (domain.Clip, error) {
	if clip.ID == "" {
		clip.ID = uuid.NewString()
	}
	if err := clip.Validate(); err != nil {
		return domain.Clip{}, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if index < 0 || index > len(s.clips) {
		return domain.Clip{}, errors.Wrapf(errors.ErrInvalidInput, "insert index %d out of range [0, %d]", index, len(s.clips))
	}
	if s.indexOf(clip.ID) >= 0 {
		return domain.Clip{}, errors.Wrapf(errors.ErrInvalidInput, "clip %s already present", clip.ID)
	}
	if s.mode == domain.MediaModeSlideshow {
		s.switchToVideo()
	}

	s.clips = append(s.clips, domain.Clip{})
	copy(s.clips[index+1:], s.clips[index:])
	s.clips[index] = clip
	s.rebuild()
	return clip, nil
}

// Trim changes a clip's trim range.
func (s *Store) Trim(id string, start, end time.Duration) error {
	i := s.indexOf(id)
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "clip %s", id)
	}
	trimmed := s.clips[i]
	trimmed.TrimStart = start
	trimmed.TrimEnd = end
	if err := trimmed.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	s.clips[i] = trimmed
	s.rebuild()
	return nil
}

// Remove deletes the clip with the given id.
func (s *Store) Remove(id string) (domain.Clip, error) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Clip{}, errors.Wrapf(errors.ErrNotFound, "clip %s", id)
	}
	removed := s.clips[i]
	s.clips = append(s.clips[:i], s.clips[i+1:]...)
	s.rebuild()
	return removed, nil
}

// RemoveLast deletes the most recently appended clip.
func (s *Store) RemoveLast() (domain.Clip, error) {
	if len(s.clips) == 0 {
		return domain.Clip{}, errors.Wrap(errors.ErrNotFound, "no clips")
	}
	return s.Remove(s.clips[len(s.clips)-1].ID)
}

// Move reorders a clip to index.
func (s *Store) Move(id string, index int) error {
	i := s.indexOf(id)
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "clip %s", id)
	}
	if index < 0 || index >= len(s.clips) {
		return errors.Wrapf(errors.ErrInvalidInput, "move index %d out of range [0, %d)", index, len(s.clips))
	}
	clip := s.clips[i]
	s.clips = append(s.clips[:i], s.clips[i+1:]...)
	s.clips = append(s.clips, domain.Clip{})
	copy(s.clips[index+1:], s.clips[index:])
	s.clips[index] = clip
	s.rebuild()
	return nil
}

// SetSlides switches to slideshow mode. Existing clips are dropped since the
// two media modes are mutually exclusive.
func (s *Store) SetSlides(slides []domain.Slide, perSlide time.Duration) error {
	if perSlide <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "slide duration %v must be positive", perSlide)
	}
	out := make([]domain.Slide, len(slides))
	for i, slide := range slides {
		if slide.ImageURI == "" {
			return errors.Wrapf(errors.ErrInvalidInput, "slide %d has no image", i)
		}
		if slide.ID == "" {
			slide.ID = uuid.NewString()
		}
		out[i] = slide
	}
	s.mode = domain.MediaModeSlideshow
	s.clips = nil
	s.slides = out
	s.slideDuration = perSlide
	s.rebuild()
	return nil
}

// Locate maps a master time onto the entry that covers it. Entries are
// half-open, so a time on a boundary belongs to the next entry.
func (s *Store) Locate(t time.Duration) (Entry, error) {
	total := s.MasterDuration()
	if t < 0 || t >= total {
		return Entry{}, errors.Wrapf(errors.ErrNotFound, "master time %v outside [0, %v)", t, total)
	}
	i := sort.Search(len(s.ends), func(i int) bool { return s.ends[i] > t })

	var start time.Duration
	if i > 0 {
		start = s.ends[i-1]
	}
	e := Entry{
		Index: i,
		Start: start,
		End:   s.ends[i],
		Local: t - start,
	}
	if s.mode == domain.MediaModeSlideshow {
		slide := s.slides[i]
		e.Slide = &slide
		e.Key = fmt.Sprintf("slide:%s", slide.ID)
	} else {
		clip := s.clips[i]
		e.Clip = &clip
		e.Key = fmt.Sprintf("clip:%s", clip.ID)
	}
	return e, nil
}

func (s *Store) Get(id string) (domain.Clip, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Clip{}, false
	}
	return s.clips[i], true
}

func (s *Store) indexOf(id string) int {
	for i := range s.clips {
		if s.clips[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) switchToVideo() {
	s.mode = domain.MediaModeVideo
	s.slides = nil
	s.slideDuration = 0
}

func (s *Store) rebuild() {
	n := s.Len()
	s.ends = s.ends[:0]
	var acc time.Duration
	for i := 0; i < n; i++ {
		if s.mode == domain.MediaModeSlideshow {
			acc += s.slideDuration
		} else {
			acc += s.clips[i].Length()
		}
		s.ends = append(s.ends, acc)
	}
}
