// Package composition is the aggregate root of an edited reel. It owns the
// clip store, the overlay track and the speed ramp behind a single lock so
// that the master duration and everything derived from it stay consistent.
package composition

import (
	"sync"
	"time"

	"github.com/orgball2608/reel-studio/internal/clipstore"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/overlay"
	"github.com/orgball2608/reel-studio/internal/speedramp"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

type Composition struct {
	mu sync.Mutex

	clips    *clipstore.Store
	overlays *overlay.Track
	ramp     *speedramp.Ramp

	backgroundURI  string
	backgroundGain float64
	filter         string
}

func New() *Composition {
	return &Composition{
		clips:          clipstore.New(),
		overlays:       overlay.New(),
		ramp:           speedramp.New(),
		backgroundGain: 1,
	}
}

// FromSnapshot rebuilds a composition from its serialized form, validating
// every clip, segment and overlay on the way in.
func FromSnapshot(s domain.Composition) (*Composition, error) {
	c := New()
	if s.Mode == domain.MediaModeSlideshow {
		if err := c.clips.SetSlides(s.Slides, s.SlideDuration); err != nil {
			return nil, errors.Wrap(err, "restore slides")
		}
	} else {
		for _, clip := range s.Clips {
			if _, err := c.clips.Append(clip); err != nil {
				return nil, errors.Wrapf(err, "restore clip %s", clip.ID)
			}
		}
	}
	for _, seg := range s.SpeedSegments {
		if err := c.ramp.SetSegment(seg); err != nil {
			return nil, errors.Wrap(err, "restore speed segment")
		}
	}
	total := c.clips.MasterDuration()
	for _, o := range s.Overlays {
		if _, err := c.overlays.Add(o, total); err != nil {
			return nil, errors.Wrapf(err, "restore overlay %s", o.ID)
		}
	}
	c.backgroundURI = s.BackgroundURI
	c.backgroundGain = s.BackgroundGain
	c.filter = s.Filter
	return c, nil
}

func (c *Composition) Snapshot() domain.Composition {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := domain.Composition{
		Mode:           c.clips.Mode(),
		Overlays:       c.overlays.All(),
		SpeedSegments:  c.ramp.Segments(),
		BackgroundURI:  c.backgroundURI,
		BackgroundGain: c.backgroundGain,
		Filter:         c.filter,
	}
	if s.Mode == domain.MediaModeSlideshow {
		s.Slides = c.clips.Slides()
		s.SlideDuration = c.clips.SlideDuration()
	} else {
		s.Clips = c.clips.Clips()
	}
	return s
}

// Clip edits. Each one re-clamps overlays to the new master duration.

func (c *Composition) AppendClip(clip domain.Clip) (domain.Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	added, err := c.clips.Append(clip)
	if err != nil {
		return domain.Clip{}, err
	}
	c.clampOverlays()
	return added, nil
}

func (c *Composition) InsertClip(index int, clip domain.Clip) (domain.Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	added, err := c.clips.Insert(index, clip)
	if err != nil {
		return domain.Clip{}, err
	}
	c.clampOverlays()
	return added, nil
}

func (c *Composition) TrimClip(id string, start, end time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.clips.Trim(id, start, end); err != nil {
		return err
	}
	c.clampOverlays()
	return nil
}

func (c *Composition) RemoveClip(id string) (domain.Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.clips.Remove(id)
	if err != nil {
		return domain.Clip{}, err
	}
	c.clampOverlays()
	return removed, nil
}

func (c *Composition) RemoveLastClip() (domain.Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.clips.RemoveLast()
	if err != nil {
		return domain.Clip{}, err
	}
	c.clampOverlays()
	return removed, nil
}

func (c *Composition) MoveClip(id string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clips.Move(id, index)
}

func (c *Composition) SetSlides(slides []domain.Slide, perSlide time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.clips.SetSlides(slides, perSlide); err != nil {
		return err
	}
	c.clampOverlays()
	return nil
}

func (c *Composition) Clips() []domain.Clip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clips.Clips()
}

// ClipCount is the number of video clips. Slides are not counted.
func (c *Composition) ClipCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clips.ClipLen()
}

// Overlay edits.

func (c *Composition) AddOverlay(o domain.Overlay) (domain.Overlay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Add(o, c.clips.MasterDuration())
}

func (c *Composition) RemoveOverlay(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Remove(id)
}

func (c *Composition) SetOverlayTiming(id string, start, end time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.SetTiming(id, start, end, c.clips.MasterDuration())
}

func (c *Composition) SetTracking(id string, tracking bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.SetTracking(id, tracking)
}

func (c *Composition) RecordKeyframe(id string, at time.Duration, tr domain.Transform) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.RecordKeyframe(id, at, tr)
}

func (c *Composition) DragOverlay(id string, at time.Duration, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Drag(id, at, x, y)
}

func (c *Composition) ClearKeyframes(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.ClearKeyframes(id)
}

func (c *Composition) AttachNarration(id, uri string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.AttachNarration(id, uri)
}

func (c *Composition) AddCaptions(entries []domain.TranscriptEntry, base domain.Transform) []domain.Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.AddCaptions(entries, base, c.clips.MasterDuration())
}

func (c *Composition) Overlays() []domain.Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.All()
}

func (c *Composition) Overlay(id string) (domain.Overlay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Get(id)
}

// Speed ramp edits.

func (c *Composition) SetSpeedSegment(seg domain.SpeedSegment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ramp.SetSegment(seg)
}

func (c *Composition) RemoveSpeedSegmentAt(t time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ramp.RemoveAt(t)
}

func (c *Composition) ClearSpeed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ramp.Clear()
}

func (c *Composition) SpeedSegments() []domain.SpeedSegment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ramp.Segments()
}

// Background track and filter.

func (c *Composition) SetBackground(uri string, gain float64) error {
	if gain < 0 || gain > 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "background gain %v outside [0, 1]", gain)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backgroundURI = uri
	c.backgroundGain = gain
	return nil
}

func (c *Composition) Background() (string, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backgroundURI, c.backgroundGain
}

func (c *Composition) SetFilter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = name
}

func (c *Composition) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Timeline queries used by the clock, the compositor and capture.

func (c *Composition) MasterDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clips.MasterDuration()
}

func (c *Composition) Locate(t time.Duration) (clipstore.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clips.Locate(t)
}

func (c *Composition) RateAt(t time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ramp.RateAt(t)
}

func (c *Composition) Advance(from, wall time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ramp.Advance(from, wall)
}

// Resolve returns the active overlays at t with their resolved transforms.
func (c *Composition) Resolve(t time.Duration) []overlay.Resolved {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Resolve(t)
}

func (c *Composition) NarrationCommands(t time.Duration) []overlay.NarrationCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.NarrationCommands(t)
}

func (c *Composition) ResetNarration() []overlay.NarrationCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.ResetNarration()
}

func (c *Composition) clampOverlays() {
	c.overlays.ClampTo(c.clips.MasterDuration())
}
