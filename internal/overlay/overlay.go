// Package overlay manages the time-ranged overlays layered on the timeline.
package overlay

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

// Resolved is an active overlay with its transform at a given master time.
type Resolved struct {
	Overlay   domain.Overlay
	Transform domain.Transform
}

type NarrationAction int

const (
	NarrationStart NarrationAction = iota
	NarrationStop
)

// NarrationCommand tells the driver to start a narration clip at Offset, or
// to stop and rewind it.
type NarrationCommand struct {
	OverlayID string
	URI       string
	Action    NarrationAction
	Offset    time.Duration
	// Release is set on stops for overlays that were removed or whose
	// narration was replaced; the driver should close the handle.
	Release bool
}

// Track is not safe for concurrent use; composition.Composition guards it.
type Track struct {
	overlays []*domain.Overlay
	playing  map[string]bool
	// released holds stops for narrations that left the track between ticks.
	released []NarrationCommand
}

func New() *Track {
	return &Track{playing: make(map[string]bool)}
}

// Add validates o against the current master duration and appends it on top.
func (t *Track) Add(o domain.Overlay, masterDuration time.Duration) (domain.Overlay, error) {
	switch o.Kind {
	case domain.OverlayText, domain.OverlaySticker, domain.OverlayPoll:
	default:
		return domain.Overlay{}, errors.Wrapf(errors.ErrInvalidInput, "unknown overlay kind %q", o.Kind)
	}
	if err := checkTiming(o.Start, o.End, masterDuration); err != nil {
		return domain.Overlay{}, err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if _, ok := t.find(o.ID); ok {
		return domain.Overlay{}, errors.Wrapf(errors.ErrInvalidInput, "overlay %s already present", o.ID)
	}
	if o.Transform.Scale == 0 {
		o.Transform.Scale = 1
	}
	o.Keyframes = append([]domain.Keyframe(nil), o.Keyframes...)
	sortKeyframes(o.Keyframes)

	stored := o
	t.overlays = append(t.overlays, &stored)
	return stored, nil
}

func (t *Track) Remove(id string) error {
	for i, o := range t.overlays {
		if o.ID == id {
			t.overlays = append(t.overlays[:i], t.overlays[i+1:]...)
			t.release(o)
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
}

func (t *Track) Get(id string) (domain.Overlay, bool) {
	o, ok := t.find(id)
	if !ok {
		return domain.Overlay{}, false
	}
	return clone(o), true
}

func (t *Track) All() []domain.Overlay {
	out := make([]domain.Overlay, 0, len(t.overlays))
	for _, o := range t.overlays {
		out = append(out, clone(o))
	}
	return out
}

func (t *Track) SetTiming(id string, start, end, masterDuration time.Duration) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	if err := checkTiming(start, end, masterDuration); err != nil {
		return err
	}
	o.Start, o.End = start, end
	return nil
}

// ActiveAt returns overlays with Start <= at <= End in z-order.
func (t *Track) ActiveAt(at time.Duration) []domain.Overlay {
	var out []domain.Overlay
	for _, o := range t.overlays {
		if o.ActiveAt(at) {
			out = append(out, clone(o))
		}
	}
	return out
}

// Resolve returns the active overlays with their transforms at `at`.
func (t *Track) Resolve(at time.Duration) []Resolved {
	var out []Resolved
	for _, o := range t.overlays {
		if o.ActiveAt(at) {
			out = append(out, Resolved{Overlay: clone(o), Transform: PositionAt(*o, at)})
		}
	}
	return out
}

// SetTracking switches an overlay in or out of keyframe-recording mode.
func (t *Track) SetTracking(id string, tracking bool) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	o.Tracking = tracking
	return nil
}

// RecordKeyframe stores a transform sample at `at`. It is only allowed while
// the overlay is in tracking mode. A sample at an existing timestamp replaces it.
func (t *Track) RecordKeyframe(id string, at time.Duration, tr domain.Transform) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	if !o.Tracking {
		return errors.Wrapf(errors.ErrInvalidState, "overlay %s is not in tracking mode", id)
	}
	for i := range o.Keyframes {
		if o.Keyframes[i].Timestamp == at {
			o.Keyframes[i].Transform = tr
			return nil
		}
	}
	o.Keyframes = append(o.Keyframes, domain.Keyframe{Timestamp: at, Transform: tr})
	sortKeyframes(o.Keyframes)
	return nil
}

// Drag moves an overlay. In tracking mode the move becomes a keyframe at `at`
// keeping the current scale and rotation; otherwise the static position changes.
func (t *Track) Drag(id string, at time.Duration, x, y float64) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	if !o.Tracking {
		o.Transform.X, o.Transform.Y = x, y
		return nil
	}
	tr := PositionAt(*o, at)
	tr.X, tr.Y = x, y
	return t.RecordKeyframe(id, at, tr)
}

func (t *Track) ClearKeyframes(id string) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	o.Keyframes = nil
	return nil
}

func (t *Track) AttachNarration(id, uri string) error {
	o, ok := t.find(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "overlay %s", id)
	}
	if o.NarrationURI == uri {
		return nil
	}
	t.release(o)
	o.NarrationURI = uri
	return nil
}

// release queues a stop that closes o's narration handle on the next
// NarrationCommands call.
func (t *Track) release(o *domain.Overlay) {
	delete(t.playing, o.ID)
	if o.NarrationURI == "" {
		return
	}
	t.released = append(t.released, NarrationCommand{OverlayID: o.ID, URI: o.NarrationURI, Action: NarrationStop, Release: true})
}

// NarrationCommands compares each narrated overlay's range with `at` and
// emits a start when it is entered and a stop when it is left. Stops for
// removed or replaced narrations come first.
func (t *Track) NarrationCommands(at time.Duration) []NarrationCommand {
	cmds := t.released
	t.released = nil
	for _, o := range t.overlays {
		if o.NarrationURI == "" {
			continue
		}
		inside := o.ActiveAt(at)
		playing := t.playing[o.ID]
		switch {
		case inside && !playing:
			t.playing[o.ID] = true
			cmds = append(cmds, NarrationCommand{OverlayID: o.ID, URI: o.NarrationURI, Action: NarrationStart, Offset: at - o.Start})
		case !inside && playing:
			t.playing[o.ID] = false
			cmds = append(cmds, NarrationCommand{OverlayID: o.ID, URI: o.NarrationURI, Action: NarrationStop})
		}
	}
	return cmds
}

// ResetNarration stops every playing narration, used when the timeline wraps.
func (t *Track) ResetNarration() []NarrationCommand {
	cmds := t.released
	t.released = nil
	for _, o := range t.overlays {
		if t.playing[o.ID] {
			cmds = append(cmds, NarrationCommand{OverlayID: o.ID, URI: o.NarrationURI, Action: NarrationStop})
		}
	}
	t.playing = make(map[string]bool)
	return cmds
}

// ClampTo keeps End <= masterDuration after the timeline shrinks. Overlays
// that start past the new end are dropped.
func (t *Track) ClampTo(masterDuration time.Duration) []string {
	var dropped []string
	kept := t.overlays[:0]
	for _, o := range t.overlays {
		if o.Start > masterDuration {
			dropped = append(dropped, o.ID)
			t.release(o)
			continue
		}
		if o.End > masterDuration {
			o.End = masterDuration
		}
		kept = append(kept, o)
	}
	t.overlays = kept
	return dropped
}

// AddCaptions bulk-creates text overlays from transcript lines. Empty lines
// and lines starting past the end are skipped.
func (t *Track) AddCaptions(entries []domain.TranscriptEntry, base domain.Transform, masterDuration time.Duration) []domain.Overlay {
	var added []domain.Overlay
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" || e.Start >= masterDuration || e.End < e.Start {
			continue
		}
		end := e.End
		if end > masterDuration {
			end = masterDuration
		}
		o, err := t.Add(domain.Overlay{
			Kind:      domain.OverlayText,
			Content:   text,
			Start:     e.Start,
			End:       end,
			Transform: base,
		}, masterDuration)
		if err != nil {
			continue
		}
		added = append(added, o)
	}
	return added
}

func (t *Track) find(id string) (*domain.Overlay, bool) {
	for _, o := range t.overlays {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

func checkTiming(start, end, masterDuration time.Duration) error {
	if start < 0 || start > end {
		return errors.Wrapf(errors.ErrInvalidInput, "overlay range [%v, %v] is reversed or negative", start, end)
	}
	if end > masterDuration {
		return errors.Wrapf(errors.ErrInvalidInput, "overlay end %v exceeds master duration %v", end, masterDuration)
	}
	return nil
}

func sortKeyframes(kfs []domain.Keyframe) {
	sort.SliceStable(kfs, func(i, j int) bool { return kfs[i].Timestamp < kfs[j].Timestamp })
}

func clone(o *domain.Overlay) domain.Overlay {
	c := *o
	c.Keyframes = append([]domain.Keyframe(nil), o.Keyframes...)
	return c
}
