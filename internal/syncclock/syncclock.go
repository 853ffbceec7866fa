// Package syncclock owns master time. Tick advances it through the speed
// ramp and reports what the driver should do; Resync pulls independently
// clocked playback handles back to it.
package syncclock

import (
	"time"

	"github.com/orgball2608/reel-studio/internal/clipstore"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

// ResyncTolerance is how far a handle may drift from master time before it is
// force-seeked.
const ResyncTolerance = 300 * time.Millisecond

type Mode int

const (
	// ModePreview loops back to 0 at the end of the timeline.
	ModePreview Mode = iota
	// ModeExport stops at the end and reports completion.
	ModeExport
)

func (m Mode) String() string {
	if m == ModeExport {
		return "export"
	}
	return "preview"
}

// Timeline is what the clock reads every tick. composition.Composition
// implements it.
type Timeline interface {
	MasterDuration() time.Duration
	Advance(from, wall time.Duration) time.Duration
	RateAt(t time.Duration) float64
	Locate(t time.Duration) (clipstore.Entry, error)
}

// Effects describes one tick's outcome for the driver to apply.
type Effects struct {
	Master time.Duration
	// Rate is the speed ramp rate at Master; handles should play at it.
	Rate float64
	// Active is the clip or slide covering Master when HasActive is set.
	Active    clipstore.Entry
	HasActive bool
	// ClipChanged is set when Active differs from the previous tick's.
	ClipChanged bool
	// Degraded is set when the active clip failed to load or decode.
	Degraded bool
	// Wrapped is set when preview looped back to 0; every handle and
	// narration should restart.
	Wrapped bool
	// Completed is set once when an export pass reaches the end.
	Completed bool
	Playing   bool
}

type Opts struct {
	Mode      Mode
	Tolerance time.Duration
}

// Clock is driven from a single tick loop and is not safe for concurrent use.
type Clock struct {
	log       logger.Logger
	timeline  Timeline
	mode      Mode
	tolerance time.Duration

	master    time.Duration
	last      time.Time
	playing   bool
	completed bool
	activeKey string
	degraded  map[string]bool
}

func New(log logger.Logger, timeline Timeline, opts Opts) *Clock {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = ResyncTolerance
	}
	return &Clock{
		log:       log.WithComponent("syncclock"),
		timeline:  timeline,
		mode:      opts.Mode,
		tolerance: tolerance,
		degraded:  make(map[string]bool),
	}
}

func (c *Clock) Mode() Mode {
	return c.mode
}

// SetMode switches between preview and export. A completed export pass can
// play again once the clock is back in preview.
func (c *Clock) SetMode(m Mode) {
	c.mode = m
	if m == ModePreview {
		c.completed = false
	}
}

func (c *Clock) Master() time.Duration {
	return c.master
}

func (c *Clock) Playing() bool {
	return c.playing
}

// Play starts advancing from now. It is a no-op once an export completed.
func (c *Clock) Play(now time.Time) {
	if c.completed {
		return
	}
	c.playing = true
	c.last = now
}

func (c *Clock) Pause() {
	c.playing = false
}

// Seek jumps master time. The next Tick reports ClipChanged so the driver
// repositions its handles.
func (c *Clock) Seek(t time.Duration) error {
	total := c.timeline.MasterDuration()
	if t < 0 || t > total {
		return errors.Wrapf(errors.ErrInvalidInput, "seek to %v outside [0, %v]", t, total)
	}
	c.master = t
	c.completed = false
	c.activeKey = ""
	return nil
}

// Tick advances master time by the wall-clock delta since the previous tick,
// integrated over the speed ramp, and reports the resulting effects. It does
// no I/O.
func (c *Clock) Tick(now time.Time) Effects {
	var eff Effects
	total := c.timeline.MasterDuration()

	if c.playing {
		wall := now.Sub(c.last)
		if wall < 0 {
			wall = 0
		}
		c.last = now
		next := c.timeline.Advance(c.master, wall)
		if next >= total {
			c.reachEnd(total, &eff)
		} else {
			c.master = next
		}
	} else if c.master > total {
		// the timeline shrank under a paused clock
		c.master = total
	}

	eff.Master = c.master
	eff.Rate = c.timeline.RateAt(c.master)
	eff.Playing = c.playing

	key := ""
	if entry, err := c.timeline.Locate(c.master); err == nil {
		eff.Active = entry
		eff.HasActive = true
		eff.Degraded = c.degraded[entry.Key]
		key = entry.Key
	}
	eff.ClipChanged = key != c.activeKey || eff.Wrapped
	c.activeKey = key
	return eff
}

func (c *Clock) reachEnd(total time.Duration, eff *Effects) {
	if c.mode == ModeExport {
		c.master = total
		c.playing = false
		c.completed = true
		eff.Completed = true
		return
	}
	c.master = 0
	eff.Wrapped = total > 0
}

// ResolveActiveClip maps t onto the clip covering it, with half-open bounds
// so an exact boundary belongs to the next clip.
func (c *Clock) ResolveActiveClip(t time.Duration) (clipstore.Entry, error) {
	return c.timeline.Locate(t)
}

// Resync seeks the video handle to the active clip's source position and each
// audio handle to master time when they drift past the tolerance. It returns
// how many handles were corrected.
func (c *Clock) Resync(video media.PlaybackHandle, audio ...media.PlaybackHandle) int {
	corrected := 0
	if video != nil {
		if entry, err := c.timeline.Locate(c.master); err == nil && !c.degraded[entry.Key] {
			if c.ResyncTo(video, entry.SourcePosition()) {
				corrected++
			}
		}
	}
	for _, h := range audio {
		if h != nil && c.ResyncTo(h, c.master) {
			corrected++
		}
	}
	return corrected
}

// ResyncTo seeks h to expected when its reported position is off by more
// than the tolerance. Drift is corrected silently; a failed seek is logged.
func (c *Clock) ResyncTo(h media.PlaybackHandle, expected time.Duration) bool {
	return c.ResyncWithin(h, expected, c.tolerance)
}

// ResyncWithin is ResyncTo with an explicit tolerance. Narration uses a
// tighter one than clip and background handles.
func (c *Clock) ResyncWithin(h media.PlaybackHandle, expected, tolerance time.Duration) bool {
	drift := h.Position() - expected
	if drift < 0 {
		drift = -drift
	}
	if drift <= tolerance {
		return false
	}
	if err := h.Seek(expected); err != nil {
		c.log.Warn("Resync seek failed", "expected", expected, "drift", drift, "error", err)
		return false
	}
	c.log.Debug("Resynced handle", "code", errors.CodeSyncDrift, "expected", expected, "drift", drift)
	return true
}

// MarkDegraded flags a clip (by entry key) whose handle failed. Time keeps
// advancing over it and the compositor draws no base for it.
func (c *Clock) MarkDegraded(key string, cause error) {
	if c.degraded[key] {
		return
	}
	c.degraded[key] = true
	c.log.Warn("Clip degraded", "clip", key, "error", cause)
}

func (c *Clock) IsDegraded(key string) bool {
	return c.degraded[key]
}

func (c *Clock) ClearDegraded() {
	c.degraded = make(map[string]bool)
}
