// Package player drives a composition through syncclock ticks and applies
// the resulting effects to playback handles and the compositor.
package player

import (
	"context"
	"image"
	"time"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/overlay"
	"github.com/orgball2608/reel-studio/internal/syncclock"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

// DefaultNarrationTolerance bounds how late a narration may start.
const DefaultNarrationTolerance = 100 * time.Millisecond

type Opts struct {
	Mode               syncclock.Mode
	ResyncTolerance    time.Duration
	NarrationTolerance time.Duration
}

type Deps struct {
	Log         logger.Logger
	Loader      media.Loader
	Compositor  *compositor.Compositor
	Composition *composition.Composition
	// Mixer is optional; without it the background track is not mixed.
	Mixer *audiomix.Graph
}

// Frame is the outcome of one tick.
type Frame struct {
	Effects syncclock.Effects
	Image   *image.RGBA
}

type narration struct {
	handle  media.AudioHandle
	start   time.Duration
	playing bool
}

// Player is driven from one tick loop and is not safe for concurrent use.
type Player struct {
	log      logger.Logger
	loader   media.Loader
	comp     *compositor.Compositor
	timeline *composition.Composition
	clock    *syncclock.Clock
	mixer    *audiomix.Graph
	opts     Opts

	video      media.VideoHandle
	videoKey   string
	slides     map[string]image.Image
	background media.AudioHandle
	output     media.AudioReader
	format     *audio.Format
	narrations map[string]*narration
	rate       float64
	scratch    []float64
	closed     bool
}

func New(deps Deps, opts Opts) *Player {
	if opts.NarrationTolerance <= 0 {
		opts.NarrationTolerance = DefaultNarrationTolerance
	}
	return &Player{
		log:        deps.Log.WithComponent("player"),
		loader:     deps.Loader,
		comp:       deps.Compositor,
		timeline:   deps.Composition,
		mixer:      deps.Mixer,
		opts:       opts,
		clock:      syncclock.New(deps.Log, deps.Composition, syncclock.Opts{Mode: opts.Mode, Tolerance: opts.ResyncTolerance}),
		slides:     make(map[string]image.Image),
		narrations: make(map[string]*narration),
		rate:       1,
	}
}

// Load opens the background track, preloads stickers and applies the
// composition's filter. A background that fails to open is logged and
// playback continues without it. Without a background the first narration
// decides the audio format.
func (p *Player) Load(ctx context.Context) error {
	if err := p.comp.SetFilter(p.timeline.Filter()); err != nil {
		return errors.Wrap(err, "apply composition filter")
	}
	p.comp.PreloadStickers(ctx, p.loader, p.timeline.Overlays())

	uri, gain := p.timeline.Background()
	if uri == "" {
		p.preloadNarration(ctx)
		return nil
	}
	bg, err := p.loader.OpenAudio(ctx, uri)
	if err != nil {
		p.log.Warn("Background track unavailable, playing without it", "uri", uri, "error", err)
		p.preloadNarration(ctx)
		return nil
	}
	p.background = bg
	p.output = bg
	p.format = bg.Format()
	if p.mixer == nil {
		return nil
	}
	if err := p.mixer.Connect(audiomix.Background, bg); err != nil {
		return errors.Wrap(err, "connect background")
	}
	if err := p.mixer.SetGain(audiomix.Background, gain); err != nil {
		return errors.Wrap(err, "set background gain")
	}
	out, err := p.mixer.BuildOutput()
	if err != nil {
		p.log.Warn("Audio graph unavailable, playing background unmixed", "error", err)
		return nil
	}
	p.output = out
	return nil
}

// preloadNarration opens narrations in overlay order until one reports a
// format.
func (p *Player) preloadNarration(ctx context.Context) {
	for _, o := range p.timeline.Overlays() {
		if o.NarrationURI == "" {
			continue
		}
		n, err := p.narrationFor(ctx, overlay.NarrationCommand{OverlayID: o.ID, URI: o.NarrationURI})
		if err != nil {
			p.log.Warn("Narration unavailable, skipping", "overlay", o.ID, "uri", o.NarrationURI, "error", err)
			continue
		}
		if f := n.handle.Format(); f != nil {
			p.format = f
			return
		}
	}
}

func (p *Player) Clock() *syncclock.Clock {
	return p.clock
}

func (p *Player) Master() time.Duration {
	return p.clock.Master()
}

func (p *Player) Play(now time.Time) {
	p.clock.Play(now)
	if !p.clock.Playing() {
		return
	}
	p.each(func(h media.PlaybackHandle) error { return h.Play() })
	for _, n := range p.narrations {
		if n.playing {
			_ = n.handle.Play()
		}
	}
}

func (p *Player) Pause() {
	p.clock.Pause()
	p.each(func(h media.PlaybackHandle) error { return h.Pause() })
	for _, n := range p.narrations {
		_ = n.handle.Pause()
	}
}

// Seek jumps master time. Narrations are stopped and restarted by the next
// tick when t falls inside their range.
func (p *Player) Seek(t time.Duration) error {
	if err := p.clock.Seek(t); err != nil {
		return err
	}
	p.stopNarrations(p.timeline.ResetNarration())
	p.seekBackground(t)
	return nil
}

// Tick advances the clock to now, applies its effects and composes the frame.
func (p *Player) Tick(ctx context.Context, now time.Time) Frame {
	eff := p.clock.Tick(now)

	if eff.Wrapped || eff.Completed {
		p.stopNarrations(p.timeline.ResetNarration())
	}
	if eff.Wrapped {
		p.seekBackground(0)
	}
	if eff.Completed {
		p.each(func(h media.PlaybackHandle) error { return h.Pause() })
	}
	if eff.ClipChanged {
		p.switchTo(ctx, eff)
	}
	p.applyRate(eff.Rate)
	if !eff.Completed {
		p.applyNarration(ctx, eff)
	}
	if eff.Playing {
		p.resync(eff)
	}

	base := p.baseFrame(eff)
	p.comp.ComposeEdited(base, p.timeline.Resolve(eff.Master))
	return Frame{Effects: eff, Image: p.comp.Snapshot()}
}

func (p *Player) switchTo(ctx context.Context, eff syncclock.Effects) {
	if p.video != nil && (!eff.HasActive || eff.Active.Key != p.videoKey) {
		_ = p.video.Close()
		p.video = nil
		p.videoKey = ""
	}
	if !eff.HasActive || eff.Degraded {
		return
	}
	entry := eff.Active

	if entry.Slide != nil {
		if _, ok := p.slides[entry.Key]; ok {
			return
		}
		img, err := p.loader.LoadImage(ctx, entry.Slide.ImageURI)
		if err != nil {
			p.clock.MarkDegraded(entry.Key, err)
			return
		}
		p.slides[entry.Key] = img
		return
	}

	if p.video == nil {
		h, err := p.loader.OpenVideo(ctx, entry.Clip.SourceURI)
		if err != nil {
			p.clock.MarkDegraded(entry.Key, err)
			return
		}
		p.video = h
		p.videoKey = entry.Key
		_ = h.SetRate(eff.Rate)
	}
	if err := p.video.Seek(entry.SourcePosition()); err != nil {
		p.log.Warn("Clip seek failed", "clip", entry.Key, "error", err)
	}
	if eff.Playing {
		_ = p.video.Play()
	}
}

func (p *Player) baseFrame(eff syncclock.Effects) image.Image {
	if !eff.HasActive || p.clock.IsDegraded(eff.Active.Key) {
		return nil
	}
	if eff.Active.Slide != nil {
		return p.slides[eff.Active.Key]
	}
	if p.video == nil || p.videoKey != eff.Active.Key {
		return nil
	}
	frame, err := p.video.Frame()
	if err != nil {
		p.clock.MarkDegraded(eff.Active.Key, errors.WrapWithCode(err, errors.CodeDecodeFailure, "decode frame"))
		return nil
	}
	return frame
}

func (p *Player) applyRate(rate float64) {
	if rate == p.rate {
		return
	}
	p.rate = rate
	p.each(func(h media.PlaybackHandle) error { return h.SetRate(rate) })
	for _, n := range p.narrations {
		_ = n.handle.SetRate(rate)
	}
}

func (p *Player) applyNarration(ctx context.Context, eff syncclock.Effects) {
	for _, cmd := range p.timeline.NarrationCommands(eff.Master) {
		if cmd.Action == overlay.NarrationStop {
			p.stopNarrations([]overlay.NarrationCommand{cmd})
			continue
		}
		n, err := p.narrationFor(ctx, cmd)
		if err != nil {
			p.log.Warn("Narration unavailable, skipping", "overlay", cmd.OverlayID, "uri", cmd.URI, "error", err)
			continue
		}
		if cmd.Offset > p.opts.NarrationTolerance {
			p.log.Debug("Narration started late", "overlay", cmd.OverlayID, "offset", cmd.Offset)
		}
		n.start = eff.Master - cmd.Offset
		n.playing = true
		_ = n.handle.Seek(cmd.Offset)
		_ = n.handle.SetRate(eff.Rate)
		if eff.Playing {
			_ = n.handle.Play()
		}
	}
}

func (p *Player) narrationFor(ctx context.Context, cmd overlay.NarrationCommand) (*narration, error) {
	if n, ok := p.narrations[cmd.OverlayID]; ok {
		return n, nil
	}
	h, err := p.loader.OpenAudio(ctx, cmd.URI)
	if err != nil {
		return nil, err
	}
	n := &narration{handle: h}
	p.narrations[cmd.OverlayID] = n
	return n, nil
}

func (p *Player) stopNarrations(cmds []overlay.NarrationCommand) {
	for _, cmd := range cmds {
		n, ok := p.narrations[cmd.OverlayID]
		if !ok {
			continue
		}
		n.playing = false
		_ = n.handle.Pause()
		if cmd.Release {
			if err := n.handle.Close(); err != nil {
				p.log.Debug("Closing released narration", "overlay", cmd.OverlayID, "error", err)
			}
			delete(p.narrations, cmd.OverlayID)
			continue
		}
		_ = n.handle.Seek(0)
	}
}

func (p *Player) resync(eff syncclock.Effects) {
	var video media.PlaybackHandle
	if p.video != nil && eff.HasActive && p.videoKey == eff.Active.Key {
		video = p.video
	}
	p.clock.Resync(video)

	if p.background != nil {
		if eff.Master < p.background.Duration() {
			p.clock.ResyncTo(p.background, eff.Master)
		}
	}
	for _, n := range p.narrations {
		if !n.playing {
			continue
		}
		expected := eff.Master - n.start
		if expected < n.handle.Duration() {
			p.clock.ResyncWithin(n.handle, expected, p.opts.NarrationTolerance)
		}
	}
}

func (p *Player) seekBackground(t time.Duration) {
	if p.background == nil {
		return
	}
	if d := p.background.Duration(); t > d {
		t = d
	}
	if err := p.background.Seek(t); err != nil {
		p.log.Warn("Background seek failed", "error", err)
	}
}

// each applies fn to the clip and background handles.
func (p *Player) each(fn func(media.PlaybackHandle) error) {
	if p.video != nil {
		if err := fn(p.video); err != nil {
			p.log.Debug("Video handle command failed", "error", err)
		}
	}
	if p.background != nil {
		if err := fn(p.background); err != nil {
			p.log.Debug("Background handle command failed", "error", err)
		}
	}
}

// Format is the format of the mixed audio: the background's, else the first
// narration's. It is nil when the composition has neither.
func (p *Player) Format() *audio.Format {
	if p.output != nil {
		return p.output.Format()
	}
	return p.format
}

// ReadAudio fills buf with the background mix plus every playing narration
// in the same format. Missing audio is padded with silence so an export's
// audio track stays as long as its video.
func (p *Player) ReadAudio(buf *audio.FloatBuffer) (int, error) {
	for i := range buf.Data {
		buf.Data[i] = 0
	}
	if p.output != nil {
		if _, err := p.output.ReadAudio(buf); err != nil {
			return 0, errors.Wrap(err, "read background mix")
		}
	}
	format := p.Format()
	if format == nil {
		return len(buf.Data), nil
	}
	for id, n := range p.narrations {
		if !n.playing {
			continue
		}
		nf := n.handle.Format()
		if nf == nil || nf.SampleRate != format.SampleRate || nf.NumChannels != format.NumChannels {
			continue
		}
		if cap(p.scratch) < len(buf.Data) {
			p.scratch = make([]float64, len(buf.Data))
		}
		scratch := &audio.FloatBuffer{Format: nf, Data: p.scratch[:len(buf.Data)]}
		got, err := n.handle.ReadAudio(scratch)
		if err != nil {
			p.log.Debug("Narration read failed", "overlay", id, "error", err)
			continue
		}
		for i := 0; i < got; i++ {
			v := buf.Data[i] + scratch.Data[i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			buf.Data[i] = v
		}
	}
	return len(buf.Data), nil
}

// Close releases every handle and the audio graph.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	if p.video != nil {
		errs = append(errs, p.video.Close())
		p.video = nil
	}
	if p.background != nil {
		errs = append(errs, p.background.Close())
		p.background = nil
	}
	for id, n := range p.narrations {
		errs = append(errs, n.handle.Close())
		delete(p.narrations, id)
	}
	if p.mixer != nil {
		errs = append(errs, p.mixer.Close())
	}
	p.output = nil
	p.format = nil
	return errors.Join(errs...)
}
