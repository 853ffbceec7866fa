package exportimpl

import (
	"context"
	"time"

	"github.com/go-audio/audio"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/player"
	"github.com/orgball2608/reel-studio/internal/syncclock"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

// LoaderFor returns a loader whose playback handles run on clock.
type LoaderFor func(clock clockwork.Clock) media.Loader

type RenderOpts struct {
	FPS    int
	Width  int
	Height int
	// Codecs is the priority list; the first one the factory supports wins.
	Codecs             []string
	ResyncTolerance    time.Duration
	NarrationTolerance time.Duration
}

// Renderer plays a composition in export mode against a synthetic clock
// stepped one output frame at a time, burning overlays into every frame.
type Renderer struct {
	log       logger.Logger
	loaderFor LoaderFor
	encoders  media.EncoderFactory
	catalog   *compositor.Catalog
	opts      RenderOpts
}

var _ export.Renderer = (*Renderer)(nil)

func NewRenderer(log logger.Logger, loaderFor LoaderFor, encoders media.EncoderFactory, catalog *compositor.Catalog, opts RenderOpts) *Renderer {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 720, 1280
	}
	if catalog == nil {
		catalog = compositor.DefaultCatalog()
	}
	return &Renderer{
		log:       log.WithComponent("renderer"),
		loaderFor: loaderFor,
		encoders:  encoders,
		catalog:   catalog,
		opts:      opts,
	}
}

func (r *Renderer) Render(ctx context.Context, snapshot domain.Composition) (domain.Artifact, error) {
	comp, err := composition.FromSnapshot(snapshot)
	if err != nil {
		return domain.Artifact{}, errors.Wrap(err, "restore composition")
	}
	total := comp.MasterDuration()
	if total <= 0 {
		return domain.Artifact{}, errors.Wrap(errors.ErrInvalidInput, "composition is empty")
	}
	codec, ok := media.SelectCodec(r.encoders, r.opts.Codecs)
	if !ok {
		return domain.Artifact{}, errors.Wrapf(errors.ErrEncodeFailure, "none of %v can be encoded", r.opts.Codecs)
	}

	surface, err := compositor.New(r.log, r.catalog, compositor.Opts{
		Filter: compositor.FilterNormal,
		Width:  r.opts.Width,
		Height: r.opts.Height,
	})
	if err != nil {
		return domain.Artifact{}, err
	}

	clock := clockwork.NewFakeClockAt(time.Unix(0, 0).UTC())
	p := player.New(player.Deps{
		Log:         r.log,
		Loader:      r.loaderFor(clock),
		Compositor:  surface,
		Composition: comp,
		Mixer:       audiomix.NewGraph(r.log),
	}, player.Opts{
		Mode:               syncclock.ModeExport,
		ResyncTolerance:    r.opts.ResyncTolerance,
		NarrationTolerance: r.opts.NarrationTolerance,
	})
	defer func() {
		if err := p.Close(); err != nil {
			r.log.Debug("Closing export player", "error", err)
		}
	}()
	if err := p.Load(ctx); err != nil {
		return domain.Artifact{}, err
	}

	enc, err := r.encoders.NewEncoder(codec)
	if err != nil {
		return domain.Artifact{}, err
	}
	format := p.Format()
	if err := enc.Begin(r.opts.Width, r.opts.Height, r.opts.FPS, format); err != nil {
		_ = enc.Abort()
		return domain.Artifact{}, err
	}

	frames, err := r.encode(ctx, p, clock, enc, format, renderLimit(snapshot, total))
	if err != nil {
		if aerr := enc.Abort(); aerr != nil {
			r.log.Warn("Failed to discard partial render", "error", aerr)
		}
		return domain.Artifact{}, err
	}

	artifact, err := enc.End(ctx)
	if err != nil {
		_ = enc.Abort()
		return domain.Artifact{}, err
	}
	r.log.Info("Render finished",
		"codec", codec,
		"frames", frames,
		"duration", artifact.Duration,
		"timeline", total,
		"uri", artifact.URI)
	return artifact, nil
}

// encode steps the clock one frame period per iteration until the export
// completes, writing each frame and the audio covering its period.
func (r *Renderer) encode(ctx context.Context, p *player.Player, clock *clockwork.FakeClock, enc media.Encoder, format *audio.Format, limit time.Duration) (int, error) {
	fps := time.Duration(r.opts.FPS)
	p.Play(clock.Now())

	var elapsed time.Duration
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return i, errors.Wrap(err, "render cancelled")
		}
		ts := time.Duration(i) * time.Second / fps
		if ts > limit {
			return i, errors.Wrapf(errors.ErrEncodeFailure, "timeline did not complete within %v", limit)
		}
		clock.Advance(ts - elapsed)
		elapsed = ts

		frame := p.Tick(ctx, clock.Now())
		if frame.Effects.Completed {
			return i, nil
		}
		if err := enc.EncodeFrame(frame.Image, ts); err != nil {
			return i, err
		}
		if format == nil {
			continue
		}
		buf := &audio.FloatBuffer{
			Format: format,
			Data:   make([]float64, samplesInFrame(i, r.opts.FPS, format.SampleRate)*format.NumChannels),
		}
		if _, err := p.ReadAudio(buf); err != nil {
			return i, err
		}
		if err := enc.EncodeAudio(buf); err != nil {
			return i, err
		}
	}
}

// samplesInFrame splits each second's samples across its frames without
// accumulating rounding drift.
func samplesInFrame(i, fps, rate int) int {
	start := int64(i) * int64(rate) / int64(fps)
	end := int64(i+1) * int64(rate) / int64(fps)
	return int(end - start)
}

// renderLimit is the longest wall time the timeline can take at its slowest
// rate, plus a second of slack.
func renderLimit(c domain.Composition, total time.Duration) time.Duration {
	slowest := 1.0
	for _, seg := range c.SpeedSegments {
		if seg.Rate > 0 && seg.Rate < slowest {
			slowest = seg.Rate
		}
	}
	return time.Duration(float64(total)/slowest) + time.Second
}
