// Package capture records camera and microphone input into clips under a
// total duration budget.
package capture

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFPS = 24
	// queueDepth bounds how far the encoder may lag before samples are dropped.
	queueDepth = 48
)

type Opts struct {
	MaxDuration time.Duration
	FPS         int
	// Codecs is tried in order; the first one the factory supports wins.
	Codecs []string
	Facing media.Facing
	Width  int
	Height int
	// Clock stamps segment starts; defaults to the real clock.
	Clock clockwork.Clock
}

type Deps struct {
	Log         logger.Logger
	Source      media.Source
	Encoders    media.EncoderFactory
	Compositor  *compositor.Compositor
	Mixer       *audiomix.Graph
	Composition *composition.Composition
	// Background is optional; it is mixed under the microphone.
	Background media.AudioHandle
}

// Status is what a tick reports back to the caller.
type Status struct {
	State       State
	Accumulated time.Duration
	Committed   time.Duration
	Remaining   time.Duration
	// ForcedStop is set on the tick that hit the duration budget.
	ForcedStop bool
	// Clip is set on the tick that applied a finished commit.
	Clip *domain.Clip
}

type sample struct {
	frame *image.RGBA
	ts    time.Duration
	audio *audio.FloatBuffer
}

type result struct {
	artifact domain.Artifact
	err      error
}

type Session struct {
	log         logger.Logger
	opts        Opts
	source      media.Source
	encoders    media.EncoderFactory
	comp        *compositor.Compositor
	mixer       *audiomix.Graph
	timeline    *composition.Composition
	background  media.AudioHandle
	clock       clockwork.Clock
	pacer       *compositor.Pacer
	closeDevice sync.Once

	mu      sync.Mutex
	closed  bool
	state   State
	stream  media.Stream
	output  media.AudioReader
	encoder media.Encoder
	codec   string
	segment domain.CaptureSegment
	last    time.Time
	lastTS  time.Duration
	rate    float64
	samples chan sample
	group   *errgroup.Group
	failed  context.Context
	cancel  context.CancelFunc
	done     chan result
	finished chan struct{}
	discard  bool
	dropped  int
	// lastClip and lastErr keep the outcome of the latest commit for Await.
	lastClip *domain.Clip
	lastErr  error
}

func New(deps Deps, opts Opts) (*Session, error) {
	if opts.MaxDuration <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "max duration %v must be positive", opts.MaxDuration)
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Facing == "" {
		opts.Facing = media.FacingUser
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 720, 1280
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Session{
		log:        deps.Log.WithComponent("capture"),
		opts:       opts,
		source:     deps.Source,
		encoders:   deps.Encoders,
		comp:       deps.Compositor,
		mixer:      deps.Mixer,
		timeline:   deps.Composition,
		background: deps.Background,
		clock:      clock,
		pacer:      compositor.NewPacer(opts.FPS),
	}
	if s.timeline.MasterDuration() >= opts.MaxDuration {
		s.state = StateFull
	}
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Codec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec
}

// Start acquires the camera and microphone and begins a new segment. Only
// device acquisition blocks. PermissionDenied and DeviceUnavailable are
// returned unchanged.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInvalidState, "capture session is closed")
	case s.state == StateFull:
		s.mu.Unlock()
		return errors.Wrap(errors.ErrBudgetExhausted, "no recording time left, undo a segment first")
	case s.state != StateIdle:
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInvalidState, "cannot start while %s", s.state)
	}
	if s.timeline.MasterDuration() >= s.opts.MaxDuration {
		s.state = StateFull
		s.mu.Unlock()
		return errors.Wrap(errors.ErrBudgetExhausted, "no recording time left, undo a segment first")
	}
	s.state = StateAcquiring
	s.mu.Unlock()

	stream, err := s.source.Open(ctx, media.StreamRequest{
		Facing:    s.opts.Facing,
		Width:     s.opts.Width,
		Height:    s.opts.Height,
		FrameRate: s.opts.FPS,
	})
	if err != nil {
		s.setState(StateIdle)
		return errors.Wrap(err, "open capture devices")
	}

	if err := s.begin(stream); err != nil {
		_ = stream.Close()
		s.releaseAudio()
		s.setState(StateIdle)
		return err
	}
	return nil
}

func (s *Session) begin(stream media.Stream) error {
	codec, ok := media.SelectCodec(s.encoders, s.opts.Codecs)
	if !ok {
		return errors.Wrapf(errors.ErrEncodeFailure, "none of the codecs %v is supported", s.opts.Codecs)
	}
	enc, err := s.encoders.NewEncoder(codec)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "create "+codec+" encoder")
	}

	output := s.buildAudio(stream)
	var format *audio.Format
	if output != nil {
		format = output.Format()
	}
	if err := enc.Begin(s.opts.Width, s.opts.Height, s.opts.FPS, format); err != nil {
		_ = enc.Abort()
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "begin "+codec+" segment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, cancel := context.WithCancel(context.Background())
	group, failed := errgroup.WithContext(base)
	samples := make(chan sample, queueDepth)
	group.Go(func() error {
		return write(enc, samples)
	})

	now := s.clock.Now()
	s.stream = stream
	s.output = output
	s.encoder = enc
	s.codec = codec
	s.segment = domain.CaptureSegment{StartWallClock: now}
	s.last = now
	s.lastTS = -1
	s.rate = 0
	s.samples = samples
	s.group = group
	s.failed = failed
	s.cancel = cancel
	s.done = make(chan result, 1)
	s.finished = make(chan struct{})
	s.discard = false
	s.dropped = 0
	s.pacer.Reset()
	s.state = StateRecording

	s.log.Info("Recording started", "codec", codec, "committed", s.timeline.MasterDuration(), "budget", s.opts.MaxDuration)
	return nil
}

// buildAudio mixes microphone and background. When the graph cannot be
// built the raw microphone is recorded unmixed.
func (s *Session) buildAudio(stream media.Stream) media.AudioReader {
	mic := stream.Microphone()
	if mic != nil {
		_ = s.mixer.Connect(audiomix.Microphone, mic)
	}
	if s.background != nil {
		_ = s.mixer.Connect(audiomix.Background, s.background)
		_ = s.background.Seek(s.timeline.MasterDuration())
		_ = s.background.Play()
	}

	out, err := s.mixer.BuildOutput()
	if err != nil {
		if mic == nil {
			s.log.Warn("No audio available, recording video only", "error", err)
			return nil
		}
		s.log.Warn("Audio graph unavailable, recording raw microphone", "error", err)
		return mic
	}
	return out
}

func write(enc media.Encoder, samples <-chan sample) error {
	for smp := range samples {
		if smp.frame != nil {
			if err := enc.EncodeFrame(smp.frame, smp.ts); err != nil {
				return errors.WrapWithCode(err, errors.CodeEncodeFailure, "encode frame")
			}
		}
		if smp.audio != nil {
			if err := enc.EncodeAudio(smp.audio); err != nil {
				return errors.WrapWithCode(err, errors.CodeEncodeFailure, "encode audio")
			}
		}
	}
	return nil
}

// Tick accumulates recorded master time, hands a frame and the audio since
// the last tick to the encoder without blocking, stops at the budget and
// applies finished commits.
func (s *Session) Tick(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{}
	if clip, ok := s.collectLocked(); ok && clip != nil {
		st.Clip = clip
	}
	if s.state != StateRecording {
		return s.statusLocked(st)
	}

	wall := now.Sub(s.last)
	if wall < 0 {
		wall = 0
	}
	s.last = now

	committed := s.timeline.MasterDuration()
	pos := committed + s.segment.Accumulated
	next := s.timeline.Advance(pos, wall)
	s.segment.Accumulated += next - pos

	remaining := s.opts.MaxDuration - committed
	forced := false
	if s.segment.Accumulated >= remaining {
		s.segment.Accumulated = remaining
		forced = true
	}

	position := committed + s.segment.Accumulated
	s.applyRateLocked(s.timeline.RateAt(position))
	s.pushLocked(now, wall, position)

	select {
	case <-s.failed.Done():
		s.log.Error("Encoder failed, stopping segment")
		forced = true
	default:
	}

	if forced {
		st.ForcedStop = true
		s.stopLocked()
	}
	return s.statusLocked(st)
}

func (s *Session) applyRateLocked(rate float64) {
	if rate == s.rate || s.background == nil {
		return
	}
	s.rate = rate
	if err := s.background.SetRate(rate); err != nil {
		s.log.Warn("Failed to set background rate", "rate", rate, "error", err)
	}
}

func (s *Session) pushLocked(now time.Time, wall, position time.Duration) {
	smp := sample{ts: s.segment.Accumulated}

	if s.pacer.Due(now) && s.segment.Accumulated > s.lastTS {
		frame, _ := s.stream.LatestFrame()
		s.comp.ComposeLive(frame, s.stream.Facing() == media.FacingUser, s.timeline.Resolve(position))
		smp.frame = s.comp.Snapshot()
		s.lastTS = s.segment.Accumulated
	}

	if s.output != nil && wall > 0 {
		f := s.output.Format()
		n := int(math.Round(wall.Seconds()*float64(f.SampleRate))) * f.NumChannels
		if n > 0 {
			buf := &audio.FloatBuffer{Format: f, Data: make([]float64, n)}
			got, err := s.output.ReadAudio(buf)
			if err != nil {
				s.log.Warn("Audio read failed", "error", err)
			} else if got > 0 {
				buf.Data = buf.Data[:got]
				smp.audio = buf
			}
		}
	}

	if smp.frame == nil && smp.audio == nil {
		return
	}
	select {
	case s.samples <- smp:
	default:
		s.dropped++
	}
}

// Stop ends the segment. The buffered samples are flushed and the encoder is
// finalized in the background; the clip is committed by a later Tick or by
// Await.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return errors.Wrapf(errors.ErrInvalidState, "cannot stop while %s", s.state)
	}
	s.stopLocked()
	return nil
}

// Discard stops recording and drops the in-progress segment.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return errors.Wrapf(errors.ErrInvalidState, "cannot discard while %s", s.state)
	}
	s.discard = true
	s.stopLocked()
	return nil
}

func (s *Session) stopLocked() {
	s.state = StateCommitting
	close(s.samples)
	s.releaseDevicesLocked()

	enc, group, done, finished, cancel, discard := s.encoder, s.group, s.done, s.finished, s.cancel, s.discard
	go func() {
		defer close(finished)
		defer cancel()
		err := group.Wait()
		if err != nil || discard {
			_ = enc.Abort()
			done <- result{err: err}
			return
		}
		artifact, err := enc.End(context.Background())
		done <- result{artifact: artifact, err: err}
	}()

	s.log.Info("Recording stopped", "accumulated", s.segment.Accumulated, "dropped_samples", s.dropped, "discarded", discard)
}

func (s *Session) releaseDevicesLocked() {
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			s.log.Warn("Failed to close capture stream", "error", err)
		}
		s.stream = nil
	}
	s.output = nil
	s.releaseAudio()
}

func (s *Session) releaseAudio() {
	_ = s.mixer.Connect(audiomix.Microphone, nil)
	_ = s.mixer.Connect(audiomix.Background, nil)
	if s.background != nil {
		_ = s.background.Pause()
	}
}

// Await blocks until the stopped segment is finalized and returns the
// committed clip. A nil clip means the segment was discarded or empty.
func (s *Session) Await(ctx context.Context) (*domain.Clip, error) {
	s.mu.Lock()
	if s.state != StateCommitting {
		s.mu.Unlock()
		return nil, errors.Wrapf(errors.ErrInvalidState, "nothing to await while %s", s.state)
	}
	finished := s.finished
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-finished:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCommitting {
		return s.applyLocked(<-s.done)
	}
	// a tick already applied it
	return s.lastClip, s.lastErr
}

// collectLocked applies a finished commit if one is waiting.
func (s *Session) collectLocked() (*domain.Clip, bool) {
	if s.state != StateCommitting {
		return nil, false
	}
	select {
	case res := <-s.done:
		clip, err := s.applyLocked(res)
		if err != nil {
			s.log.Error("Segment not committed", "error", err)
		}
		return clip, true
	default:
		return nil, false
	}
}

func (s *Session) applyLocked(res result) (*domain.Clip, error) {
	clip, err := s.commitLocked(res)
	s.lastClip, s.lastErr = clip, err
	return clip, err
}

func (s *Session) commitLocked(res result) (*domain.Clip, error) {
	accumulated := s.segment.Accumulated
	s.segment = domain.CaptureSegment{}
	s.encoder = nil
	s.state = StateIdle
	defer s.settleLocked()

	if res.err != nil {
		return nil, errors.WrapWithCode(res.err, errors.CodeEncodeFailure, "segment discarded")
	}
	if s.discard {
		s.log.Info("Segment discarded")
		return nil, nil
	}
	if accumulated <= 0 {
		s.log.Info("Empty segment dropped")
		return nil, nil
	}

	clip := domain.Clip{
		ID:            uuid.NewString(),
		SourceURI:     res.artifact.URI,
		TotalDuration: accumulated,
		TrimStart:     0,
		TrimEnd:       accumulated,
		Width:         res.artifact.Width,
		Height:        res.artifact.Height,
	}
	added, err := s.timeline.AppendClip(clip)
	if err != nil {
		return nil, errors.Wrap(err, "append captured clip")
	}
	s.log.Info("Segment committed", "clip", added.ID, "duration", accumulated, "uri", added.SourceURI)
	return &added, nil
}

func (s *Session) settleLocked() {
	if s.state == StateIdle && s.timeline.MasterDuration() >= s.opts.MaxDuration {
		s.state = StateFull
	}
}

// UndoLastSegment removes the most recent clip. It is only valid while idle
// or full.
func (s *Session) UndoLastSegment() (domain.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateFull {
		return domain.Clip{}, errors.Wrapf(errors.ErrInvalidState, "cannot undo while %s", s.state)
	}
	removed, err := s.timeline.RemoveLastClip()
	if err != nil {
		return domain.Clip{}, errors.Wrap(err, "undo last segment")
	}
	s.state = StateIdle
	s.settleLocked()
	s.log.Info("Segment undone", "clip", removed.ID, "committed", s.timeline.MasterDuration())
	return removed, nil
}

// Close discards any segment in progress and releases devices. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.state == StateRecording {
		s.discard = true
		s.stopLocked()
	}
	committing := s.state == StateCommitting
	s.mu.Unlock()

	if committing {
		if _, err := s.Await(context.Background()); err != nil {
			s.log.Warn("Pending segment dropped on close", "error", err)
		}
	}

	var err error
	s.closeDevice.Do(func() {
		s.mu.Lock()
		s.releaseDevicesLocked()
		s.mu.Unlock()
		err = s.mixer.Close()
	})
	return err
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) statusLocked(st Status) Status {
	committed := s.timeline.MasterDuration()
	st.State = s.state
	st.Accumulated = s.segment.Accumulated
	st.Committed = committed
	st.Remaining = s.opts.MaxDuration - committed - s.segment.Accumulated
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	return st
}
