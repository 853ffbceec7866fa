// Package audiomix combines the microphone and the background track into a
// single signal with independent, glitch-free gains.
package audiomix

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

type Source string

const (
	Microphone Source = "microphone"
	Background Source = "background"
)

var sources = []Source{Microphone, Background}

// gain is read by the encoder goroutine on every buffer, so it is stored as
// atomic float bits instead of behind the graph lock.
type gain struct {
	bits  atomic.Uint64
	saved atomic.Uint64
	muted atomic.Bool
}

func (g *gain) load() float64 {
	return math.Float64frombits(g.bits.Load())
}

func (g *gain) store(v float64) {
	g.bits.Store(math.Float64bits(v))
}

type Graph struct {
	log logger.Logger

	mu     sync.Mutex
	inputs map[Source]media.AudioReader
	closed bool

	gains map[Source]*gain
}

func NewGraph(log logger.Logger) *Graph {
	g := &Graph{
		log:    log.WithComponent("audiomix"),
		inputs: make(map[Source]media.AudioReader),
		gains:  make(map[Source]*gain, len(sources)),
	}
	for _, src := range sources {
		gn := &gain{}
		gn.store(1)
		g.gains[src] = gn
	}
	return g
}

// Connect attaches a reader to a named source, replacing any previous one.
// A nil reader disconnects the source.
func (g *Graph) Connect(src Source, r media.AudioReader) error {
	if _, ok := g.gains[src]; !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown audio source %q", src)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return errors.Wrap(errors.ErrInvalidState, "audio graph is closed")
	}
	if r == nil {
		delete(g.inputs, src)
		return nil
	}
	g.inputs[src] = r
	return nil
}

// SetGain sets a source's gain. Values outside [0, 1] are rejected.
func (g *Graph) SetGain(src Source, v float64) error {
	gn, ok := g.gains[src]
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown audio source %q", src)
	}
	if v < 0 || v > 1 || math.IsNaN(v) {
		return errors.Wrapf(errors.ErrInvalidInput, "gain %v outside [0, 1]", v)
	}
	if gn.muted.Load() {
		gn.saved.Store(math.Float64bits(v))
		return nil
	}
	gn.store(v)
	return nil
}

// Gain is the effective gain, 0 while muted.
func (g *Graph) Gain(src Source) float64 {
	gn, ok := g.gains[src]
	if !ok {
		return 0
	}
	return gn.load()
}

// Mute drops a source's gain to 0 while keeping it connected, so unmuting is
// immediate.
func (g *Graph) Mute(src Source) {
	gn, ok := g.gains[src]
	if !ok || !gn.muted.CompareAndSwap(false, true) {
		return
	}
	gn.saved.Store(gn.bits.Load())
	gn.store(0)
}

func (g *Graph) Unmute(src Source) {
	gn, ok := g.gains[src]
	if !ok || !gn.muted.CompareAndSwap(true, false) {
		return
	}
	gn.bits.Store(gn.saved.Load())
}

func (g *Graph) Muted(src Source) bool {
	gn, ok := g.gains[src]
	return ok && gn.muted.Load()
}

// BuildOutput wires the connected sources through their gain stages into one
// reader. With a single source the output is a gain-scaled passthrough. It
// fails with ErrDeviceUnavailable when nothing is connected or the sources
// cannot be mixed without resampling.
func (g *Graph) BuildOutput() (*Output, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, errors.Wrap(errors.ErrInvalidState, "audio graph is closed")
	}

	var stages []stage
	var format *audio.Format
	for _, src := range sources {
		r, ok := g.inputs[src]
		if !ok {
			continue
		}
		f := r.Format()
		if f == nil || f.SampleRate <= 0 || f.NumChannels <= 0 {
			return nil, errors.Wrapf(errors.ErrDeviceUnavailable, "%s reports no usable format", src)
		}
		if format == nil {
			format = f
		} else if f.SampleRate != format.SampleRate || f.NumChannels != format.NumChannels {
			return nil, errors.Wrapf(errors.ErrDeviceUnavailable,
				"%s format %dHz/%dch does not match %dHz/%dch", src, f.SampleRate, f.NumChannels, format.SampleRate, format.NumChannels)
		}
		stages = append(stages, stage{src: src, reader: r, gain: g.gains[src]})
	}
	if len(stages) == 0 {
		return nil, errors.Wrap(errors.ErrDeviceUnavailable, "no audio source connected")
	}

	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, string(s.src))
	}
	g.log.Debug("Audio output built", "sources", names, "sample_rate", format.SampleRate, "channels", format.NumChannels)

	return &Output{format: format, stages: stages}, nil
}

// Close disconnects every source. Readers are owned by their callers.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.inputs = make(map[Source]media.AudioReader)
	return nil
}

type stage struct {
	src     Source
	reader  media.AudioReader
	gain    *gain
	scratch *audio.FloatBuffer
}

// Output is the combined signal. It implements media.AudioReader and is
// meant to be read from one goroutine.
type Output struct {
	format *audio.Format
	stages []stage
}

var _ media.AudioReader = (*Output)(nil)

func (o *Output) Format() *audio.Format {
	return o.format
}

func (o *Output) Sources() []Source {
	out := make([]Source, 0, len(o.stages))
	for _, s := range o.stages {
		out = append(out, s.src)
	}
	return out
}

// ReadAudio sums each stage's gain-scaled samples into buf and clamps the
// result to [-1, 1]. A stage that delivers fewer samples contributes silence
// for the rest. The returned count is the longest stage read.
func (o *Output) ReadAudio(buf *audio.FloatBuffer) (int, error) {
	want := len(buf.Data)
	for i := range buf.Data {
		buf.Data[i] = 0
	}
	buf.Format = o.format

	produced := 0
	for i := range o.stages {
		st := &o.stages[i]
		if st.scratch == nil || len(st.scratch.Data) < want {
			st.scratch = &audio.FloatBuffer{Format: o.format, Data: make([]float64, want)}
		}
		scratch := &audio.FloatBuffer{Format: o.format, Data: st.scratch.Data[:want]}
		n, err := st.reader.ReadAudio(scratch)
		if err != nil {
			return 0, errors.Wrapf(err, "read %s", st.src)
		}
		if n > want {
			n = want
		}
		g := st.gain.load()
		for j := 0; j < n; j++ {
			buf.Data[j] += scratch.Data[j] * g
		}
		if n > produced {
			produced = n
		}
	}
	for j := 0; j < produced; j++ {
		buf.Data[j] = clamp(buf.Data[j])
	}
	return produced, nil
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
