package audiomix

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	mock_media "github.com/orgball2608/reel-studio/internal/media/mocks"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"go.uber.org/mock/gomock"
)

var mono = &audio.Format{SampleRate: 1000, NumChannels: 1}

// constReader yields up to avail samples of a constant value per read.
type constReader struct {
	format *audio.Format
	value  float64
	avail  int
}

func (r *constReader) Format() *audio.Format { return r.format }

func (r *constReader) ReadAudio(buf *audio.FloatBuffer) (int, error) {
	n := len(buf.Data)
	if r.avail >= 0 && r.avail < n {
		n = r.avail
	}
	for i := 0; i < n; i++ {
		buf.Data[i] = r.value
	}
	return n, nil
}

func newBuf(n int) *audio.FloatBuffer {
	return &audio.FloatBuffer{Format: mono, Data: make([]float64, n)}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGraph_MixesWithIndependentGains(t *testing.T) {
	g := NewGraph(logger.NewNop())
	_ = g.Connect(Microphone, &constReader{format: mono, value: 0.5, avail: -1})
	_ = g.Connect(Background, &constReader{format: mono, value: 0.25, avail: -1})
	_ = g.SetGain(Microphone, 0.5)
	_ = g.SetGain(Background, 1)

	out, err := g.BuildOutput()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	buf := newBuf(4)
	n, err := out.ReadAudio(buf)
	if err != nil || n != 4 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	for _, v := range buf.Data {
		if !almost(v, 0.5) {
			t.Fatalf("mixed sample %v, want 0.5", v)
		}
	}

	// gain changes apply to the next read without rebuilding
	_ = g.SetGain(Background, 0)
	_, _ = out.ReadAudio(buf)
	if !almost(buf.Data[0], 0.25) {
		t.Fatalf("after gain change got %v, want 0.25", buf.Data[0])
	}
}

func TestGraph_ClampsSum(t *testing.T) {
	g := NewGraph(logger.NewNop())
	_ = g.Connect(Microphone, &constReader{format: mono, value: 0.9, avail: -1})
	_ = g.Connect(Background, &constReader{format: mono, value: 0.9, avail: -1})
	out, _ := g.BuildOutput()

	buf := newBuf(2)
	_, _ = out.ReadAudio(buf)
	if buf.Data[0] != 1 {
		t.Fatalf("sum should clamp to 1, got %v", buf.Data[0])
	}
}

func TestGraph_SingleSourcePassthrough(t *testing.T) {
	g := NewGraph(logger.NewNop())
	_ = g.Connect(Microphone, &constReader{format: mono, value: 0.3, avail: 2})

	out, err := g.BuildOutput()
	if err != nil {
		t.Fatalf("build without background: %v", err)
	}
	if got := out.Sources(); len(got) != 1 || got[0] != Microphone {
		t.Fatalf("sources %v", got)
	}
	buf := newBuf(4)
	n, _ := out.ReadAudio(buf)
	if n != 2 || !almost(buf.Data[1], 0.3) || buf.Data[2] != 0 {
		t.Fatalf("passthrough n=%d data=%v", n, buf.Data)
	}
}

func TestGraph_BuildOutputFailures(t *testing.T) {
	g := NewGraph(logger.NewNop())
	if _, err := g.BuildOutput(); !errors.Is(err, errors.ErrDeviceUnavailable) {
		t.Fatalf("empty graph: expected ErrDeviceUnavailable, got %v", err)
	}

	_ = g.Connect(Microphone, &constReader{format: mono, avail: -1})
	_ = g.Connect(Background, &constReader{format: &audio.Format{SampleRate: 44100, NumChannels: 2}, avail: -1})
	if _, err := g.BuildOutput(); !errors.Is(err, errors.ErrDeviceUnavailable) {
		t.Fatalf("mismatched formats: expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestGraph_MuteKeepsSourceConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	mic := mock_media.NewMockAudioReader(ctrl)
	mic.EXPECT().Format().Return(mono).AnyTimes()
	// the muted microphone is still read, so toggling back is immediate
	mic.EXPECT().ReadAudio(gomock.Any()).DoAndReturn(func(buf *audio.FloatBuffer) (int, error) {
		for i := range buf.Data {
			buf.Data[i] = 0.4
		}
		return len(buf.Data), nil
	}).Times(2)

	g := NewGraph(logger.NewNop())
	_ = g.Connect(Microphone, mic)
	_ = g.SetGain(Microphone, 0.5)
	out, _ := g.BuildOutput()

	g.Mute(Microphone)
	if !g.Muted(Microphone) || g.Gain(Microphone) != 0 {
		t.Fatalf("mute should zero the gain")
	}
	buf := newBuf(3)
	_, _ = out.ReadAudio(buf)
	if buf.Data[0] != 0 {
		t.Fatalf("muted output %v", buf.Data[0])
	}

	_ = g.SetGain(Microphone, 0.25)
	g.Unmute(Microphone)
	if g.Gain(Microphone) != 0.25 {
		t.Fatalf("unmute should restore the latest gain, got %v", g.Gain(Microphone))
	}
	_, _ = out.ReadAudio(buf)
	if !almost(buf.Data[0], 0.1) {
		t.Fatalf("unmuted output %v, want 0.1", buf.Data[0])
	}
}

func TestGraph_SetGainRejectsOutOfRange(t *testing.T) {
	g := NewGraph(logger.NewNop())
	for _, v := range []float64{-0.1, 1.01, math.NaN()} {
		if err := g.SetGain(Background, v); !errors.Is(err, errors.ErrInvalidInput) {
			t.Fatalf("gain %v: expected ErrInvalidInput, got %v", v, err)
		}
	}
	if err := g.SetGain("speaker", 0.5); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("unknown source: expected ErrInvalidInput, got %v", err)
	}
}

func TestGraph_ClosedGraphRefusesWork(t *testing.T) {
	g := NewGraph(logger.NewNop())
	_ = g.Close()
	if err := g.Connect(Microphone, &constReader{format: mono}); !errors.Is(err, errors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTrack_PositionFollowsReadsAndRate(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = float64(i) / 1000
	}
	tr := NewTrack(mono, samples)
	if tr.Duration() != time.Second {
		t.Fatalf("duration %v", tr.Duration())
	}

	buf := newBuf(100)
	if n, _ := tr.ReadAudio(buf); n != 0 {
		t.Fatalf("paused track should yield nothing, got %d", n)
	}

	_ = tr.Play()
	_, _ = tr.ReadAudio(buf)
	if tr.Position() != 100*time.Millisecond {
		t.Fatalf("position %v, want 100ms", tr.Position())
	}

	_ = tr.SetRate(2)
	_, _ = tr.ReadAudio(buf)
	if tr.Position() != 300*time.Millisecond {
		t.Fatalf("position at 2x %v, want 300ms", tr.Position())
	}
	if !almost(buf.Data[1], 0.102) {
		t.Fatalf("2x should skip every other frame, got %v", buf.Data[1])
	}

	_ = tr.Seek(950 * time.Millisecond)
	_ = tr.SetRate(1)
	n, _ := tr.ReadAudio(buf)
	if n != 50 {
		t.Fatalf("read past end returned %d samples, want 50", n)
	}
	if err := tr.SetRate(0); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("zero rate: expected ErrInvalidInput, got %v", err)
	}
}

func TestWAV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	format := &audio.Format{SampleRate: 8000, NumChannels: 2}
	w, err := NewWAVWriter(f, format)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	in := []float64{0, 0, 0.5, -0.5, 1, -1, 0.25, 0.75}
	if err := w.Write(&audio.FloatBuffer{Format: format, Data: in}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.Frames() != 4 {
		t.Fatalf("frames %d", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	tr, err := DecodeWAV(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.Format().NumChannels != 2 || tr.Format().SampleRate != 8000 {
		t.Fatalf("format %+v", tr.Format())
	}

	_ = tr.Play()
	out := &audio.FloatBuffer{Format: format, Data: make([]float64, len(in))}
	n, _ := tr.ReadAudio(out)
	if n != len(in) {
		t.Fatalf("decoded %d samples, want %d", n, len(in))
	}
	for i := range in {
		if math.Abs(out.Data[i]-in[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, out.Data[i], in[i])
		}
	}
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	if _, err := DecodeWAV(f); !errors.IsDecodeFailure(err) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}
