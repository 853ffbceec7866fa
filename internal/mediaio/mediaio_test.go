package mediaio

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

var stereo = &audio.Format{SampleRate: 8000, NumChannels: 2}

func solid(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d > -12 && d < 12
}

func assertColor(t *testing.T, img image.Image, want color.RGBA) {
	t.Helper()
	r, g, b, _ := img.At(img.Bounds().Min.X+1, img.Bounds().Min.Y+1).RGBA()
	if !near(uint8(r>>8), want.R) || !near(uint8(g>>8), want.G) || !near(uint8(b>>8), want.B) {
		t.Fatalf("pixel %d,%d,%d, want about %v", r>>8, g>>8, b>>8, want)
	}
}

// writeSequence encodes red at 0, green at 100ms and blue at 300ms at 10 fps.
func writeSequence(t *testing.T, dir string, format *audio.Format) *SequenceEncoder {
	t.Helper()
	enc := NewSequenceEncoder(dir)
	if err := enc.Begin(16, 16, 10, format); err != nil {
		t.Fatalf("begin: %v", err)
	}
	frames := []struct {
		c  color.RGBA
		ts time.Duration
	}{
		{color.RGBA{R: 255, A: 255}, 0},
		{color.RGBA{G: 255, A: 255}, 100 * time.Millisecond},
		{color.RGBA{G: 255, A: 255}, 150 * time.Millisecond},
		{color.RGBA{B: 255, A: 255}, 300 * time.Millisecond},
	}
	for _, f := range frames {
		// frames arrive at a different size and are scaled down
		if err := enc.EncodeFrame(solid(f.c, 32, 32), f.ts); err != nil {
			t.Fatalf("encode frame: %v", err)
		}
	}
	if format != nil {
		buf := &audio.FloatBuffer{Format: format, Data: make([]float64, 800)}
		for i := range buf.Data {
			buf.Data[i] = 0.5
		}
		if err := enc.EncodeAudio(buf); err != nil {
			t.Fatalf("encode audio: %v", err)
		}
	}
	return enc
}

func TestSequenceEncoder_PlacesFramesOnGrid(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg"+sequenceExt)
	enc := writeSequence(t, dir, nil)
	art, err := enc.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if art.Codec != CodecJPEGSeq || art.Width != 16 || art.Duration != 400*time.Millisecond {
		t.Fatalf("artifact %+v", art)
	}

	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	// red, green, green (repeated into the gap), blue; the 150ms frame is dropped
	if m.Frames != 4 || m.Audio != "" {
		t.Fatalf("manifest %+v", m)
	}

	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	h, err := OpenSequence(dir, clock)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if w, hgt := h.Size(); w != 16 || hgt != 16 {
		t.Fatalf("size %dx%d", w, hgt)
	}
	want := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	for i, c := range want {
		_ = h.Seek(time.Duration(i) * 100 * time.Millisecond)
		frame, err := h.Frame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		assertColor(t, frame, c)
	}
}

func TestSequenceHandle_RunsOnItsOwnClock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg"+sequenceExt)
	enc := writeSequence(t, dir, nil)
	if _, err := enc.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	h, _ := OpenSequence(dir, clock)

	_ = h.Play()
	clock.Advance(100 * time.Millisecond)
	if h.Position() != 100*time.Millisecond {
		t.Fatalf("position %v", h.Position())
	}
	_ = h.SetRate(2)
	clock.Advance(100 * time.Millisecond)
	if h.Position() != 300*time.Millisecond {
		t.Fatalf("position at 2x %v, want 300ms", h.Position())
	}
	_ = h.Pause()
	clock.Advance(time.Second)
	if h.Position() != 300*time.Millisecond {
		t.Fatalf("paused handle moved to %v", h.Position())
	}
	_ = h.Play()
	clock.Advance(time.Second)
	if h.Position() != 400*time.Millisecond {
		t.Fatalf("position should clamp at the end, got %v", h.Position())
	}
	if err := h.SetRate(0); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("zero rate accepted")
	}
}

func TestSequenceEncoder_AudioTrack(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "seg"+sequenceExt)
	enc := writeSequence(t, dir, stereo)
	if _, err := enc.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	l := NewLoader(logger.NewNop(), NewProber(logger.NewNop(), "", 0), nil, LoaderOpts{Root: root})
	a, err := l.OpenAudio(context.Background(), "seg"+sequenceExt)
	if err != nil {
		t.Fatalf("open audio: %v", err)
	}
	if a.Duration() != 50*time.Millisecond {
		t.Fatalf("audio duration %v, want 50ms", a.Duration())
	}
	_ = a.Play()
	buf := &audio.FloatBuffer{Data: make([]float64, 10)}
	n, _ := a.ReadAudio(buf)
	if n != 10 || buf.Data[0] < 0.49 || buf.Data[0] > 0.51 {
		t.Fatalf("read %d samples, first %v", n, buf.Data[0])
	}

	d, err := NewProber(logger.NewNop(), "", 0).Probe(context.Background(), filepath.Join(dir, audioName))
	if err != nil || d < 49*time.Millisecond || d > 52*time.Millisecond {
		t.Fatalf("wav probe %v, %v", d, err)
	}
}

func TestSequenceEncoder_AbortRemovesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg"+sequenceExt)
	enc := writeSequence(t, dir, stereo)
	if err := enc.Abort(); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("sequence directory should be gone")
	}
}

func TestSequenceEncoder_EmptyFails(t *testing.T) {
	enc := NewSequenceEncoder(filepath.Join(t.TempDir(), "empty"+sequenceExt))
	_ = enc.Begin(4, 4, 24, nil)
	if _, err := enc.End(context.Background()); !errors.IsEncodeFailure(err) {
		t.Fatalf("expected encode failure, got %v", err)
	}
}

func TestFactory_CodecSupport(t *testing.T) {
	f := NewFactory(logger.NewNop(), t.TempDir(), NewFFmpeg(logger.NewNop(), "/nonexistent/ffmpeg"))
	tests := []struct {
		codec string
		want  bool
	}{
		{CodecJPEGSeq, true},
		{"mp4/h264", false},
		{"webm/vp9", false},
		{"avi/divx", false},
	}
	for _, tt := range tests {
		if got := f.Supports(tt.codec); got != tt.want {
			t.Errorf("Supports(%q) = %v, want %v", tt.codec, got, tt.want)
		}
	}
	if _, err := f.NewEncoder("mp4/h264"); !errors.IsEncodeFailure(err) {
		t.Fatalf("expected encode failure, got %v", err)
	}
	enc, err := f.NewEncoder(CodecJPEGSeq)
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}
	if _, ok := enc.(*SequenceEncoder); !ok {
		t.Fatalf("unexpected encoder %T", enc)
	}
}

func TestProber_FallbackWhenUnmeasurable(t *testing.T) {
	p := NewProber(logger.NewNop(), "/nonexistent/ffprobe", 0)
	src := filepath.Join(t.TempDir(), "clip.mp4")
	_ = os.WriteFile(src, []byte("not a video"), 0o644)

	if _, err := p.Probe(context.Background(), src); !errors.Is(err, errors.ErrDurationUnmeasurable) {
		t.Fatalf("expected unmeasurable, got %v", err)
	}
	if d := p.Duration(context.Background(), src); d != DefaultFallbackDuration {
		t.Fatalf("fallback %v", d)
	}
}

func TestLoader_Images(t *testing.T) {
	root := t.TempDir()
	f, _ := os.Create(filepath.Join(root, "sticker.png"))
	_ = png.Encode(f, solid(color.RGBA{R: 10, G: 20, B: 30, A: 255}, 5, 3))
	_ = f.Close()
	_ = os.WriteFile(filepath.Join(root, "broken.png"), []byte("garbage"), 0o644)

	l := NewLoader(logger.NewNop(), NewProber(logger.NewNop(), "", 0), nil, LoaderOpts{Root: root})
	img, err := l.LoadImage(context.Background(), "file://"+filepath.Join(root, "sticker.png"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if _, err := l.LoadImage(context.Background(), "missing.png"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := l.LoadImage(context.Background(), "broken.png"); !errors.IsDecodeFailure(err) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestLoader_ContainerWithoutFFmpegIsDecodeFailure(t *testing.T) {
	root := t.TempDir()
	_ = os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("x"), 0o644)
	l := NewLoader(logger.NewNop(), NewProber(logger.NewNop(), "/nonexistent/ffprobe", 0),
		NewFFmpeg(logger.NewNop(), "/nonexistent/ffmpeg"), LoaderOpts{Root: root, CacheDir: t.TempDir()})
	if _, err := l.OpenVideo(context.Background(), "clip.mp4"); !errors.IsDecodeFailure(err) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestLoader_WAV(t *testing.T) {
	root := t.TempDir()
	f, _ := os.Create(filepath.Join(root, "narration.wav"))
	w, _ := audiomix.NewWAVWriter(f, stereo)
	_ = w.Write(&audio.FloatBuffer{Format: stereo, Data: make([]float64, 1600)})
	_ = w.Close()
	_ = f.Close()

	l := NewLoader(logger.NewNop(), NewProber(logger.NewNop(), "", 0), nil, LoaderOpts{Root: root})
	a, err := l.OpenAudio(context.Background(), "narration.wav")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.Duration() != 100*time.Millisecond || a.Format().NumChannels != 2 {
		t.Fatalf("duration %v format %+v", a.Duration(), a.Format())
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		root, uri, want string
	}{
		{"/data", "clips/a.mp4", "/data/clips/a.mp4"},
		{"/data", "file:///abs/b.wav", "/abs/b.wav"},
		{"", "rel/c.png", "rel/c.png"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.root, tt.uri); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.root, tt.uri, got, tt.want)
		}
	}
	if got := Resolve("", URI("/x/y.jpegseq")); got != "/x/y.jpegseq" {
		t.Errorf("URI round trip gave %q", got)
	}
}

func TestProber_Import(t *testing.T) {
	root := t.TempDir()
	p := NewProber(logger.NewNop(), "/nonexistent/ffprobe", 3*time.Second)

	t.Run("sequence", func(t *testing.T) {
		dir := filepath.Join(root, "take.jpegseq")
		art, err := writeSequence(t, dir, nil).End(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		clip, err := p.Import(context.Background(), root, "take.jpegseq")
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if clip.ID == "" || clip.SourceURI != "take.jpegseq" {
			t.Fatalf("clip = %+v", clip)
		}
		if clip.TotalDuration != art.Duration || clip.TrimStart != 0 || clip.TrimEnd != art.Duration {
			t.Fatalf("clip should span the whole source: %+v", clip)
		}
		if clip.Width != 16 || clip.Height != 16 {
			t.Fatalf("dimensions %dx%d", clip.Width, clip.Height)
		}
		if clip.Thumbnail != URI(CoverFrame(dir)) {
			t.Fatalf("thumbnail = %q", clip.Thumbnail)
		}
	})

	t.Run("unmeasurable", func(t *testing.T) {
		_ = os.WriteFile(filepath.Join(root, "odd.mov"), []byte("garbage"), 0o644)
		clip, err := p.Import(context.Background(), root, "odd.mov")
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if clip.TotalDuration != 3*time.Second || clip.TrimEnd != 3*time.Second {
			t.Fatalf("fallback not applied: %+v", clip)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := p.Import(context.Background(), root, "nope.mp4"); !errors.Is(err, errors.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestReplaySource_ServesRecording(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rehearsal"+sequenceExt)
	if _, err := writeSequence(t, dir, stereo).End(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	src := NewReplaySource(dir, clock)

	st, err := src.Open(context.Background(), media.StreamRequest{Facing: media.FacingUser})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if st.Facing() != media.FacingUser {
		t.Fatalf("facing %s", st.Facing())
	}
	img, ok := st.LatestFrame()
	if !ok {
		t.Fatal("no frame")
	}
	assertColor(t, img, color.RGBA{R: 255})

	clock.Advance(350 * time.Millisecond)
	img, _ = st.LatestFrame()
	assertColor(t, img, color.RGBA{B: 255})

	mic := st.Microphone()
	if mic == nil {
		t.Fatal("recorded audio should be served as the microphone")
	}
	buf := &audio.FloatBuffer{Format: mic.Format(), Data: make([]float64, 10)}
	if n, _ := mic.ReadAudio(buf); n != 10 || buf.Data[0] < 0.4 {
		t.Fatalf("mic read %d samples, first %v", n, buf.Data[0])
	}
}

func TestReplaySource_MissingRecording(t *testing.T) {
	src := NewReplaySource(filepath.Join(t.TempDir(), "none"+sequenceExt), nil)
	if _, err := src.Open(context.Background(), media.StreamRequest{}); !errors.Is(err, errors.ErrDeviceUnavailable) {
		t.Fatalf("want ErrDeviceUnavailable, got %v", err)
	}
}
