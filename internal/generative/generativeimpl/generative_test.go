package generativeimpl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/domain"
	mock_generative "github.com/orgball2608/reel-studio/internal/generative/mocks"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	mock_ratelimit "github.com/orgball2608/reel-studio/internal/ratelimit/mocks"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/orgball2608/reel-studio/pkg/retry"
	"go.uber.org/mock/gomock"
)

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
}

func wavBytes(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "n.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := &audio.Format{NumChannels: 1, SampleRate: 1000}
	w, err := audiomix.NewWAVWriter(f, format)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(&audio.FloatBuffer{Format: format, Data: make([]float64, 200)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNarrateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != narratePath || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		var req narrateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text != "hello" {
			t.Errorf("bad body: %+v %v", req, err)
		}
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = io.WriteString(w, "RIFF")
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	limiter := mock_ratelimit.NewMockLimiter(ctrl)
	limiter.EXPECT().Wait(gomock.Any(), "narrate").Return(nil)

	c := NewHTTPClient(logger.NewNop(), ClientOpts{BaseURL: srv.URL + "/", APIKey: "secret", Limiter: limiter, Retry: fastRetry()})
	got, err := c.Narrate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if string(got) != "RIFF" {
		t.Fatalf("body = %q", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestNarrateClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "text too long", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPClient(logger.NewNop(), ClientOpts{BaseURL: srv.URL, Retry: fastRetry()})
	_, err := c.Narrate(context.Background(), "hello")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls.Load())
	}
}

func TestNarrateStopsWhenRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mock_ratelimit.NewMockLimiter(ctrl)
	limiter.EXPECT().Wait(gomock.Any(), "narrate").Return(context.DeadlineExceeded)

	c := NewHTTPClient(logger.NewNop(), ClientOpts{BaseURL: "http://127.0.0.1:1", Limiter: limiter, Retry: fastRetry()})
	if _, err := c.Narrate(context.Background(), "hello"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline error, got %v", err)
	}
}

func TestNarrateUnconfigured(t *testing.T) {
	c := NewHTTPClient(logger.NewNop(), ClientOpts{Retry: fastRetry()})
	if _, err := c.Narrate(context.Background(), "hello"); !errors.Is(err, errors.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestTranscribeMapsSeconds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req transcribeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.URI != "file:///clips/a.mp4" {
			t.Errorf("uri = %q", req.URI)
		}
		_ = json.NewEncoder(w).Encode(transcriptionData{
			Text: "hi there",
			Segments: []transcriptSegment{
				{Text: "hi", StartTime: 0.25, EndTime: 0.75},
				{Text: "there", StartTime: 1, EndTime: 1.5},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(logger.NewNop(), ClientOpts{BaseURL: srv.URL, Retry: fastRetry()})
	got, err := c.Transcribe(context.Background(), "file:///clips/a.mp4")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	want := []domain.TranscriptEntry{
		{Start: 250 * time.Millisecond, End: 750 * time.Millisecond, Text: "hi"},
		{Start: time.Second, End: 1500 * time.Millisecond, Text: "there"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func twoClipComposition(t *testing.T) *composition.Composition {
	t.Helper()
	c := composition.New()
	clips := []domain.Clip{
		{ID: "a", SourceURI: "a.mp4", TotalDuration: 4 * time.Second, TrimStart: time.Second, TrimEnd: 3 * time.Second},
		{ID: "b", SourceURI: "b.mp4", TotalDuration: 2 * time.Second, TrimEnd: 2 * time.Second},
	}
	for _, clip := range clips {
		if _, err := c.AppendClip(clip); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestEnhancerNarrateToleratesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_generative.NewMockClient(ctrl)
	comp := twoClipComposition(t)

	for _, o := range []domain.Overlay{
		{ID: "ok", Kind: domain.OverlayText, Content: "welcome", End: time.Second},
		{ID: "down", Kind: domain.OverlayText, Content: "goodbye", Start: 2 * time.Second, End: 3 * time.Second},
		{ID: "junk", Kind: domain.OverlayText, Content: "noise", End: time.Second},
		{ID: "blank", Kind: domain.OverlayText, Content: "  ", End: time.Second},
		{ID: "sticker", Kind: domain.OverlaySticker, Content: "heart.png", End: time.Second},
	} {
		if _, err := comp.AddOverlay(o); err != nil {
			t.Fatal(err)
		}
	}

	client.EXPECT().Narrate(gomock.Any(), "welcome").Return(wavBytes(t), nil)
	client.EXPECT().Narrate(gomock.Any(), "goodbye").Return(nil, errors.New("service down"))
	client.EXPECT().Narrate(gomock.Any(), "noise").Return([]byte("not audio"), nil)

	dir := t.TempDir()
	n, err := NewEnhancer(logger.NewNop(), client, dir, 2).Narrate(context.Background(), comp)
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if n != 1 {
		t.Fatalf("attached %d narrations, want 1", n)
	}

	ok, _ := comp.Overlay("ok")
	if ok.NarrationURI != mediaio.URI(filepath.Join(dir, "ok.wav")) {
		t.Fatalf("narration uri = %q", ok.NarrationURI)
	}
	for _, id := range []string{"down", "junk", "blank", "sticker"} {
		if o, _ := comp.Overlay(id); o.NarrationURI != "" {
			t.Errorf("%s should stay silent", id)
		}
	}
}

func TestEnhancerCaptionMapsOntoTimeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_generative.NewMockClient(ctrl)
	comp := twoClipComposition(t)

	client.EXPECT().Transcribe(gomock.Any(), "a.mp4").Return([]domain.TranscriptEntry{
		{Start: 0, End: 500 * time.Millisecond, Text: "trimmed away"},
		{Start: 500 * time.Millisecond, End: 1500 * time.Millisecond, Text: "straddles trim start"},
		{Start: 2 * time.Second, End: 2500 * time.Millisecond, Text: "inside"},
	}, nil)
	client.EXPECT().Transcribe(gomock.Any(), "b.mp4").Return(nil, errors.New("no speech model"))

	added := NewEnhancer(logger.NewNop(), client, t.TempDir(), 1).
		Caption(context.Background(), comp, domain.Transform{X: 360, Y: 1100, Scale: 1})

	if len(added) != 2 {
		t.Fatalf("added %d captions, want 2", len(added))
	}
	if added[0].Start != 0 || added[0].End != 500*time.Millisecond {
		t.Errorf("first caption at [%v, %v]", added[0].Start, added[0].End)
	}
	if added[1].Start != time.Second || added[1].End != 1500*time.Millisecond {
		t.Errorf("second caption at [%v, %v]", added[1].Start, added[1].End)
	}
	if added[1].Transform.Y != 1100 {
		t.Errorf("captions should use the base transform")
	}
}
