package compositor

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	mock_media "github.com/orgball2608/reel-studio/internal/media/mocks"
	"github.com/orgball2608/reel-studio/internal/overlay"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"go.uber.org/mock/gomock"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func newCompositor(t *testing.T, filter string) *Compositor {
	t.Helper()
	c, err := New(logger.NewNop(), nil, Opts{Filter: filter, Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return c
}

func TestCompositor_OrderBaseFilterOverlays(t *testing.T) {
	c := newCompositor(t, "mono")
	c.AddSticker("dot.png", solid(2, 2, green))

	out := c.ComposeEdited(solid(10, 10, red), []overlay.Resolved{{
		Overlay:   domain.Overlay{ID: "s", Kind: domain.OverlaySticker, Content: "dot.png"},
		Transform: domain.Transform{X: 5, Y: 5, Scale: 1},
	}})

	// the base went through the mono filter
	base := out.RGBAAt(0, 0)
	if base.R != base.G || base.G != base.B {
		t.Fatalf("base should be grey after mono filter, got %+v", base)
	}
	// the sticker is drawn after the filter and keeps its color
	if got := out.RGBAAt(5, 5); got != green {
		t.Fatalf("overlay pixel %+v, want %+v", got, green)
	}
}

func TestCompositor_LaterOverlaysOnTop(t *testing.T) {
	c := newCompositor(t, "")
	c.AddSticker("r", solid(4, 4, red))
	c.AddSticker("b", solid(4, 4, blue))

	out := c.ComposeEdited(solid(8, 8, green), []overlay.Resolved{
		{Overlay: domain.Overlay{Kind: domain.OverlaySticker, Content: "r"}, Transform: domain.Transform{X: 4, Y: 4, Scale: 1}},
		{Overlay: domain.Overlay{Kind: domain.OverlaySticker, Content: "b"}, Transform: domain.Transform{X: 4, Y: 4, Scale: 1}},
	})
	if got := out.RGBAAt(4, 4); got != blue {
		t.Fatalf("top overlay should win, got %+v", got)
	}
}

func TestCompositor_MirrorsFrontCamera(t *testing.T) {
	c := newCompositor(t, "")
	frame := solid(4, 1, red)
	frame.SetRGBA(3, 0, blue)

	out := c.ComposeLive(frame, true, nil)
	if out.RGBAAt(0, 0) != blue || out.RGBAAt(3, 0) != red {
		t.Fatalf("mirrored row = %+v ... %+v", out.RGBAAt(0, 0), out.RGBAAt(3, 0))
	}

	out = c.ComposeLive(frame, false, nil)
	if out.RGBAAt(3, 0) != blue {
		t.Fatalf("rear camera must not be mirrored")
	}
}

func TestCompositor_ResizesToSource(t *testing.T) {
	c := newCompositor(t, "")
	if w, h := c.Size(); w != 8 || h != 8 {
		t.Fatalf("initial size %dx%d", w, h)
	}
	c.ComposeEdited(solid(16, 9, red), nil)
	if w, h := c.Size(); w != 16 || h != 9 {
		t.Fatalf("size after 16x9 source %dx%d", w, h)
	}
	// a missing base keeps the last size and draws black
	out := c.ComposeEdited(nil, nil)
	if w, h := c.Size(); w != 16 || h != 9 {
		t.Fatalf("size after nil base %dx%d", w, h)
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{A: 255}) {
		t.Fatalf("nil base should be black, got %+v", got)
	}
}

func TestCompositor_RotatedAndScaledOverlay(t *testing.T) {
	c := newCompositor(t, "")
	c.AddSticker("bar", solid(6, 2, blue))

	out := c.ComposeEdited(solid(20, 20, red), []overlay.Resolved{{
		Overlay:   domain.Overlay{Kind: domain.OverlaySticker, Content: "bar"},
		Transform: domain.Transform{X: 10, Y: 10, Scale: 2, Rotation: 90},
	}})
	// rotated 90 degrees, the 12x4 bar stands vertically around (10, 10)
	if got := out.RGBAAt(10, 5); got.B < 200 {
		t.Fatalf("expected the bar above the center, got %+v", got)
	}
	if got := out.RGBAAt(5, 10); got != red {
		t.Fatalf("expected background left of the center, got %+v", got)
	}
}

func TestCompositor_TextAndPollRender(t *testing.T) {
	c := newCompositor(t, "")
	out := c.ComposeEdited(solid(300, 300, red), []overlay.Resolved{
		{Overlay: domain.Overlay{Kind: domain.OverlayText, Content: "hello"}, Transform: domain.Transform{X: 60, Y: 40, Scale: 1}},
		{Overlay: domain.Overlay{Kind: domain.OverlayPoll, Content: "Best?|A|B"}, Transform: domain.Transform{X: 150, Y: 200, Scale: 1}},
	})
	if got := out.RGBAAt(60, 40); got == red {
		t.Fatalf("text overlay was not drawn")
	}
	if got := out.RGBAAt(150, 200); got == red {
		t.Fatalf("poll overlay was not drawn")
	}
}

func TestCompositor_FilterValidation(t *testing.T) {
	if _, err := New(logger.NewNop(), nil, Opts{Filter: "nope"}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	c := newCompositor(t, "")
	if err := c.SetFilter("sepia"); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if err := c.SetFilter("nope"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if c.Filter() != "sepia" {
		t.Fatalf("filter changed on error")
	}
}

func TestCompositor_PreloadStickersSkipsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mock_media.NewMockLoader(ctrl)
	loader.EXPECT().LoadImage(gomock.Any(), "ok.png").Return(solid(2, 2, green), nil)
	loader.EXPECT().LoadImage(gomock.Any(), "broken.png").Return(nil, errors.ErrDecodeFailure)

	c := newCompositor(t, "")
	c.PreloadStickers(context.Background(), loader, []domain.Overlay{
		{ID: "1", Kind: domain.OverlaySticker, Content: "ok.png"},
		{ID: "2", Kind: domain.OverlaySticker, Content: "broken.png"},
		{ID: "3", Kind: domain.OverlayText, Content: "ignored"},
	})

	out := c.ComposeEdited(solid(8, 8, red), []overlay.Resolved{
		{Overlay: domain.Overlay{Kind: domain.OverlaySticker, Content: "broken.png"}, Transform: domain.Transform{X: 4, Y: 4, Scale: 1}},
	})
	if got := out.RGBAAt(4, 4); got != red {
		t.Fatalf("a sticker that failed to load must be skipped, got %+v", got)
	}
}

func TestCatalog_BuiltinsAreNamed(t *testing.T) {
	names := DefaultCatalog().Names()
	want := []string{"cool", "fade", "mono", "normal", "sepia", "vivid", "warm"}
	if len(names) != len(want) {
		t.Fatalf("names %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names %v, want %v", names, want)
		}
	}
}

func TestPacer_CaptureRate(t *testing.T) {
	p := NewPacer(24)
	start := time.Unix(0, 0)
	frames := 0
	for i := 0; i < 60; i++ {
		if p.Due(start.Add(time.Duration(i) * time.Second / 60)) {
			frames++
		}
	}
	if frames != 24 {
		t.Fatalf("got %d frames in one second at 60Hz ticks, want 24", frames)
	}

	unpaced := NewPacer(0)
	for i := 0; i < 5; i++ {
		if !unpaced.Due(start) {
			t.Fatalf("fps 0 should pass every tick")
		}
	}
}
