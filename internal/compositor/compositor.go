// Package compositor renders one frame per tick: a base image (camera frame,
// clip frame or slide), the active color filter, then the active overlays in
// z-order.
package compositor

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/overlay"
	"github.com/orgball2608/reel-studio/pkg/logger"
	xdraw "golang.org/x/image/draw"
)

type Opts struct {
	Filter string
	// Width and Height size the surface until a base image says otherwise.
	Width  int
	Height int
}

type Compositor struct {
	log     logger.Logger
	catalog *Catalog

	mu       sync.Mutex
	filter   string
	surface  *image.RGBA
	stickers map[string]image.Image
	text     map[string]*image.RGBA
	missing  map[string]bool
}

func New(log logger.Logger, catalog *Catalog, opts Opts) (*Compositor, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if err := catalog.validate(opts.Filter); err != nil {
		return nil, err
	}
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = 720, 1280
	}
	return &Compositor{
		log:      log.WithComponent("compositor"),
		catalog:  catalog,
		filter:   opts.Filter,
		surface:  image.NewRGBA(image.Rect(0, 0, w, h)),
		stickers: make(map[string]image.Image),
		text:     make(map[string]*image.RGBA),
		missing:  make(map[string]bool),
	}, nil
}

// SetFilter switches the active filter; unknown names are rejected.
func (c *Compositor) SetFilter(name string) error {
	if err := c.catalog.validate(name); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = name
	return nil
}

func (c *Compositor) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Compositor) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.surface.Bounds()
	return b.Dx(), b.Dy()
}

// AddSticker registers a decoded sticker image under its content URI.
func (c *Compositor) AddSticker(uri string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stickers[uri] = img
	delete(c.missing, uri)
}

// PreloadStickers loads every sticker overlay's image ahead of playback so no
// decode happens inside the tick loop. Failures are logged and the sticker is
// skipped when drawn.
func (c *Compositor) PreloadStickers(ctx context.Context, loader media.Loader, overlays []domain.Overlay) {
	for _, o := range overlays {
		if o.Kind != domain.OverlaySticker {
			continue
		}
		c.mu.Lock()
		_, ok := c.stickers[o.Content]
		c.mu.Unlock()
		if ok {
			continue
		}
		img, err := loader.LoadImage(ctx, o.Content)
		if err != nil {
			c.log.Warn("Failed to load sticker", "overlay", o.ID, "uri", o.Content, "error", err)
			continue
		}
		c.AddSticker(o.Content, img)
	}
}

// ComposeLive draws a camera frame, mirrored for front-facing sources,
// followed by the filter and overlays. A nil frame leaves a black surface.
func (c *Compositor) ComposeLive(frame image.Image, mirrored bool, overlays []overlay.Resolved) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawBase(frame)
	if mirrored && frame != nil {
		mirror(c.surface)
	}
	c.finish(overlays)
	return c.surface
}

// ComposeEdited draws the active clip frame or slide. A nil base (no clip or a
// degraded one) is drawn as black so overlays still render.
func (c *Compositor) ComposeEdited(base image.Image, overlays []overlay.Resolved) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawBase(base)
	c.finish(overlays)
	return c.surface
}

// Snapshot copies the current surface for consumers that outlive the tick.
func (c *Compositor) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := image.NewRGBA(c.surface.Bounds())
	copy(out.Pix, c.surface.Pix)
	return out
}

func (c *Compositor) drawBase(base image.Image) {
	if base == nil {
		xdraw.Draw(c.surface, c.surface.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
		return
	}
	b := base.Bounds()
	if b.Dx() != c.surface.Bounds().Dx() || b.Dy() != c.surface.Bounds().Dy() {
		c.log.Debug("Resizing surface", "from", c.surface.Bounds().Size().String(), "to", b.Size().String())
		c.surface = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	xdraw.Draw(c.surface, c.surface.Bounds(), base, b.Min, xdraw.Src)
}

func (c *Compositor) finish(overlays []overlay.Resolved) {
	if f, _ := c.catalog.Get(c.filter); f != nil {
		f(c.surface)
	}
	for _, r := range overlays {
		c.drawOverlay(r)
	}
}

func (c *Compositor) drawOverlay(r overlay.Resolved) {
	var src image.Image
	switch r.Overlay.Kind {
	case domain.OverlayText:
		src = c.cached("text:"+r.Overlay.Content, func() *image.RGBA { return renderText(r.Overlay.Content) })
	case domain.OverlayPoll:
		src = c.cached("poll:"+r.Overlay.Content, func() *image.RGBA { return renderPoll(r.Overlay.Content) })
	case domain.OverlaySticker:
		img, ok := c.stickers[r.Overlay.Content]
		if !ok {
			if !c.missing[r.Overlay.Content] {
				c.missing[r.Overlay.Content] = true
				c.log.Warn("Sticker not loaded, skipping", "overlay", r.Overlay.ID, "uri", r.Overlay.Content)
			}
			return
		}
		src = img
	default:
		return
	}
	blit(c.surface, src, r.Transform)
}

func (c *Compositor) cached(key string, render func() *image.RGBA) *image.RGBA {
	if img, ok := c.text[key]; ok {
		return img
	}
	img := render()
	c.text[key] = img
	return img
}
