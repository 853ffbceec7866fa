package compositor

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/orgball2608/reel-studio/internal/domain"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

const (
	textPadding = 6
	pollPadding = 10
	pollWidth   = 220
)

var (
	textBackground = color.RGBA{A: 140}
	pollBackground = color.RGBA{R: 255, G: 255, B: 255, A: 235}
	pollOption     = color.RGBA{R: 230, G: 230, B: 236, A: 255}
	pollInk        = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// placement maps the source image so that its center lands on (X, Y) with
// the transform's scale and rotation (degrees, clockwise on screen).
func placement(src image.Rectangle, tr domain.Transform) f64.Aff3 {
	scale := tr.Scale
	if scale <= 0 {
		scale = 1
	}
	theta := tr.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta)*scale, math.Sin(theta)*scale

	cx := float64(src.Min.X+src.Max.X) / 2
	cy := float64(src.Min.Y+src.Max.Y) / 2
	return f64.Aff3{
		cos, -sin, tr.X - (cos*cx - sin*cy),
		sin, cos, tr.Y - (sin*cx + cos*cy),
	}
}

func blit(dst *image.RGBA, src image.Image, tr domain.Transform) {
	if tr.Rotation == 0 && (tr.Scale == 1 || tr.Scale == 0) {
		b := src.Bounds()
		at := image.Pt(int(math.Round(tr.X-float64(b.Dx())/2)), int(math.Round(tr.Y-float64(b.Dy())/2)))
		xdraw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, xdraw.Over)
		return
	}
	xdraw.BiLinear.Transform(dst, placement(src.Bounds(), tr), src, src.Bounds(), xdraw.Over, nil)
}

func renderText(text string) *image.RGBA {
	lines := strings.Split(text, "\n")
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.White}

	width := 0
	for _, line := range lines {
		if w := d.MeasureString(line).Ceil(); w > width {
			width = w
		}
	}
	lineHeight := face.Metrics().Height.Ceil()
	img := image.NewRGBA(image.Rect(0, 0, width+2*textPadding, lineHeight*len(lines)+2*textPadding))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(textBackground), image.Point{}, xdraw.Src)

	d.Dst = img
	ascent := face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		d.Dot = fixed.P(textPadding, textPadding+ascent+i*lineHeight)
		d.DrawString(line)
	}
	return img
}

// renderPoll draws a question followed by one row per option. Content is
// "question|option|option...".
func renderPoll(content string) *image.RGBA {
	parts := strings.Split(content, "|")
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	rowHeight := lineHeight + pollPadding

	height := pollPadding + rowHeight*len(parts) + pollPadding/2
	img := image.NewRGBA(image.Rect(0, 0, pollWidth, height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(pollBackground), image.Point{}, xdraw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(pollInk), Face: face}
	for i, part := range parts {
		top := pollPadding + i*rowHeight
		if i > 0 {
			row := image.Rect(pollPadding, top-pollPadding/4, pollWidth-pollPadding, top+lineHeight+pollPadding/4)
			xdraw.Draw(img, row, image.NewUniform(pollOption), image.Point{}, xdraw.Src)
		}
		d.Dot = fixed.P(pollPadding+2, top+ascent)
		d.DrawString(strings.TrimSpace(part))
	}
	return img
}

// mirror flips the surface horizontally in place.
func mirror(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for l, r := 0, len(row)-4; l < r; l, r = l+4, r-4 {
			for k := 0; k < 4; k++ {
				row[l+k], row[r+k] = row[r+k], row[l+k]
			}
		}
	}
}
