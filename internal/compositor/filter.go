package compositor

import (
	"image"
	"sort"
	"sync"

	"github.com/orgball2608/reel-studio/pkg/errors"
)

// Filter transforms a surface in place.
type Filter func(img *image.RGBA)

const FilterNormal = "normal"

// Catalog maps filter names to pixel transforms. The compositor never looks
// inside a filter.
type Catalog struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

func NewCatalog() *Catalog {
	return &Catalog{filters: map[string]Filter{FilterNormal: nil}}
}

// DefaultCatalog holds the built-in looks.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register("mono", matrix(colorMatrix{
		{0.299, 0.587, 0.114, 0},
		{0.299, 0.587, 0.114, 0},
		{0.299, 0.587, 0.114, 0},
	}))
	c.Register("sepia", matrix(colorMatrix{
		{0.393, 0.769, 0.189, 0},
		{0.349, 0.686, 0.168, 0},
		{0.272, 0.534, 0.131, 0},
	}))
	c.Register("warm", matrix(colorMatrix{
		{1.10, 0, 0, 8},
		{0, 1.02, 0, 0},
		{0, 0, 0.88, 0},
	}))
	c.Register("cool", matrix(colorMatrix{
		{0.90, 0, 0, 0},
		{0, 1.00, 0, 0},
		{0, 0, 1.12, 8},
	}))
	c.Register("vivid", matrix(saturation(1.4)))
	c.Register("fade", matrix(colorMatrix{
		{0.80, 0, 0, 40},
		{0, 0.80, 0, 40},
		{0, 0, 0.80, 40},
	}))
	return c
}

func (c *Catalog) Register(name string, f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[name] = f
}

// Get returns the filter for name. A nil Filter with ok=true means identity.
func (c *Catalog) Get(name string) (Filter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name == "" {
		name = FilterNormal
	}
	f, ok := c.filters[name]
	return f, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.filters))
	for name := range c.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) validate(name string) error {
	if _, ok := c.Get(name); !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown filter %q", name)
	}
	return nil
}

// colorMatrix rows are r, g, b; columns are the r, g, b weights and an
// offset in 0..255 units.
type colorMatrix [3][4]float64

func saturation(s float64) colorMatrix {
	const lr, lg, lb = 0.299, 0.587, 0.114
	return colorMatrix{
		{lr*(1-s) + s, lg * (1 - s), lb * (1 - s), 0},
		{lr * (1 - s), lg*(1-s) + s, lb * (1 - s), 0},
		{lr * (1 - s), lg * (1 - s), lb*(1-s) + s, 0},
	}
}

func matrix(m colorMatrix) Filter {
	return func(img *image.RGBA) {
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				r, g, bl := float64(row[i]), float64(row[i+1]), float64(row[i+2])
				row[i] = clampByte(m[0][0]*r + m[0][1]*g + m[0][2]*bl + m[0][3])
				row[i+1] = clampByte(m[1][0]*r + m[1][1]*g + m[1][2]*bl + m[1][3])
				row[i+2] = clampByte(m[2][0]*r + m[2][1]*g + m[2][2]*bl + m[2][3])
			}
		}
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
