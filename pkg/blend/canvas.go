package blend

import(
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panoblend/pkg/emath"
)

// A Canvas is the output panorama: linear radiance RGB, plus a coverage
// channel that is 1 where some tile contributed and 0 elsewhere.
// Implements the hdr.Image interface, so it can go straight into the
// RGBE encoder and the tone mappers.
type Canvas struct {
	emath.RGBAGrid
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{RGBAGrid: emath.NewRGBAGrid(w, h)}
}

// Implement image.Image
func (c *Canvas)ColorModel() color.Model { return hdrcolor.RGBModel }
func (c *Canvas)Bounds() image.Rectangle { return image.Rect(0, 0, c.Dx(), c.Dy()) }
func (c *Canvas)At(x, y int) color.Color { return c.HDRAt(x, y) }

// Implement hdr.Image
func (c *Canvas)HDRAt(x, y int) hdrcolor.Color {
	if !(image.Point{x, y}.In(c.Bounds())) {
		return hdrcolor.RGB{}
	}
	v := c.Color.At(x, y)
	return hdrcolor.RGB{R: v[0], G: v[1], B: v[2]}
}
func (c *Canvas)Size() int { return c.Dx() * c.Dy() }

func (c *Canvas)Coverage(x, y int) float64 { return c.Alpha.Get(x, y) }

// CoveredPixels counts the pixels some tile contributed to.
func (c *Canvas)CoveredPixels() int {
	n := 0
	for _, a := range c.Alpha.Values() {
		if a > 0 { n++ }
	}
	return n
}
