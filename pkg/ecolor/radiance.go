package ecolor

import(
	"fmt"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panoblend/pkg/emath"
)

// A CameraNative color is a sensor reading, combined with the exposure
// it was taken at. Two tiles shot at different exposures give different
// readings for the same bit of scene; scaling by IllumAtMax puts them
// on one radiance scale.
type CameraNative struct {
	// The sensor photosites give values in the range [0, 0xFFFF]; we map those to [0.0, 1.0]
	hdrcolor.RGB

	// How much Illuminance (in lux) is needed to generate a photosite value of 0xFFFF
	IllumAtMax float64
}

// Treats the input RGB channels as [0, 0xFFFF], not premultiplied by
// alpha; a partially transparent pixel keeps its full reading.
func NewCameraNative(col color.Color, illumAtMax float64) CameraNative {
	c := color.NRGBA64Model.Convert(col).(color.NRGBA64)

	return CameraNative{
		RGB: hdrcolor.RGB{
			R: float64(c.R) / float64(0xFFFF),
			G: float64(c.G) / float64(0xFFFF),
			B: float64(c.B) / float64(0xFFFF),
		},
		IllumAtMax: illumAtMax,
	}
}

func (cn CameraNative)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f] @%.0f lux", cn.RGB.R, cn.RGB.G, cn.RGB.B, cn.IllumAtMax)
}

// Radiance rescales the reading so that 1.0 means `refIllum` lux.
func (cn CameraNative)Radiance(refIllum float64) emath.Vec3 {
	f := cn.IllumAtMax / refIllum
	return emath.Vec3{cn.RGB.R * f, cn.RGB.G * f, cn.RGB.B * f}
}

// HDRRadiance reads an already-linear HDR color. Negative channels, which
// some encoders produce for out-of-gamut colors, are clipped to zero.
func HDRRadiance(c hdrcolor.Color) emath.Vec3 {
	r, g, b, _ := c.HDRRGBA()
	v := emath.Vec3{r, g, b}
	v.FloorAt(0.0)
	return v
}
