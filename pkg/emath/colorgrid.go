package emath

import(
	"fmt"
	"image"

	"golang.org/x/image/math/f64"
)

type Vec3 f64.Vec3

func (v Vec3)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}

func (v *Vec3)FloorAt(min float64) {
	if v[0] < min { v[0] = min }
	if v[1] < min { v[1] = min }
	if v[2] < min { v[2] = min }
}

// A ColorGrid is three same-sized FloatGrids, one per RGB channel.
type ColorGrid [3]FloatGrid

func NewColorGrid(w, h int) ColorGrid {
	return ColorGrid{NewFloatGrid(w, h), NewFloatGrid(w, h), NewFloatGrid(w, h)}
}

func (cg *ColorGrid)Dx() int { return cg[0].Dx() }
func (cg *ColorGrid)Dy() int { return cg[0].Dy() }

func (cg *ColorGrid)At(x, y int) Vec3 {
	return Vec3{cg[0].Get(x,y), cg[1].Get(x,y), cg[2].Get(x,y)}
}

func (cg *ColorGrid)Set(x, y int, v Vec3) {
	cg[0].Set(x, y, v[0])
	cg[1].Set(x, y, v[1])
	cg[2].Set(x, y, v[2])
}

// Consistent is true if all three channels have the same dimensions.
func (cg *ColorGrid)Consistent() bool {
	return cg[0].SameSize(&cg[1]) && cg[0].SameSize(&cg[2])
}

func (cg *ColorGrid)Copy() ColorGrid {
	return ColorGrid{cg[0].Copy(), cg[1].Copy(), cg[2].Copy()}
}

func (cg *ColorGrid)Map(f func(float64) float64) {
	for c := range cg {
		cg[c].Map(f)
	}
}

func (cg *ColorGrid)Embed(w, h int, at image.Point) ColorGrid {
	return ColorGrid{cg[0].Embed(w, h, at), cg[1].Embed(w, h, at), cg[2].Embed(w, h, at)}
}

func (cg *ColorGrid)Reduce() ColorGrid {
	return ColorGrid{cg[0].Reduce(), cg[1].Reduce(), cg[2].Reduce()}
}

func (cg *ColorGrid)ExpandInto(dst *ColorGrid, shiftX, shiftY int, wrapX bool) {
	for c := range cg {
		cg[c].ExpandInto(&dst[c], shiftX, shiftY, wrapX)
	}
}

// An RGBAGrid is an RGB image plus a coverage channel.
type RGBAGrid struct {
	Color ColorGrid
	Alpha FloatGrid
}

func NewRGBAGrid(w, h int) RGBAGrid {
	return RGBAGrid{Color: NewColorGrid(w, h), Alpha: NewFloatGrid(w, h)}
}

func (g *RGBAGrid)Dx() int { return g.Alpha.Dx() }
func (g *RGBAGrid)Dy() int { return g.Alpha.Dy() }
