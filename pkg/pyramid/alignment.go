package pyramid

import(
	"fmt"
	"image"

	"github.com/abworrall/panoblend/pkg/emath"
)

// MaxDepth caps the number of levels; beyond this 2^(levels-1) stops
// being a sensible pixel count.
const MaxDepth = 24

// A Placement describes how a tile must be padded before a pyramid of
// a given depth can take it. Offset and Size are the padded tile, in
// panorama pixels; Inset is where the original tile sits inside it.
//
// Offset and Size are multiples of 2^(levels-1), so every level of the
// decomposition lands on whole pixels, and there are `border` spare
// pixels (measured at the coarsest level) on every side for the
// smoothing kernel to read.
type Placement struct {
	Offset image.Point
	Size   image.Point
	Inset  image.Point
}

func (pl Placement)String() string {
	return fmt.Sprintf("Placement[%dx%d @(%d,%d), inset(%d,%d)]",
		pl.Size.X, pl.Size.Y, pl.Offset.X, pl.Offset.Y, pl.Inset.X, pl.Inset.Y)
}

// Compatible works out the Placement for a width x height tile at
// (offsetX, offsetY). It only depends on its arguments.
func Compatible(width, height, offsetX, offsetY, border, levels int) (Placement, error) {
	if levels < 1 || levels > MaxDepth {
		return Placement{}, fmt.Errorf("%w: %d levels out of range", ErrProcessing, levels)
	}
	if width <= 0 || height <= 0 || border < 0 {
		return Placement{}, fmt.Errorf("%w: bad tile geometry %dx%d, border %d", ErrProcessing, width, height, border)
	}

	scale := 1 << (levels-1)

	// Make sure the offset is a whole pixel even at the coarsest level,
	// then step back by the border (at that level).
	lowX := emath.FloorDiv(offsetX, scale) - border
	lowY := emath.FloorDiv(offsetY, scale) - border
	newX, newY := lowX*scale, lowY*scale
	dx, dy := offsetX-newX, offsetY-newY

	// Same for the far edges, then add the border there too.
	lowW := emath.CeilDiv(width+dx, scale) + border
	lowH := emath.CeilDiv(height+dy, scale) + border

	return Placement{
		Offset: image.Point{newX, newY},
		Size:   image.Point{lowW*scale, lowH*scale},
		Inset:  image.Point{dx, dy},
	}, nil
}

func (pl Placement)PadColor(cg emath.ColorGrid) emath.ColorGrid {
	return cg.Embed(pl.Size.X, pl.Size.Y, pl.Inset)
}

func (pl Placement)PadMask(m emath.Mask) emath.Mask {
	return m.Embed(pl.Size.X, pl.Size.Y, pl.Inset)
}

func (pl Placement)PadGrid(fg emath.FloatGrid) emath.FloatGrid {
	return fg.Embed(pl.Size.X, pl.Size.Y, pl.Inset)
}
