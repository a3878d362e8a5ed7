package pyramid

import(
	"fmt"
	"math"

	"github.com/abworrall/panoblend/pkg/emath"
)

// Margin is how many extra samples each level keeps beyond the
// panorama on every side (except horizontally when wrapping). Tiles
// spill a little past the panorama edge at the coarser levels, and the
// collapse needs those samples to reconstruct the edge pixels exactly.
const Margin = 2

// MaxPixels is the largest panorama we will try to allocate a pyramid for.
const MaxPixels = 1 << 31

// A Pyramid is a panorama-sized Laplacian pyramid that tiles are
// accumulated into, band by band. Level l covers the whole panorama at
// 1/2^l resolution. Each level holds a running sum of weight*band and
// a running sum of weight, so once all the tiles are in, every level
// can be turned into a weighted average.
//
// A Pyramid is not safe for concurrent use; all the mutating calls
// (Initialize, Augment, Apply, Rebuild) must be serialized by the
// caller. Separate Pyramids share nothing.
type Pyramid struct {
	width    int
	height   int
	wrap     bool // columns are periodic (360 degree panoramas)

	bands    int
	levels   []emath.ColorGrid // sum(weight * band), margins included
	weights  []emath.FloatGrid // sum(weight)

	dirty    bool // something has been accumulated
	consumed bool // Rebuild has run
}

// NewPyramid sets up a pyramid for a width x height panorama; nothing is
// allocated until Initialize.
func NewPyramid(width, height int, wrap bool) *Pyramid {
	return &Pyramid{width: width, height: height, wrap: wrap}
}

func (p *Pyramid)Bands() int        { return p.bands }
func (p *Pyramid)Width() int        { return p.width }
func (p *Pyramid)Height() int       { return p.height }
func (p *Pyramid)Accumulated() bool { return p.dirty }

func (p *Pyramid)String() string {
	return fmt.Sprintf("Pyramid[%dx%d, %d bands, wrap:%v]", p.width, p.height, p.bands, p.wrap)
}

func (p *Pyramid)marginX() int {
	if p.wrap {
		return 0
	}
	return Margin
}

// levelSize is the stored size of level l, margins included.
func (p *Pyramid)levelSize(l int) (int, int) {
	w := emath.CeilDiv(p.width,  1<<l) + 2*p.marginX()
	h := emath.CeilDiv(p.height, 1<<l) + 2*Margin
	return w, h
}

// Initialize allocates `depth` empty levels, throwing away anything
// that was there before.
func (p *Pyramid)Initialize(depth int) error {
	if p.width <= 0 || p.height <= 0 || float64(p.width)*float64(p.height) > MaxPixels {
		return fmt.Errorf("%w: panorama %dx%d", ErrAllocation, p.width, p.height)
	}
	if depth < 1 || depth > MaxDepth {
		return fmt.Errorf("%w: depth %d", ErrAllocation, depth)
	}

	p.levels, p.weights = nil, nil
	p.bands, p.dirty, p.consumed = 0, false, false
	p.appendLevels(depth)

	return nil
}

func (p *Pyramid)appendLevels(depth int) {
	for l:=len(p.levels); l<depth; l++ {
		w, h := p.levelSize(l)
		p.levels  = append(p.levels, emath.NewColorGrid(w, h))
		p.weights = append(p.weights, emath.NewFloatGrid(w, h))
	}
	p.bands = depth
}

// Augment deepens the pyramid to newDepth levels. If tiles have already
// been accumulated, the old coarsest level is pulled out (as a weighted
// average, with its accumulated weight) and pushed back in as a tile in
// its own right, so it gets decomposed into the new coarser levels. The
// reconstruction of everything accumulated so far is unchanged.
func (p *Pyramid)Augment(newDepth int) error {
	if p.consumed || p.bands == 0 {
		return fmt.Errorf("%w: augment on a pyramid that is not live", ErrProcessing)
	}
	if newDepth <= p.bands {
		return fmt.Errorf("%w: augment from %d to %d levels", ErrProcessing, p.bands, newDepth)
	}
	if newDepth > MaxDepth {
		return fmt.Errorf("%w: depth %d", ErrAllocation, newDepth)
	}

	if !p.dirty {
		p.appendLevels(newDepth)
		return nil
	}

	last := p.bands - 1
	value, weight := p.levels[last].Copy(), p.weights[last].Copy()
	normalize(&value, weight)
	mask := emath.NewMask(weight.Dx(), weight.Dy())
	for y:=0; y<weight.Dy(); y++ {
		for x:=0; x<weight.Dx(); x++ {
			mask.Set(x, y, weight.Get(x, y) > 0)
		}
	}

	// When wrapping, the padding columns are copies of the far side of the
	// level, and must sit further in than the clamped array edges reach.
	border := emath.KernelRadius
	if p.wrap {
		border = 2 * emath.KernelRadius
	}
	pl, err := Compatible(weight.Dx(), weight.Dy(), -p.marginX(), -Margin, border, newDepth-last)
	if err != nil {
		return err
	}
	colorPot, maskPot := pl.PadColor(value), pl.PadMask(mask)
	if p.wrap {
		wrapColumns(pl, &colorPot, &maskPot, &value, &mask)
	}
	feathered, err := Feather(colorPot, maskPot)
	if err != nil {
		return err
	}

	w, h := p.levelSize(last)
	p.levels[last]  = emath.NewColorGrid(w, h)
	p.weights[last] = emath.NewFloatGrid(w, h)
	p.appendLevels(newDepth)

	return p.Apply(feathered, maskPot.ToFloatGrid(), pl.PadGrid(weight), last, pl.Offset.X, pl.Offset.Y)
}

// wrapColumns fills the horizontal padding of a padded level with the
// columns it wraps onto, so the decomposition sees the true neighbours
// across the seam. The padding keeps zero weight; only its color and
// feathering mask are set.
func wrapColumns(pl Placement, color *emath.ColorGrid, mask *emath.Mask, src *emath.ColorGrid, srcMask *emath.Mask) {
	w := src.Dx()
	for y:=0; y<src.Dy(); y++ {
		py := y + pl.Inset.Y
		for px:=0; px<pl.Size.X; px++ {
			x := px - pl.Inset.X
			if x >= 0 && x < w {
				continue
			}
			sx := emath.WrapIndex(x, w)
			color.Set(px, py, src.At(sx, y))
			mask.Set(px, py, srcMask.Get(sx, y))
		}
	}
}

// Apply decomposes a tile into bands, from `level` down to the coarsest
// level, and accumulates each band into the pyramid. The offset is in
// the pixel coordinates of `level`. The tile must already be padded for
// this pyramid (see Compatible): its size and offset must be multiples
// of 2^(levels below `level`). Weights are multiplied by the mask.
//
// All the decomposition happens before anything is accumulated, so an
// error leaves the pyramid untouched.
func (p *Pyramid)Apply(color emath.ColorGrid, mask, weight emath.FloatGrid, level, offsetX, offsetY int) error {
	if p.consumed || p.bands == 0 {
		return fmt.Errorf("%w: apply on a pyramid that is not live", ErrProcessing)
	}
	if level < 0 || level >= p.bands {
		return fmt.Errorf("%w: level %d of %d", ErrProcessing, level, p.bands)
	}

	width, height := color.Dx(), color.Dy()
	if !color.Consistent() || !mask.SameSize(&color[0]) || !weight.SameSize(&color[0]) {
		return fmt.Errorf("%w: mismatched tile grids, color %dx%d, mask %dx%d, weight %dx%d", ErrProcessing,
			width, height, mask.Dx(), mask.Dy(), weight.Dx(), weight.Dy())
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: empty tile", ErrProcessing)
	}

	nLevels := p.bands - level
	scale := 1 << (nLevels-1)
	if width%scale != 0 || height%scale != 0 || offsetX%scale != 0 || offsetY%scale != 0 {
		return fmt.Errorf("%w: tile %dx%d @(%d,%d) not aligned to %d", ErrProcessing,
			width, height, offsetX, offsetY, scale)
	}

	current := color.Copy()
	wgt := weight.Copy()
	wgt.MulGrid(mask)
	if err := checkTile(current, wgt); err != nil {
		return err
	}

	bands := make([]emath.ColorGrid, nLevels)
	bandWeights := make([]emath.FloatGrid, nLevels)

	for k:=0; k<nLevels-1; k++ {
		next := current.Reduce()
		up := emath.NewColorGrid(current.Dx(), current.Dy())
		next.ExpandInto(&up, 0, 0, false)
		for c := range current {
			current[c].SubGrid(up[c])
		}

		bands[k], bandWeights[k] = current, wgt
		current, wgt = next, wgt.Reduce()
	}
	bands[nLevels-1], bandWeights[nLevels-1] = current, wgt

	for k := range bands {
		div := 1 << k
		p.merge(level+k, bands[k], bandWeights[k], offsetX/div, offsetY/div)
	}
	p.dirty = true

	return nil
}

func checkTile(color emath.ColorGrid, weight emath.FloatGrid) error {
	for _, w := range weight.Values() {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %f", ErrProcessing, w)
		}
	}
	for c := range color {
		for _, v := range color[c].Values() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite color value", ErrProcessing)
			}
		}
	}
	return nil
}

// merge accumulates one band of a tile into level l.
func (p *Pyramid)merge(l int, band emath.ColorGrid, weight emath.FloatGrid, offsetX, offsetY int) {
	dst, dstWeight := &p.levels[l], &p.weights[l]
	mx := p.marginX()
	levelW, levelH := dstWeight.Dx(), dstWeight.Dy()

	// Each tile row lands on its own level row, so rows can go in parallel
	emath.ParallelRows(band.Dy(), func(start, end int) {
		for y:=start; y<end; y++ {
			dy := y + offsetY + Margin
			if dy < 0 || dy >= levelH {
				continue
			}
			for x:=0; x<band.Dx(); x++ {
				w := weight.Get(x, y)
				if w == 0 {
					continue
				}
				dx := x + offsetX + mx
				if p.wrap {
					dx = emath.WrapIndex(dx, levelW)
				} else if dx < 0 || dx >= levelW {
					continue
				}
				for c := range band {
					dst[c].Add(dx, dy, w * band[c].Get(x, y))
				}
				dstWeight.Add(dx, dy, w)
			}
		}
	})
}

// normalize turns a level's weighted sums into weighted averages. Where
// nothing was accumulated the value is zero.
func normalize(cg *emath.ColorGrid, weight emath.FloatGrid) {
	wv := weight.Values()
	for c := range cg {
		v := cg[c].Values()
		for i, w := range wv {
			if w > 0 {
				v[i] /= w
			} else {
				v[i] = 0
			}
		}
	}
}

// Rebuild collapses the pyramid into `out`, which must be the size of
// the panorama: starting from the coarsest weighted average, expand and
// add each finer band. Coverage is 1 where any tile contributed at full
// resolution and 0 elsewhere; uncovered pixels are all zero. The
// pyramid is consumed.
func (p *Pyramid)Rebuild(out *emath.RGBAGrid) error {
	if p.consumed || p.bands == 0 {
		return fmt.Errorf("%w: rebuild on a pyramid that is not live", ErrProcessing)
	}
	if out.Dx() != p.width || out.Dy() != p.height || !out.Color.Consistent() || !out.Color[0].SameSize(&out.Alpha) {
		return fmt.Errorf("%w: output %dx%d for panorama %dx%d", ErrProcessing, out.Dx(), out.Dy(), p.width, p.height)
	}

	for l := range p.levels {
		normalize(&p.levels[l], p.weights[l])
	}

	mx := p.marginX()
	for l:=p.bands-2; l>=0; l-- {
		up := emath.NewColorGrid(p.levels[l].Dx(), p.levels[l].Dy())
		p.levels[l+1].ExpandInto(&up, mx, Margin, p.wrap)
		for c := range up {
			p.levels[l][c].AddGrid(up[c])
		}
	}

	base, baseWeight := &p.levels[0], &p.weights[0]
	for y:=0; y<p.height; y++ {
		for x:=0; x<p.width; x++ {
			if baseWeight.Get(x+mx, y+Margin) > 0 {
				out.Color.Set(x, y, base.At(x+mx, y+Margin))
				out.Alpha.Set(x, y, 1.0)
			} else {
				out.Color.Set(x, y, emath.Vec3{})
				out.Alpha.Set(x, y, 0.0)
			}
		}
	}

	p.levels, p.weights = nil, nil
	p.consumed = true

	return nil
}

// DumpWeights writes a grayscale PNG of each level's accumulated
// weights, for debugging.
func (p *Pyramid)DumpWeights(prefix string) error {
	for l := range p.weights {
		title := fmt.Sprintf("level %d weights, %s", l, p.weights[l].Stats())
		if err := p.weights[l].ToImg(title, fmt.Sprintf("%s-weights-%02d.png", prefix, l)); err != nil {
			return err
		}
	}
	return nil
}
