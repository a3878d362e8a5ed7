package blend

import(
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/abworrall/panoblend/pkg/emath"
	"github.com/abworrall/panoblend/pkg/pyramid"
)

const(
	gaussianFilterRadius = emath.KernelRadius
	defaultBands         = 1

	// Radiance is clamped to this before taking logs, so black pixels
	// don't become -Inf.
	logFloor = 1e-8
)

// LaplacianCompositer does multi-band blending: each tile is split into
// frequency bands, every band is averaged across tiles separately (so
// low frequencies blend over wide areas and fine detail over narrow
// ones), and the bands are collapsed back into one image at the end.
// Blending happens on log radiance unless Config.LinearDomain is set,
// so differently exposed tiles meet multiplicatively.
type LaplacianCompositer struct {
	canvasOwner
	pyramid *pyramid.Pyramid
}

func NewLaplacianCompositer(cfg Config, width, height int) *LaplacianCompositer {
	return &LaplacianCompositer{
		canvasOwner: canvasOwner{Config: cfg, width: width, height: height},
	}
}

func (lc *LaplacianCompositer)Initialize() error {
	if err := lc.allocateCanvas(); err != nil {
		return err
	}

	lc.pyramid = pyramid.NewPyramid(lc.width, lc.height, lc.WrapHorizontal)
	if err := lc.pyramid.Initialize(defaultBands); err != nil {
		lc.broken = err
		return err
	}

	return nil
}

// Bands is the current depth of the pyramid.
func (lc *LaplacianCompositer)Bands() int {
	if lc.pyramid == nil {
		return 0
	}
	return lc.pyramid.Bands()
}

// ComputedScale looks for the smallest scale such that the image is not
// smaller than the convolution window:
//   minsize / 2^x = 2r+1  =>  x = log2(minsize / (2r+1))
func ComputedScale(width, height, radius int) int {
	minsize := min(width, height)
	if minsize <= 0 {
		return 0
	}

	filterSize := 1 + 2*radius
	scale := int(math.Floor(math.Log2(float64(minsize) / float64(filterSize))))

	return max(scale, 0)
}

func (lc *LaplacianCompositer)OptimalScale(width, height int) int {
	if lc.ScalePolicy == ScaleFixed {
		return lc.FixedScale
	}
	return ComputedScale(width, height, gaussianFilterRadius)
}

func (lc *LaplacianCompositer)BorderSize() int { return gaussianFilterRadius }

func (lc *LaplacianCompositer)Append(t Tile) error {
	if err := lc.live(); err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	levels := lc.OptimalScale(t.Color.Dx(), t.Color.Dy()) + 1
	bands := lc.pyramid.Bands()

	if levels < bands {
		return fmt.Errorf("%w: %s supports %d levels, pyramid has %d", ErrDepthRegression, t, levels, bands)
	}

	// If this tile can go deeper than the pyramid and the pyramid is
	// still at its default depth, deepen it now
	if levels > bands && bands == defaultBands {
		if err := lc.pyramid.Augment(levels); err != nil {
			if errors.Is(err, ErrAllocation) {
				lc.broken = err
			}
			return fmt.Errorf("append %s: %w", t, err)
		}
		if lc.Verbosity > 0 {
			log.Printf("Pyramid deepened to %d levels for %s", levels, t)
		}
		bands = levels
	}

	// Make sure the tile is compatible with pyramid processing
	pl, err := pyramid.Compatible(t.Color.Dx(), t.Color.Dy(), t.Offset.X, t.Offset.Y, lc.BorderSize(), bands)
	if err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}
	maskPot := pl.PadMask(t.Mask)
	weightsPot := pl.PadGrid(t.Weight)

	// Fill the masked parts with fake but coherent color
	feathered, err := pyramid.Feather(pl.PadColor(t.Color), maskPot)
	if err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}

	if !lc.LinearDomain {
		feathered.Map(toLogRadiance)
	}

	if err := lc.pyramid.Apply(feathered, maskPot.ToFloatGrid(), weightsPot, 0, pl.Offset.X, pl.Offset.Y); err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}

	if lc.Verbosity > 0 {
		log.Printf("Appended %s as %s, %d bands", t, pl, bands)
	}

	return nil
}

func (lc *LaplacianCompositer)Terminate() error {
	if err := lc.live(); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}

	if lc.DumpLevels {
		if err := lc.pyramid.DumpWeights("pyramid"); err != nil {
			log.Printf("Dumping pyramid weights: %v\n", err)
		}
	}

	if err := lc.pyramid.Rebuild(&lc.canvas.RGBAGrid); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}

	if !lc.LinearDomain {
		c := lc.canvas
		for y:=0; y<c.Dy(); y++ {
			for x:=0; x<c.Dx(); x++ {
				if c.Alpha.Get(x, y) == 0 {
					continue
				}
				v := c.Color.At(x, y)
				c.Color.Set(x, y, emath.Vec3{math.Exp(v[0]), math.Exp(v[1]), math.Exp(v[2])})
			}
		}
	}

	return nil
}

func toLogRadiance(v float64) float64 {
	return math.Log(math.Max(logFloor, v))
}
