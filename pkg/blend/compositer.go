package blend

import(
	"fmt"
	"image"

	"github.com/abworrall/panoblend/pkg/emath"
	"github.com/abworrall/panoblend/pkg/pyramid"
)

// A Compositer merges tiles into a panorama canvas. The lifecycle is
// Initialize, then Append for each tile, then Terminate; after that
// Panorama holds the result. A Compositer is not safe for concurrent
// use: Append calls must be serialized.
type Compositer interface {
	Initialize() error
	Append(t Tile) error
	Terminate() error

	// OptimalScale is the number of times a width x height tile can be
	// halved; the pyramid gets OptimalScale+1 levels. BorderSize is the
	// padding (at the coarsest level) tiles get on every side. Both only
	// depend on their arguments and the Config.
	OptimalScale(width, height int) int
	BorderSize() int

	Panorama() *Canvas
}

// New returns the compositer named by cfg.Strategy.
func New(cfg Config, width, height int) (Compositer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case "", StrategyLaplacian: return NewLaplacianCompositer(cfg, width, height), nil
	case StrategyAlpha:         return NewAlphaCompositer(cfg, width, height), nil
	case StrategyReplace:       return NewReplaceCompositer(cfg, width, height), nil
	}
	return nil, fmt.Errorf("no compositing strategy named '%s'", cfg.Strategy)
}

// A Tile is one already-warped piece of the panorama: linear radiance
// RGB, which pixels belong to it, how much each pixel should count
// (in [0,1]), and where its top left corner lands on the panorama.
type Tile struct {
	Name   string
	Color  emath.ColorGrid
	Mask   emath.Mask
	Weight emath.FloatGrid
	Offset image.Point
}

func (t Tile)String() string {
	return fmt.Sprintf("Tile[%s %dx%d @(%d,%d)]", t.Name, t.Color.Dx(), t.Color.Dy(), t.Offset.X, t.Offset.Y)
}

// Validate checks that the color, mask and weight grids agree.
func (t Tile)Validate() error {
	w, h := t.Color.Dx(), t.Color.Dy()
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: %s is empty", ErrProcessing, t)
	}
	if !t.Color.Consistent() || t.Mask.Dx() != w || t.Mask.Dy() != h || t.Weight.Dx() != w || t.Weight.Dy() != h {
		return fmt.Errorf("%w: %s: mask %dx%d, weight %dx%d", ErrProcessing, t,
			t.Mask.Dx(), t.Mask.Dy(), t.Weight.Dx(), t.Weight.Dy())
	}
	return nil
}

// canvasOwner is the state every strategy has: the output canvas, and a
// sticky fatal error.
type canvasOwner struct {
	Config
	width  int
	height int
	canvas *Canvas
	broken error
}

func (co *canvasOwner)Panorama() *Canvas { return co.canvas }

func (co *canvasOwner)allocateCanvas() error {
	if co.width <= 0 || co.height <= 0 || float64(co.width)*float64(co.height) > pyramid.MaxPixels {
		co.broken = fmt.Errorf("%w: canvas %dx%d", ErrAllocation, co.width, co.height)
		return co.broken
	}
	co.canvas = NewCanvas(co.width, co.height)
	co.broken = nil
	return nil
}

func (co *canvasOwner)live() error {
	if co.broken != nil {
		return co.broken
	}
	if co.canvas == nil {
		return fmt.Errorf("%w: compositer not initialized", ErrProcessing)
	}
	return nil
}

// stamp calls fn for every masked pixel of the tile that lands on the
// canvas, with tile coords (tx,ty) and canvas coords (px,py).
func (co *canvasOwner)stamp(t Tile, fn func(tx, ty, px, py int)) {
	for ty:=0; ty<t.Color.Dy(); ty++ {
		py := ty + t.Offset.Y
		if py < 0 || py >= co.height {
			continue
		}
		for tx:=0; tx<t.Color.Dx(); tx++ {
			if !t.Mask.Get(tx, ty) {
				continue
			}
			px := tx + t.Offset.X
			if co.WrapHorizontal {
				px = emath.WrapIndex(px, co.width)
			} else if px < 0 || px >= co.width {
				continue
			}
			fn(tx, ty, px, py)
		}
	}
}
