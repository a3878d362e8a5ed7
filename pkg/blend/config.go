package blend

import(
	"fmt"

	"github.com/abworrall/panoblend/pkg/pyramid"
)

const(
	StrategyLaplacian = "laplacian"
	StrategyAlpha     = "alpha"
	StrategyReplace   = "replace"

	ScaleFromTile = "tile"
	ScaleFixed    = "fixed"
)

var(
	Strategies = []string{StrategyLaplacian, StrategyAlpha, StrategyReplace}
)

func ListStrategies() string {
	return fmt.Sprintf("%v", Strategies)
}

// Config picks a compositing strategy and tunes it.
//
// The pyramid depth is normally derived from each tile's size (see
// OptimalScale). Setting ScalePolicy to "fixed" uses FixedScale for every
// tile instead, which is what some pipelines hard-code; the two give
// different seams on small tiles, so the choice is left explicit.
type Config struct {
	Strategy       string
	ScalePolicy    string
	FixedScale     int

	WrapHorizontal bool // panorama is a full 360; columns wrap around
	LinearDomain   bool // blend linear radiance instead of log radiance
	DumpLevels     bool // write the pyramid weights out as PNGs before collapsing

	Verbosity      int
}

func (c Config)Validate() error {
	switch c.Strategy {
	case "", StrategyLaplacian, StrategyAlpha, StrategyReplace:
	default:
		return fmt.Errorf("no compositing strategy named '%s', wanted %s", c.Strategy, ListStrategies())
	}

	switch c.ScalePolicy {
	case "", ScaleFromTile:
	case ScaleFixed:
		if c.FixedScale < 0 || c.FixedScale >= pyramid.MaxDepth {
			return fmt.Errorf("fixed scale %d out of range [0,%d)", c.FixedScale, pyramid.MaxDepth)
		}
	default:
		return fmt.Errorf("no scale policy named '%s'", c.ScalePolicy)
	}

	return nil
}
