package blend

import(
	"fmt"
	"log"
	"math"
)

// AlphaCompositer is the single-band baseline: a per-pixel weighted
// average of linear radiance. No padding, no pyramid; seams show
// wherever exposures disagree.
type AlphaCompositer struct {
	canvasOwner
}

func NewAlphaCompositer(cfg Config, width, height int) *AlphaCompositer {
	return &AlphaCompositer{canvasOwner{Config: cfg, width: width, height: height}}
}

func (ac *AlphaCompositer)Initialize() error             { return ac.allocateCanvas() }
func (ac *AlphaCompositer)OptimalScale(width, height int) int { return 0 }
func (ac *AlphaCompositer)BorderSize() int               { return 0 }

func (ac *AlphaCompositer)Append(t Tile) error {
	if err := ac.live(); err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := checkWeights(t); err != nil {
		return err
	}
	if err := checkColors(t); err != nil {
		return err
	}

	c := ac.canvas
	ac.stamp(t, func(tx, ty, px, py int) {
		w := t.Weight.Get(tx, ty)
		for ch := range c.Color {
			c.Color[ch].Add(px, py, w * t.Color[ch].Get(tx, ty))
		}
		c.Alpha.Add(px, py, w)
	})

	if ac.Verbosity > 0 {
		log.Printf("Appended %s", t)
	}
	return nil
}

func (ac *AlphaCompositer)Terminate() error {
	if err := ac.live(); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}

	c := ac.canvas
	for y:=0; y<c.Dy(); y++ {
		for x:=0; x<c.Dx(); x++ {
			w := c.Alpha.Get(x, y)
			if w <= 0 {
				for ch := range c.Color {
					c.Color[ch].Set(x, y, 0)
				}
				c.Alpha.Set(x, y, 0)
				continue
			}
			for ch := range c.Color {
				c.Color[ch].Set(x, y, c.Color[ch].Get(x, y) / w)
			}
			c.Alpha.Set(x, y, 1)
		}
	}
	return nil
}

// ReplaceCompositer pastes each tile over whatever is there: the last
// tile to cover a pixel wins. Weights are ignored.
type ReplaceCompositer struct {
	canvasOwner
}

func NewReplaceCompositer(cfg Config, width, height int) *ReplaceCompositer {
	return &ReplaceCompositer{canvasOwner{Config: cfg, width: width, height: height}}
}

func (rc *ReplaceCompositer)Initialize() error             { return rc.allocateCanvas() }
func (rc *ReplaceCompositer)OptimalScale(width, height int) int { return 0 }
func (rc *ReplaceCompositer)BorderSize() int               { return 0 }

func (rc *ReplaceCompositer)Append(t Tile) error {
	if err := rc.live(); err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := checkColors(t); err != nil {
		return err
	}

	c := rc.canvas
	rc.stamp(t, func(tx, ty, px, py int) {
		c.Color.Set(px, py, t.Color.At(tx, ty))
		c.Alpha.Set(px, py, 1)
	})
	return nil
}

func (rc *ReplaceCompositer)Terminate() error {
	if err := rc.live(); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}
	return nil
}

func checkWeights(t Tile) error {
	for _, w := range t.Weight.Values() {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %s has bad weight %f", ErrProcessing, t, w)
		}
	}
	return nil
}

func checkColors(t Tile) error {
	for ch := range t.Color {
		for _, v := range t.Color[ch].Values() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s has non-finite color", ErrProcessing, t)
			}
		}
	}
	return nil
}
