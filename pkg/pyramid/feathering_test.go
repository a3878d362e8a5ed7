package pyramid

import(
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abworrall/panoblend/pkg/emath"
)

func TestFeatherFillsHoles(t *testing.T) {
	cg := emath.NewColorGrid(8, 8)
	m := emath.NewMask(8, 8)
	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ {
			if x < 4 {
				cg.Set(x, y, emath.Vec3{5, 5, 5})
				m.Set(x, y, true)
			} else {
				cg.Set(x, y, emath.Vec3{100, 100, 100}) // garbage under the mask
			}
		}
	}

	out, err := Feather(cg, m)
	require.NoError(t, err)
	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ {
			require.Equal(t, emath.Vec3{5, 5, 5}, out.At(x, y), "(%d,%d)", x, y)
		}
	}

	// The input is not modified
	require.Equal(t, emath.Vec3{100, 100, 100}, cg.At(7, 7))
}

func TestFeatherKeepsMaskedPixels(t *testing.T) {
	cg := emath.NewColorGrid(13, 7)
	m := emath.NewMask(13, 7)
	for y:=0; y<7; y++ {
		for x:=0; x<13; x++ {
			cg.Set(x, y, emath.Vec3{float64(x), float64(y), float64(x*y)})
			m.Set(x, y, (x+y)%3 != 0)
		}
	}

	out, err := Feather(cg, m)
	require.NoError(t, err)
	for y:=0; y<7; y++ {
		for x:=0; x<13; x++ {
			v := out.At(x, y)
			if m.Get(x, y) {
				require.Equal(t, cg.At(x, y), v)
			}
			for _, c := range v {
				require.False(t, math.IsNaN(c))
			}
		}
	}
}

func TestFeatherEmptyMask(t *testing.T) {
	cg := emath.NewColorGrid(9, 4)
	cg.Map(func(float64) float64 { return 7 })

	out, err := Feather(cg, emath.NewMask(9, 4))
	require.NoError(t, err)
	for c := range out {
		for _, v := range out[c].Values() {
			require.Equal(t, 0.0, v)
		}
	}
}

func TestFeatherMismatch(t *testing.T) {
	_, err := Feather(emath.NewColorGrid(4, 4), emath.NewMask(4, 5))
	require.True(t, errors.Is(err, ErrProcessing))
}
