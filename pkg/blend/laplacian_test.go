package blend

import(
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptimalScale(t *testing.T) {
	lc := NewLaplacianCompositer(Config{}, 100, 100)

	require.Equal(t, 3, lc.OptimalScale(64, 64))
	require.Equal(t, 3, lc.OptimalScale(64, 1000))
	require.Equal(t, 2, lc.OptimalScale(20, 20))
	require.Equal(t, 0, lc.OptimalScale(5, 5))
	require.Equal(t, 0, lc.OptimalScale(3, 3))
	require.Equal(t, 0, lc.OptimalScale(0, 10))
	require.Equal(t, 2, lc.BorderSize())

	// Only depends on its arguments
	require.NoError(t, lc.Initialize())
	require.NoError(t, lc.Append(newTile("t", 64, 64, 0, 0, positiveRamp)))
	require.Equal(t, 3, lc.OptimalScale(64, 64))
	require.Equal(t, 2, lc.BorderSize())

	fixed := NewLaplacianCompositer(Config{ScalePolicy: ScaleFixed, FixedScale: 4}, 100, 100)
	require.Equal(t, 4, fixed.OptimalScale(20, 20))
	require.Equal(t, 4, fixed.OptimalScale(4000, 4000))
}

func TestLaplacianIdentity(t *testing.T) {
	for _, linear := range []bool{false, true} {
		c := newCompositer(t, Config{LinearDomain: linear}, 64, 64)
		tile := newTile("only", 64, 64, 0, 0, positiveRamp)
		require.NoError(t, c.Append(tile))
		require.NoError(t, c.Terminate())

		pano := c.Panorama()
		for y:=0; y<64; y++ {
			for x:=0; x<64; x++ {
				want, got := tile.Color.At(x, y), pano.Color.At(x, y)
				for ch := range want {
					require.InEpsilon(t, want[ch], got[ch], epsilon, "linear=%v (%d,%d)", linear, x, y)
				}
				require.Equal(t, 1.0, pano.Coverage(x, y))
			}
		}
	}
}

func TestLaplacianWeightedAverage(t *testing.T) {
	tests := []struct {
		name   string
		linear bool
		a, b   float64
		wb     float64
		want   float64
	}{
		{"linear", true, 2, 6, 3, 5},
		{"log is geometric", false, 2, 8, 1, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newCompositer(t, Config{LinearDomain: tc.linear}, 320, 64)

			a := newTile("a", 224, 64, 0, 0, constant(tc.a))
			b := newTile("b", 224, 64, 96, 0, constant(tc.b))
			b.Weight.Fill(tc.wb)
			require.NoError(t, c.Append(a))
			require.NoError(t, c.Append(b))
			require.NoError(t, c.Terminate())

			pano := c.Panorama()
			for y:=0; y<64; y++ {
				for x:=155; x<=165; x++ {
					require.InDelta(t, tc.want, pano.Color[0].Get(x, y), epsilon, "(%d,%d)", x, y)
				}
				require.InDelta(t, tc.a, pano.Color[1].Get(20, y), epsilon)
				require.InDelta(t, tc.b, pano.Color[2].Get(300, y), epsilon)
			}
			require.Equal(t, 320*64, pano.CoveredPixels())
		})
	}
}

func TestLaplacianDepthRegression(t *testing.T) {
	c := newCompositer(t, Config{LinearDomain: true}, 256, 64)
	lc := c.(*LaplacianCompositer)
	require.Equal(t, 1, lc.Bands())

	require.NoError(t, c.Append(newTile("big", 64, 64, 0, 0, constant(1))))
	require.Equal(t, 4, lc.Bands())

	// 20x20 only supports 3 levels
	err := c.Append(newTile("small", 20, 20, 200, 20, constant(9)))
	require.True(t, errors.Is(err, ErrDepthRegression))
	require.Equal(t, 4, lc.Bands())

	// A deeper tile does not grow a pyramid that is past its default depth
	require.NoError(t, c.Append(newTile("bigger", 128, 128, 128, 0, constant(2))))
	require.Equal(t, 4, lc.Bands())

	require.NoError(t, c.Terminate())
	pano := c.Panorama()
	require.InDelta(t, 1.0, pano.Color[0].Get(10, 10), epsilon)
	require.InDelta(t, 2.0, pano.Color[0].Get(150, 10), epsilon)
	require.Equal(t, 0.0, pano.Coverage(100, 30))
}

func TestLaplacianMaskedOut(t *testing.T) {
	c := newCompositer(t, Config{}, 64, 64)

	tile := newTile("holey", 64, 64, 0, 0, positiveRamp)
	for y:=0; y<64; y++ {
		for x:=32; x<64; x++ {
			tile.Mask.Set(x, y, false)
		}
	}
	require.NoError(t, c.Append(tile))
	require.NoError(t, c.Terminate())

	pano := c.Panorama()
	require.InEpsilon(t, tile.Color[0].Get(10, 10), pano.Color[0].Get(10, 10), epsilon)
	require.Equal(t, 0.0, pano.Coverage(40, 10))
	require.Equal(t, 0.0, pano.Color[0].Get(40, 10))
	require.Equal(t, 32*64, pano.CoveredPixels())
}

func TestLaplacianBadTileKeepsGoing(t *testing.T) {
	c := newCompositer(t, Config{LinearDomain: true}, 64, 64)

	bad := newTile("bad", 64, 64, 0, 0, constant(1))
	bad.Weight.Set(3, 3, -1)
	require.True(t, errors.Is(c.Append(bad), ErrProcessing))

	require.NoError(t, c.Append(newTile("good", 64, 64, 0, 0, constant(7))))
	require.NoError(t, c.Terminate())
	require.InDelta(t, 7.0, c.Panorama().Color[0].Get(3, 3), epsilon)

	// Terminate consumes the pyramid
	require.True(t, errors.Is(c.Terminate(), ErrProcessing))
}

func TestLaplacianEmpty(t *testing.T) {
	c := newCompositer(t, Config{}, 30, 20)
	require.NoError(t, c.Terminate())
	require.Equal(t, 0, c.Panorama().CoveredPixels())
	require.Equal(t, 0.0, c.Panorama().Color[1].Get(4, 4))
}

func TestLaplacianWrapGrowthKeepsSeamTile(t *testing.T) {
	c := newCompositer(t, Config{WrapHorizontal: true, LinearDomain: true}, 128, 64)
	lc := c.(*LaplacianCompositer)

	// Too small to deepen the pyramid, and straddles the seam
	small := newTile("small", 8, 8, 124, 20, positiveRamp)
	require.NoError(t, c.Append(small))
	require.Equal(t, 1, lc.Bands())

	big := newTile("big", 64, 64, 32, 0, positiveRamp)
	require.NoError(t, c.Append(big))
	require.Equal(t, 4, lc.Bands())

	require.NoError(t, c.Terminate())
	pano := c.Panorama()

	for _, tile := range []Tile{small, big} {
		for y:=0; y<tile.Color.Dy(); y++ {
			for x:=0; x<tile.Color.Dx(); x++ {
				px := (x + tile.Offset.X) % 128
				py := y + tile.Offset.Y
				want, got := tile.Color.At(x, y), pano.Color.At(px, py)
				for ch := range want {
					require.InDelta(t, want[ch], got[ch], epsilon, "%s (%d,%d)", tile.Name, px, py)
				}
			}
		}
	}
}
