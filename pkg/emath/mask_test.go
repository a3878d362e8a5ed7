package emath

import(
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	m := NewMask(4, 3)
	require.Equal(t, 0, m.Count())

	m.Set(1, 2, true)
	m.Set(3, 0, true)
	require.True(t, m.Get(1, 2))
	require.Equal(t, 2, m.Count())

	full := NewFullMask(4, 3)
	require.Equal(t, 12, full.Count())

	c := m.Copy()
	c.Set(0, 0, true)
	require.False(t, m.Get(0, 0))

	e := m.Embed(10, 10, image.Point{5, 5})
	require.Equal(t, 2, e.Count())
	require.True(t, e.Get(6, 7))
	require.True(t, e.Get(8, 5))

	fg := m.ToFloatGrid()
	require.Equal(t, 1.0, fg.Get(1, 2))
	require.Equal(t, 0.0, fg.Get(0, 0))
}

func TestColorGrid(t *testing.T) {
	cg := NewColorGrid(6, 4)
	require.True(t, cg.Consistent())

	cg.Set(2, 3, Vec3{1, 2, 3})
	require.Equal(t, Vec3{1, 2, 3}, cg.At(2, 3))

	cg.Map(func(v float64) float64 { return v * 2 })
	require.Equal(t, Vec3{2, 4, 6}, cg.At(2, 3))

	bad := ColorGrid{NewFloatGrid(6, 4), NewFloatGrid(6, 4), NewFloatGrid(5, 4)}
	require.False(t, bad.Consistent())

	v := Vec3{-1, 0.5, -0.1}
	v.FloorAt(0)
	require.Equal(t, Vec3{0, 0.5, 0}, v)
}
