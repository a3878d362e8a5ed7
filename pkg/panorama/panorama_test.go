package panorama

import(
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abworrall/panoblend/pkg/blend"
	"github.com/abworrall/panoblend/pkg/emath"
)

// writeHDRTile writes a w x h RGBE file filled with f.
func writeHDRTile(t *testing.T, filename string, w, h int, f func(x, y int) emath.Vec3) {
	c := blend.NewCanvas(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			c.Color.Set(x, y, f(x, y))
		}
	}
	require.NoError(t, WriteToHDR(c, filename))
}

func writeGray(t *testing.T, filename string, w, h int, f func(x, y int) uint8) {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			img.SetGray(x, y, color.Gray{f(x, y)})
		}
	}
	require.NoError(t, WritePNG(img, filename))
}

func flat(v float64) func(x, y int) emath.Vec3 {
	return func(x, y int) emath.Vec3 { return emath.Vec3{v, v, v} }
}

func TestLoadHDRTile(t *testing.T) {
	dir := t.TempDir()
	writeHDRTile(t, filepath.Join(dir, "a.hdr"), 16, 8, func(x, y int) emath.Vec3 {
		return emath.Vec3{0.5 + float64(x), 2, 0.25}
	})
	writeGray(t, filepath.Join(dir, "a-mask.png"), 16, 8, func(x, y int) uint8 {
		if x < 4 { return 0 }
		return 255
	})
	writeGray(t, filepath.Join(dir, "a-weights.png"), 16, 8, func(x, y int) uint8 { return 255 })

	p := NewPanorama()
	p.baseDir = dir
	tile, err := p.LoadTile(TileSpec{Filename: "a.hdr", Mask: "a-mask.png", Weights: "a-weights.png", Offset: [2]int{3, 4}})
	require.NoError(t, err)

	require.NoError(t, tile.Validate())
	require.Equal(t, image.Point{3, 4}, tile.Offset)
	require.Equal(t, 16, tile.Color.Dx())
	require.InEpsilon(t, 7.5, tile.Color[0].Get(7, 3), 0.01) // RGBE is lossy
	require.InEpsilon(t, 2.0, tile.Color[1].Get(7, 3), 0.01)
	require.False(t, tile.Mask.Get(3, 0))
	require.True(t, tile.Mask.Get(4, 0))
	require.Equal(t, 12*8, tile.Mask.Count())
	require.Equal(t, 1.0, tile.Weight.Get(0, 0))

	// Defaults: full mask, unit weights
	tile, err = p.LoadTile(TileSpec{Filename: "a.hdr"})
	require.NoError(t, err)
	require.Equal(t, 16*8, tile.Mask.Count())
	require.Equal(t, 1.0, tile.Weight.Get(15, 7))

	// Mask of the wrong size
	writeGray(t, filepath.Join(dir, "small.png"), 4, 4, func(x, y int) uint8 { return 1 })
	_, err = p.LoadTile(TileSpec{Filename: "a.hdr", Mask: "small.png"})
	require.Error(t, err)

	_, err = p.LoadTile(TileSpec{Filename: "a.jpg"})
	require.Error(t, err)
}

func TestLdrToGridPartialAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 255, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 255, 128})
	img.SetNRGBA(2, 0, color.NRGBA{255, 0, 255, 0})

	cg, m := ldrToGrid(img, 4, 2)
	require.Equal(t, 2.0, cg[0].Get(0, 0))
	require.Equal(t, cg.At(0, 0), cg.At(1, 0)) // not scaled down by alpha
	require.True(t, m.Get(1, 0))
	require.False(t, m.Get(2, 0))
}

func TestGrayToGrid(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 13, 12))
	img.SetGray(11, 11, color.Gray{255})
	fg := grayToGrid(img)
	require.Equal(t, 3, fg.Dx())
	require.Equal(t, 1.0, fg.Get(1, 1))
	require.Equal(t, 0.0, fg.Get(0, 0))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeHDRTile(t, filepath.Join(dir, "left.hdr"), 64, 32, flat(1.0))
	writeHDRTile(t, filepath.Join(dir, "right.hdr"), 64, 32, flat(4.0))

	cfgYaml := `
width: 128
height: 32
compositer:
  strategy: laplacian
tonemapper: linear
previewwidth: 32
tiles:
  - filename: left.hdr
    offset: [0, 0]
  - filename: right.hdr
    offset: [64, 0]
`
	cfgFile := filepath.Join(dir, "pano.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfgYaml), 0644))

	p := NewPanorama()
	require.NoError(t, p.LoadFilesAndDirs(cfgFile))
	p.OutputFilename = filepath.Join(dir, "out.hdr")
	p.PreviewFilename = filepath.Join(dir, "out.png")

	require.Nil(t, p.Canvas())
	require.Error(t, p.WriteOutputs())

	require.NoError(t, p.Build())
	pano := p.Canvas()
	require.NotNil(t, pano)
	require.Equal(t, 128*32, pano.CoveredPixels())
	require.InEpsilon(t, 1.0, pano.Color[0].Get(4, 16), 0.01) // RGBE is lossy
	require.InEpsilon(t, 4.0, pano.Color[0].Get(124, 16), 0.01)

	// Across the seam it goes smoothly from one to the other
	mid := pano.Color[0].Get(64, 16)
	require.Greater(t, mid, 1.0)
	require.Less(t, mid, 4.0)

	require.NoError(t, p.WriteOutputs())
	hdrImg, err := loadHDR(p.OutputFilename)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 128, 32), hdrImg.Bounds())

	f, err := os.Open(p.PreviewFilename)
	require.NoError(t, err)
	defer f.Close()
	preview, _, err := image.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 32, preview.Bounds().Dx())
	require.Equal(t, 8, preview.Bounds().Dy())
}

func TestBuildBadTiles(t *testing.T) {
	dir := t.TempDir()
	writeHDRTile(t, filepath.Join(dir, "good.hdr"), 32, 32, flat(2.0))

	p := NewPanorama()
	p.baseDir = dir
	p.Width, p.Height = 64, 32
	p.Config.Compositer.Strategy = blend.StrategyAlpha
	p.Tiles = []TileSpec{
		{Filename: "good.hdr"},
		{Filename: "missing.hdr", Offset: [2]int{32, 0}},
	}

	err := p.Build()
	require.Error(t, err)
	require.Nil(t, p.Canvas()) // a half-built panorama is never exposed
	require.Error(t, p.WriteOutputs())

	p.SkipBadTiles = true
	require.NoError(t, p.Build())
	require.Equal(t, []string{"missing.hdr"}, p.Skipped())
	require.Equal(t, 32*32, p.Canvas().CoveredPixels())

	// A later failed build drops the earlier result
	p.SkipBadTiles = false
	require.Error(t, p.Build())
	require.Nil(t, p.Canvas())

	// Running out of memory is never skipped
	p.Width = 1 << 20
	p.Height = 1 << 20
	err = p.Build()
	require.True(t, errors.Is(err, blend.ErrAllocation))
}

func TestTonemapScaling(t *testing.T) {
	c := blend.NewCanvas(40, 20)
	for y:=0; y<20; y++ {
		for x:=0; x<40; x++ {
			c.Color.Set(x, y, emath.Vec3{float64(x) + 1, float64(y) + 1, 1})
		}
	}

	ldr, err := Tonemap(c, "linear", 0)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 20), ldr.Bounds())

	ldr, err = Tonemap(c, "linear", 10)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 5), ldr.Bounds())

	_, err = Tonemap(c, "fattal02", 0)
	require.Error(t, err)
}
