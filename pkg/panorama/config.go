package panorama

import(
	"fmt"
	"image"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/panoblend/pkg/blend"
)

/* Example config file ...

width: 4096
height: 2048
compositer:
  strategy: laplacian
  wraphorizontal: true
tonemapper: reinhard05
outputfilename: pano.hdr
previewfilename: pano.png
previewwidth: 1024
tiles:
  - filename: warped-000.tif
    offset: [0, 310]
  - filename: warped-001.tif
    mask: warped-001-mask.png
    weights: warped-001-seams.png
    offset: [812, 296]

*/

// A TileSpec says where to find one warped tile, and where it goes.
type TileSpec struct {
	Filename string
	Mask     string  // optional: grayscale image, nonzero means included. Default is the tile's alpha.
	Weights  string  // optional: grayscale image mapped to [0,1]. Default is 1.0.
	Offset   [2]int
}

func (ts TileSpec)OffsetPoint() image.Point { return image.Point{ts.Offset[0], ts.Offset[1]} }

type Config struct {
	Verbosity            int

	Width                int
	Height               int
	Compositer           blend.Config

	Tonemapper           string
	OutputFilename       string // RGBE .hdr
	PreviewFilename      string // tonemapped .png
	PreviewWidth         int    // 0 means full size

	SkipBadTiles         bool   // log and drop tiles that fail, rather than abort

	// LDR tiles are scaled so that 1.0 means this many lux. If zero, the
	// first LDR tile's exposure is used.
	ReferenceIlluminance float64

	Tiles                []TileSpec
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func NewConfig() Config {
	return Config{
		Compositer:      blend.Config{Strategy: blend.StrategyLaplacian, ScalePolicy: blend.ScaleFromTile},
		Tonemapper:      "linear",
		OutputFilename:  "panorama.hdr",
		Tiles:           []TileSpec{},
	}
}

// Validate does sanity checks, and pushes the verbosity down into the
// compositer config.
func (c *Config)Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("panorama size %dx%d", c.Width, c.Height)
	}
	if c.Compositer.Verbosity < c.Verbosity {
		c.Compositer.Verbosity = c.Verbosity
	}
	if err := c.Compositer.Validate(); err != nil {
		return err
	}
	for i, ts := range c.Tiles {
		if ts.Filename == "" {
			return fmt.Errorf("tile %d has no filename", i)
		}
	}
	if c.Tonemapper != "" && !knownTonemapper(c.Tonemapper) {
		return fmt.Errorf("no Tonemapper named '%s', wanted %s", c.Tonemapper, ListTonemappers())
	}
	return nil
}
