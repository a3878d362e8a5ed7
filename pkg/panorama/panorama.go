package panorama

import(
	"errors"
	"fmt"
	"log"

	"github.com/abworrall/panoblend/pkg/blend"
)

// A Panorama drives a blend.Compositer over the tiles named in its
// Config, and writes out the results.
type Panorama struct {
	Config

	compositer blend.Compositer

	baseDir string // tile paths are relative to the config file
	skipped []string
}

func NewPanorama() *Panorama {
	return &Panorama{Config: NewConfig()}
}

func (p *Panorama)String() string {
	s := fmt.Sprintf("Panorama[%dx%d, %s, %d tiles", p.Width, p.Height, p.Config.Compositer.Strategy, len(p.Tiles))
	if len(p.skipped) > 0 {
		s += fmt.Sprintf(", %d skipped", len(p.skipped))
	}
	return s + "]"
}

// Skipped lists the tiles that Build dropped.
func (p *Panorama)Skipped() []string { return p.skipped }

// Build loads and blends every tile. A tile that fails to load or
// append aborts the build, unless SkipBadTiles is set; running out of
// memory always aborts.
func (p *Panorama)Build() error {
	// Nothing is visible through Canvas until the whole build succeeds
	p.compositer = nil
	p.skipped = nil

	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("config: %v", err)
	}

	c, err := blend.New(p.Config.Compositer, p.Width, p.Height)
	if err != nil {
		return err
	}

	if err := c.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	for i, ts := range p.Tiles {
		err := p.appendTile(c, ts)
		if err == nil {
			continue
		}
		if errors.Is(err, blend.ErrAllocation) || !p.SkipBadTiles {
			return fmt.Errorf("tile %d (%s): %w", i, ts.Filename, err)
		}
		log.Printf("Skipping tile %d (%s): %v\n", i, ts.Filename, err)
		p.skipped = append(p.skipped, ts.Filename)
	}

	if err := c.Terminate(); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}
	p.compositer = c

	if p.Verbosity > 0 {
		pano := p.compositer.Panorama()
		log.Printf("%s: %d of %d pixels covered\n", p, pano.CoveredPixels(), pano.Size())
	}
	return nil
}

func (p *Panorama)appendTile(c blend.Compositer, ts TileSpec) error {
	t, err := p.LoadTile(ts)
	if err != nil {
		return err
	}
	return c.Append(t)
}

// Canvas is the blended result; nil until Build has succeeded.
func (p *Panorama)Canvas() *blend.Canvas {
	if p.compositer == nil {
		return nil
	}
	return p.compositer.Panorama()
}

// WriteOutputs writes the HDR file, and the tonemapped preview if one
// was asked for.
func (p *Panorama)WriteOutputs() error {
	pano := p.Canvas()
	if pano == nil {
		return fmt.Errorf("nothing to write, panorama not built")
	}

	if p.OutputFilename != "" {
		if err := WriteToHDR(pano, p.OutputFilename); err != nil {
			return err
		}
		log.Printf("Wrote %s\n", p.OutputFilename)
	}

	if p.PreviewFilename != "" {
		ldr, err := Tonemap(pano, p.Tonemapper, p.PreviewWidth)
		if err != nil {
			return err
		}
		if err := WritePNG(ldr, p.PreviewFilename); err != nil {
			return err
		}
		log.Printf("Wrote %s\n", p.PreviewFilename)
	}

	return nil
}
