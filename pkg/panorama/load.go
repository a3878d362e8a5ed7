package panorama

import(
	"fmt"
	"image"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/abworrall/panoblend/pkg/blend"
	"github.com/abworrall/panoblend/pkg/ecolor"
	"github.com/abworrall/panoblend/pkg/emath"
)

// LoadFilesAndDirs loads every .yaml config it finds. Later files
// override earlier ones.
func (p *Panorama)LoadFilesAndDirs(args ...string) (error) {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := p.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		case strings.ToLower(filepath.Ext(arg)) == ".yaml":
			cfg, err := loadConfig(arg)
			if err != nil {
				return fmt.Errorf("Loading %s as config YAML failed: %v", arg, err)
			}
			p.Config = cfg
			p.baseDir = filepath.Dir(arg)
			log.Printf("Loaded configuration from %s\n", arg)
		}
	}

	return nil
}

func loadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return newConfigFromYaml(contents)
}

// resolve makes tile paths in the config relative to the config file.
func (p *Panorama)resolve(filename string) string {
	if filepath.IsAbs(filename) || p.baseDir == "" {
		return filename
	}
	return filepath.Join(p.baseDir, filename)
}

// LoadTile reads the image, mask and weights named by a TileSpec into a
// blend.Tile, in linear radiance.
func (p *Panorama)LoadTile(ts TileSpec) (blend.Tile, error) {
	t := blend.Tile{Name: filepath.Base(ts.Filename), Offset: ts.OffsetPoint()}
	filename := p.resolve(ts.Filename)

	var alpha *emath.Mask
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hdr":
		img, err := loadHDR(filename)
		if err != nil {
			return t, err
		}
		t.Color = hdrToGrid(img)

	case ".tif", ".tiff":
		img, ev, err := loadTIFF(filename)
		if err != nil {
			return t, err
		}
		illum := ev.IlluminanceAtMaxExposure
		if illum == 0 {
			illum = 1.0 // no EXIF; treat the readings as already on the reference scale
			if p.ReferenceIlluminance > 0 {
				illum = p.ReferenceIlluminance
			}
		}
		if p.ReferenceIlluminance == 0 {
			p.ReferenceIlluminance = illum
		}
		var m emath.Mask
		t.Color, m = ldrToGrid(img, illum, p.ReferenceIlluminance)
		alpha = &m
		if p.Verbosity > 0 {
			log.Printf("Loaded %s: %s\n", t.Name, ev)
		}

	default:
		return t, fmt.Errorf("tile %s: unrecognized image type", filename)
	}

	w, h := t.Color.Dx(), t.Color.Dy()

	switch {
	case ts.Mask != "":
		g, err := loadGray(p.resolve(ts.Mask), w, h)
		if err != nil {
			return t, err
		}
		t.Mask = emath.NewMask(w, h)
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				t.Mask.Set(x, y, g.Get(x, y) > 0)
			}
		}
	case alpha != nil:
		t.Mask = *alpha
	default:
		t.Mask = emath.NewFullMask(w, h)
	}

	if ts.Weights != "" {
		g, err := loadGray(p.resolve(ts.Weights), w, h)
		if err != nil {
			return t, err
		}
		t.Weight = g
	} else {
		t.Weight = emath.NewFloatGrid(w, h)
		t.Weight.Fill(1.0)
	}

	return t, nil
}

func loadHDR(filename string) (hdr.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r hdr '%s': %v", filename, err)
	}
	defer reader.Close()

	img, err := rgbe.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("rgbe decoding '%s': %v", filename, err)
	}
	hdrImg, ok := img.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("rgbe decoding '%s': not an HDR image", filename)
	}
	return hdrImg, nil
}

// loadTIFF returns the image, and the exposure from its EXIF data. A
// TIFF without usable EXIF comes back with a zero ExposureValue.
func loadTIFF(filename string) (image.Image, ExposureValue, error) {
	ev, err := loadExposure(filename)
	if err != nil {
		log.Printf("%s: no exposure info, not normalizing (%v)\n", filename, err)
		ev = ExposureValue{}
	}

	reader, err := os.Open(filename)
	if err != nil {
		return nil, ev, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	img, err := tiff.Decode(reader)
	if err != nil {
		return nil, ev, fmt.Errorf("tiff loading '%s': %v", filename, err)
	}
	return img, ev, nil
}

func loadExposure(filename string) (ExposureValue, error) {
	ev := ExposureValue{}

	reader, err := os.Open(filename)
	if err != nil {
		return ev, fmt.Errorf("open+r exif '%s': %v", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return ev, fmt.Errorf("exif parsing '%s': %v", filename, err)
	}

	if tag, err := ex.Get(exif.ISOSpeedRatings); err != nil {
		return ev, fmt.Errorf("exif ISO '%s': %v", filename, err)
	} else if val, err := tag.Int64(0); err != nil {
		return ev, fmt.Errorf("exif ISO '%s': %v", filename, err)
	} else {
		ev.ISO = val
	}

	if tag, err := ex.Get(exif.FNumber); err != nil {
		return ev, fmt.Errorf("exif FNumber '%s': %v", filename, err)
	} else if num, denom, err := tag.Rat2(0); err != nil {
		return ev, fmt.Errorf("exif FNumber '%s': %v", filename, err)
	} else if denom == 0 {
		return ev, fmt.Errorf("exif FNumber '%s': zero denominator", filename)
	} else {
		ev.ApertureX10 = num * 10 / denom
	}

	if tag, err := ex.Get(exif.ExposureTime); err != nil {
		return ev, fmt.Errorf("exif ExposureTime '%s': %v", filename, err)
	} else if num, denom, err := tag.Rat2(0); err != nil {
		return ev, fmt.Errorf("exif ExposureTime '%s': %v", filename, err)
	} else {
		ev.ShutterSpeed = rational{num, denom}
	}

	// Note: we ignore Exposure Compensation, as it is informational. The
	// Fstop/Speed/ISO triple fully defines how much light would expose a pixel.

	if err := ev.Validate(); err != nil {
		return ev, fmt.Errorf("image '%s' EV: %v", filename, err)
	}
	return ev, nil
}

// loadGray reads any decodable image as a grayscale grid in [0,1],
// which must be w x h.
func loadGray(filename string, w, h int) (emath.FloatGrid, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("decoding '%s': %v", filename, err)
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		return emath.FloatGrid{}, fmt.Errorf("'%s' is %dx%d, tile is %dx%d", filename,
			img.Bounds().Dx(), img.Bounds().Dy(), w, h)
	}

	return grayToGrid(img), nil
}

// grayToGrid converts an image to luminance in [0,1].
func grayToGrid(img image.Image) emath.FloatGrid {
	b := img.Bounds()
	gray := image.NewGray16(image.Rectangle{Max: b.Size()})
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	fg := emath.NewFloatGrid(b.Dx(), b.Dy())
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			fg.Set(x, y, float64(gray.Gray16At(x, y).Y) / float64(0xFFFF))
		}
	}
	return fg
}

// ldrToGrid maps a sensor-referred image into radiance, undoing any alpha
// premultiplication, and returns its alpha channel as a mask.
func ldrToGrid(img image.Image, illumAtMax, refIllum float64) (emath.ColorGrid, emath.Mask) {
	b := img.Bounds()
	cg := emath.NewColorGrid(b.Dx(), b.Dy())
	m := emath.NewMask(b.Dx(), b.Dy())

	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			col := img.At(x+b.Min.X, y+b.Min.Y)
			_, _, _, a := col.RGBA()
			cg.Set(x, y, ecolor.NewCameraNative(col, illumAtMax).Radiance(refIllum))
			m.Set(x, y, a > 0)
		}
	}
	return cg, m
}

func hdrToGrid(img hdr.Image) emath.ColorGrid {
	b := img.Bounds()
	cg := emath.NewColorGrid(b.Dx(), b.Dy())
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			cg.Set(x, y, ecolor.HDRRadiance(img.HDRAt(x+b.Min.X, y+b.Min.Y)))
		}
	}
	return cg
}
