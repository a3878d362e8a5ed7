package panorama

import(
	"fmt"
	"image"
	"log"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"
	"golang.org/x/image/draw"
)

var(
	Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

func knownTonemapper(name string) bool {
	for _, s := range Tonemappers {
		if s == name {
			return true
		}
	}
	return false
}

// Tonemap renders the HDR image down to 8 bits, scaled to width pixels
// across (0 means leave it alone).
func Tonemap(img hdr.Image, name string, width int) (image.Image, error) {
	op, err := setupTonemapper(img, name)
	if err != nil {
		return nil, err
	}

	log.Printf("Tonemapping: %s", name)
	ldr := op.Perform()

	b := ldr.Bounds()
	if width <= 0 || width == b.Dx() {
		return ldr, nil
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), ldr, b, draw.Src, nil)
	return dst, nil
}

// Tweak the tmo parameters for panoramas. Skies are huge and bright, and
// the defaults tend to blow them out.
func setupTonemapper(img hdr.Image, name string) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op :=  tmo.NewDefaultDrago03(img)
		op.Bias = 1.0            // Otherwise the sky overexposes
		return op, nil

	case "durand":
		return tmo.NewDefaultDurand(img), nil

	case "icam06":
		op := tmo.NewDefaultICam06(img)
		op.Contrast    = 0.65
		op.MaxClipping = 0.99999
		return op, nil

	case "linear":
		return tmo.NewLinear(img), nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(img)
		op.Chromatic  = 0.005
		op.Light      = 0.005
		return op, nil
	}

	return nil, fmt.Errorf("ToneMapper %q not recognized, wanted %s", name, ListTonemappers())
}
