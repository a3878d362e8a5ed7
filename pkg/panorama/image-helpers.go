package panorama

// A few helper routines for golang's image libraries

import(
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteToHDR outputs a HDR image. You can load this into photoshop or other HDR tools.
func WriteToHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteToHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		err := rgbe.Encode(writer, img)
		if err != nil {
			log.Printf("WriteToHDR, encoding RGBE file: %v\n", err)
		}
		return err
	}
}
