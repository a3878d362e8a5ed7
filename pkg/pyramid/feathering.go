package pyramid

import(
	"fmt"

	"github.com/abworrall/panoblend/pkg/emath"
)

// Feather returns a copy of `color` where every pixel outside `mask`
// has been replaced with a plausible color extrapolated from the pixels
// inside it. Without this, the hard edge between real pixels and
// whatever garbage is under the mask rings through every band of the
// decomposition.
//
// It works as a push-pull: build half-size levels by averaging the
// masked pixels of each 2x2 block, until a side gets shorter than 2;
// then walk back up, filling each hole from the level below.
func Feather(color emath.ColorGrid, mask emath.Mask) (emath.ColorGrid, error) {
	if !color.Consistent() || color.Dx() != mask.Dx() || color.Dy() != mask.Dy() {
		return emath.ColorGrid{}, fmt.Errorf("%w: feather: color %dx%d, mask %dx%d",
			ErrProcessing, color.Dx(), color.Dy(), mask.Dx(), mask.Dy())
	}

	levels := []emath.ColorGrid{color.Copy()}
	masks  := []emath.Mask{mask.Copy()}

	for {
		src, srcMask := &levels[len(levels)-1], &masks[len(masks)-1]
		width, height := src.Dx()/2, src.Dy()/2
		if width < 1 || height < 1 {
			break
		}

		half := emath.NewColorGrid(width, height)
		halfMask := emath.NewMask(width, height)

		for y:=0; y<height; y++ {
			for x:=0; x<width; x++ {
				sum := emath.Vec3{}
				count := 0
				for _, d := range [4][2]int{{0,0}, {1,0}, {0,1}, {1,1}} {
					sx, sy := 2*x+d[0], 2*y+d[1]
					if !srcMask.Get(sx, sy) {
						continue
					}
					v := src.At(sx, sy)
					sum[0] += v[0]
					sum[1] += v[1]
					sum[2] += v[2]
					count++
				}
				if count > 0 {
					n := float64(count)
					half.Set(x, y, emath.Vec3{sum[0]/n, sum[1]/n, sum[2]/n})
					halfMask.Set(x, y, true)
				}
			}
		}

		levels = append(levels, half)
		masks  = append(masks, halfMask)

		if width < 2 || height < 2 {
			break
		}
	}

	for l:=len(levels)-2; l>=0; l-- {
		src, srcMask := &levels[l], &masks[l]
		ref, refMask := &levels[l+1], &masks[l+1]

		for y:=0; y<src.Dy(); y++ {
			for x:=0; x<src.Dx(); x++ {
				if srcMask.Get(x, y) {
					continue
				}
				mx := min(x/2, ref.Dx()-1)
				my := min(y/2, ref.Dy()-1)
				src.Set(x, y, ref.At(mx, my))
				srcMask.Set(x, y, refMask.Get(mx, my))
			}
		}
	}

	return levels[0], nil
}
