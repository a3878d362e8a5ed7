package emath

import(
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a dense row-major grid of float64 samples. All the
// pyramid maths (bands, weights, masks-as-alpha) happens on these.
type FloatGrid struct {
	stride int
	rows   int
	values []float64
}

// The 5-tap binomial kernel, [1 4 6 4 1]/16. Its support (2r+1, r=2)
// is what the pyramid padding is sized for.
var binomial5 = [5]float64{1.0/16.0, 4.0/16.0, 6.0/16.0, 4.0/16.0, 1.0/16.0}

// KernelRadius is the radius of the smoothing kernel used by Reduce and
// ExpandInto.
const KernelRadius = 2

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		rows:   h,
		values: make([]float64, w*h),
	}
}

func (g1 *FloatGrid)NewFromThis() FloatGrid     { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64)    { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Add(x, y int, v float64)    { fg.values[fg.stride*y + x] += v }
func (fg *FloatGrid)Get(x, y int) float64       { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                    { return fg.stride }
func (fg *FloatGrid)Dy() int                    { return fg.rows }
func (fg *FloatGrid)Row(y int) []float64        { return fg.values[fg.stride*y : fg.stride*(y+1)] }
func (fg *FloatGrid)Values() []float64          { return fg.values }
func (fg *FloatGrid)SameSize(g2 *FloatGrid) bool { return fg.Dx() == g2.Dx() && fg.Dy() == g2.Dy() }

func (g1 *FloatGrid)Copy() FloatGrid {
	g2 := g1.NewFromThis()
	copy(g2.values, g1.values)
	return g2
}

func (fg *FloatGrid)Fill(v float64) {
	for i := range fg.values {
		fg.values[i] = v
	}
}

// Map replaces every value v with f(v).
func (fg *FloatGrid)Map(f func(float64) float64) {
	for i, v := range fg.values {
		fg.values[i] = f(v)
	}
}

// AddGrid adds g2 into fg, element by element. They must be the same size.
func (fg *FloatGrid)AddGrid(g2 FloatGrid) { floats.Add(fg.values, g2.values) }

// SubGrid subtracts g2 from fg, element by element.
func (fg *FloatGrid)SubGrid(g2 FloatGrid) { floats.Sub(fg.values, g2.values) }

// MulGrid multiplies fg by g2, element by element.
func (fg *FloatGrid)MulGrid(g2 FloatGrid) { floats.Mul(fg.values, g2.values) }

func (fg *FloatGrid)Scale(f float64)      { floats.Scale(f, fg.values) }

// Embed returns a new w x h grid, zero everywhere except for a copy of
// fg with its top left corner at `at`. The copy must fit.
func (g1 *FloatGrid)Embed(w, h int, at image.Point) FloatGrid {
	g2 := NewFloatGrid(w, h)
	for y:=0; y<g1.Dy(); y++ {
		copy(g2.Row(y + at.Y)[at.X:], g1.Row(y))
	}
	return g2
}

// Reduce blurs the grid with the binomial kernel, then keeps every
// other sample in each direction. Sample (x,y) of the result sits over
// sample (2x,2y) of the input; the result is ceil(w/2) x ceil(h/2).
// Edges are clamped.
func (g1 *FloatGrid)Reduce() FloatGrid {
	width, height := g1.Dx(), g1.Dy()
	w2, h2 := (width+1)/2, (height+1)/2

	//--- X blur + decimate, build up in T
	T := NewFloatGrid(w2, height)
	ParallelRows(height, func(start, end int) {
		for y:=start; y<end; y++ {
			src, dst := g1.Row(y), T.Row(y)
			for x:=0; x<w2; x++ {
				t := 0.0
				for k:=-KernelRadius; k<=KernelRadius; k++ {
					t += binomial5[k+KernelRadius] * src[ClampIndex(2*x+k, width)]
				}
				dst[x] = t
			}
		}
	})

	//--- Y blur + decimate, read from T and generate output
	g2 := NewFloatGrid(w2, h2)
	ParallelRows(h2, func(start, end int) {
		for y:=start; y<end; y++ {
			dst := g2.Row(y)
			for k:=-KernelRadius; k<=KernelRadius; k++ {
				floats.AddScaled(dst, binomial5[k+KernelRadius], T.Row(ClampIndex(2*y+k, height)))
			}
		}
	})

	return g2
}

// ExpandInto upsamples g1 by two into dst, interpolating with the
// binomial kernel (scaled by 4, so constants survive). It is the
// counterpart of Reduce: dst sample x reads the g1 samples q with
// |x + shiftX - 2q| <= 2 (likewise for y). The shifts let grids that
// carry margins line up; with no margins they are zero. wrapX makes the
// columns of g1 periodic, otherwise edges are clamped.
func (g1 *FloatGrid)ExpandInto(dst *FloatGrid, shiftX, shiftY int, wrapX bool) {
	srcW, srcH := g1.Dx(), g1.Dy()
	width, height := dst.Dx(), dst.Dy()
	if srcW == 0 || srcH == 0 {
		dst.Fill(0)
		return
	}

	colIndex := ClampIndex
	if wrapX {
		colIndex = WrapIndex
	}

	//--- X pass, build up in T
	T := NewFloatGrid(width, srcH)
	ParallelRows(srcH, func(start, end int) {
		for y:=start; y<end; y++ {
			src, out := g1.Row(y), T.Row(y)
			for x:=0; x<width; x++ {
				c := x + shiftX
				t := 0.0
				for q:=CeilDiv(c-KernelRadius, 2); q<=FloorDiv(c+KernelRadius, 2); q++ {
					t += binomial5[c-2*q+KernelRadius] * src[colIndex(q, srcW)]
				}
				out[x] = 2.0 * t
			}
		}
	})

	//--- Y pass, read from T and generate output
	ParallelRows(height, func(start, end int) {
		for y:=start; y<end; y++ {
			out := dst.Row(y)
			for i := range out {
				out[i] = 0
			}
			c := y + shiftY
			for r:=CeilDiv(c-KernelRadius, 2); r<=FloorDiv(c+KernelRadius, 2); r++ {
				floats.AddScaled(out, 2.0*binomial5[c-2*r+KernelRadius], T.Row(ClampIndex(r, srcH)))
			}
		}
	})
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	if len(fg.values) == 0 {
		return 0, 0
	}
	return floats.Min(fg.values), floats.Max(fg.values)
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()
	if max == min {
		max = min + 1
	}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			gray := GammaExpand_F64((fg.Get(x,y) - min) / (max - min))
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
