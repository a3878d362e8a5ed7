package emath

import(
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Some functions that only operate on basic types, that are useful

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// FloorDiv and CeilDiv round towards -inf and +inf; Go's `/` rounds
// towards zero, which is wrong for the negative offsets tiles can have.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func CeilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

func ClampIndex(i, n int) int {
	if i < 0   { return 0 }
	if i >= n  { return n-1 }
	return i
}

func WrapIndex(i, n int) int {
	i %= n
	if i < 0 { i += n }
	return i
}

// ParallelRows cuts [0,n) into one contiguous band per CPU and calls fn
// on each band concurrently. fn must only write rows inside its band.
func ParallelRows(n int, fn func(start, end int)) {
	nWorkers := runtime.GOMAXPROCS(0)
	if n < 64 || nWorkers < 2 {
		fn(0, n)
		return
	}

	chunk := (n + nWorkers - 1) / nWorkers
	var g errgroup.Group
	for start:=0; start<n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	g.Wait()
}
