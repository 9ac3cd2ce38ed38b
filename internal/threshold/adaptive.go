package threshold

import (
	"fmt"

	"pixel-processing/internal/raster"
)

// Adaptive weight bounds.
const (
	MinAdaptiveWeight = 0.8
	MaxAdaptiveWeight = 0.9
)

// integral is a summed-area table with a zero first row and column, so the
// sum of the rectangle [x0,x1)x[y0,y1) is four lookups.
type integral struct {
	w    int
	sums []uint64
}

func newIntegral(b *raster.Buffer) *integral {
	return newIntegralOf(b, func(v uint8) uint64 { return uint64(v) })
}

// newIntegralOf accumulates f of every sample.
func newIntegralOf(b *raster.Buffer, f func(uint8) uint64) *integral {
	w := b.Width + 1
	ii := &integral{w: w, sums: make([]uint64, w*(b.Height+1))}
	for y := 0; y < b.Height; y++ {
		var row uint64
		src := b.Row(y)
		for x := 0; x < b.Width; x++ {
			row += f(src[x])
			ii.sums[(y+1)*w+x+1] = ii.sums[y*w+x+1] + row
		}
	}
	return ii
}

func (ii *integral) sum(x0, y0, x1, y1 int) uint64 {
	w := ii.w
	return ii.sums[y1*w+x1] + ii.sums[y0*w+x0] - ii.sums[y0*w+x1] - ii.sums[y1*w+x0]
}

// Adaptive marks a pixel as foreground (255) when it is darker than k times
// the mean of the size x size window around it, and background (0)
// otherwise. Windows reaching past the border see replicated edge pixels.
// k must lie in [0.8,0.9].
func Adaptive(b *raster.Buffer, size int, k float64) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "adaptive threshold"); err != nil {
		return nil, err
	}
	if err := raster.ValidateMask(size); err != nil {
		return nil, err
	}
	if k < MinAdaptiveWeight || k > MaxAdaptiveWeight {
		return nil, fmt.Errorf("%w: adaptive weight %v outside [%v,%v]",
			raster.ErrInvalidArgument, k, MinAdaptiveWeight, MaxAdaptiveWeight)
	}
	padded, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	ii := newIntegral(padded)
	n := float64(size * size)

	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		src, dst := b.Row(y), out.Row(y)
		for x := 0; x < b.Width; x++ {
			mean := float64(ii.sum(x, y, x+size, y+size)) / n
			if float64(src[x]) < k*mean {
				dst[x] = 255
			}
		}
	}
	return out, nil
}
