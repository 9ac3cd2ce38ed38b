package filters

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// VectorMedian replaces every pixel of a color image with the window sample
// whose summed Euclidean B,G,R distance to all other window samples is
// smallest. Ties keep the first sample in row-major window order. The output
// pixel is always one of the input colors of its window.
func VectorMedian(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if b.Channels != raster.Color {
		return nil, fmt.Errorf("%w: vector median requires a color image, got %d channels", raster.ErrInvalidArgument, b.Channels)
	}
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	out := b.Blank()
	n := size * size
	samples := make([][3]float64, n)
	sums := make([]float64, n)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := 0
			for wy := 0; wy < size; wy++ {
				for wx := 0; wx < size; wx++ {
					o := p.Offset(x+wx, y+wy)
					samples[i] = [3]float64{float64(p.Pix[o]), float64(p.Pix[o+1]), float64(p.Pix[o+2])}
					sums[i] = 0
					i++
				}
			}
			for a := 0; a < n; a++ {
				for c := a + 1; c < n; c++ {
					d := distance(samples[a], samples[c])
					sums[a] += d
					sums[c] += d
				}
			}
			best := 0
			for a := 1; a < n; a++ {
				if sums[a] < sums[best] {
					best = a
				}
			}
			o := out.Offset(x, y)
			s := samples[best]
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = uint8(s[0]), uint8(s[1]), uint8(s[2])
		}
	}
	return out, nil
}

func distance(a, b [3]float64) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(d0*d0 + d1*d1 + d2*d2)
}
