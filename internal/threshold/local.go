package threshold

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// stats holds the mean and standard deviation of the window around every
// pixel, row-major.
type stats struct {
	mean, std []float64
}

// localStats measures every size x size window over the replicate-padded
// image with two summed-area tables.
func localStats(b *raster.Buffer, size int, op string) (*stats, error) {
	if err := raster.RequireGray(b, op); err != nil {
		return nil, err
	}
	if err := raster.ValidateMask(size); err != nil {
		return nil, err
	}
	padded, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	sum := newIntegral(padded)
	sq := newIntegralOf(padded, func(v uint8) uint64 { return uint64(v) * uint64(v) })
	n := float64(size * size)

	s := &stats{
		mean: make([]float64, b.Width*b.Height),
		std:  make([]float64, b.Width*b.Height),
	}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			m := float64(sum.sum(x, y, x+size, y+size)) / n
			v := float64(sq.sum(x, y, x+size, y+size))/n - m*m
			i := y*b.Width + x
			s.mean[i] = m
			s.std[i] = math.Sqrt(max(v, 0))
		}
	}
	return s, nil
}

// binarize sets 255 where a pixel is brighter than its threshold and 0
// elsewhere, so dark ink ends up black.
func binarize(b *raster.Buffer, threshold func(i int) float64) *raster.Buffer {
	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		src, dst := b.Row(y), out.Row(y)
		for x := range src {
			if float64(src[x]) > threshold(y*b.Width+x) {
				dst[x] = 255
			}
		}
	}
	return out
}

// Niblack thresholds at mean + k*stddev of the local window. Negative k
// suits dark text.
func Niblack(b *raster.Buffer, size int, k float64) (*raster.Buffer, error) {
	s, err := localStats(b, size, "niblack threshold")
	if err != nil {
		return nil, err
	}
	return binarize(b, func(i int) float64 { return s.mean[i] + k*s.std[i] }), nil
}

// Sauvola thresholds at mean * (1 + k*(stddev/r - 1)), r being the dynamic
// range of the standard deviation.
func Sauvola(b *raster.Buffer, size int, k, r float64) (*raster.Buffer, error) {
	if r <= 0 {
		return nil, fmt.Errorf("%w: sauvola dynamic range must be positive, got %v", raster.ErrInvalidArgument, r)
	}
	s, err := localStats(b, size, "sauvola threshold")
	if err != nil {
		return nil, err
	}
	return binarize(b, func(i int) float64 { return s.mean[i] * (1 + k*(s.std[i]/r-1)) }), nil
}

// WolfJolion normalises Sauvola's contrast term by the image itself:
// T = (1-k)*mean + k*M + k*(stddev/R)*(mean-M), with M the darkest pixel and
// R the largest local standard deviation.
func WolfJolion(b *raster.Buffer, size int, k float64) (*raster.Buffer, error) {
	s, err := localStats(b, size, "wolf-jolion threshold")
	if err != nil {
		return nil, err
	}
	darkest := 255.0
	for y := 0; y < b.Height; y++ {
		for _, v := range b.Row(y) {
			darkest = min(darkest, float64(v))
		}
	}
	var spread float64
	for _, sd := range s.std {
		spread = max(spread, sd)
	}
	if spread == 0 {
		spread = 1
	}
	return binarize(b, func(i int) float64 {
		m := s.mean[i]
		return (1-k)*m + k*darkest + k*(s.std[i]/spread)*(m-darkest)
	}), nil
}

// Nick thresholds at mean + k*sqrt((sum(p^2) - mean^2) / n).
func Nick(b *raster.Buffer, size int, k float64) (*raster.Buffer, error) {
	s, err := localStats(b, size, "nick threshold")
	if err != nil {
		return nil, err
	}
	n := float64(size * size)
	return binarize(b, func(i int) float64 {
		m, sd := s.mean[i], s.std[i]
		// sum(p^2)/n = sd^2 + m^2
		return m + k*math.Sqrt(max(sd*sd+m*m-m*m/n, 0))
	}), nil
}
