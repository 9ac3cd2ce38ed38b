// Package threshold turns grayscale images into binary ones. Global methods
// pick one threshold t from the histogram and mark pixels >= t as 255;
// Adaptive compares every pixel with a fraction of its local mean.
package threshold

import (
	"fmt"
	"math"

	"pixel-processing/internal/pointwise"
	"pixel-processing/internal/raster"
)

// MaxIntermeansIterations bounds the isodata loop; the threshold takes
// integer values so a non-oscillating sequence settles well before this.
const MaxIntermeansIterations = 256

func validateThreshold(t int) error {
	if t < 0 || t > 255 {
		return fmt.Errorf("%w: threshold %d outside [0,255]", raster.ErrInvalidArgument, t)
	}
	return nil
}

// BinaryLUT maps intensities >= t to 255 and the rest to 0.
func BinaryLUT(t int) pointwise.LUT {
	var lut pointwise.LUT
	for r := range lut {
		if r >= t {
			lut[r] = 255
		}
	}
	return lut
}

// Manual binarises a grayscale image at t: 255 where pixel >= t, else 0.
func Manual(b *raster.Buffer, t int) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "threshold"); err != nil {
		return nil, err
	}
	if err := validateThreshold(t); err != nil {
		return nil, err
	}
	return pointwise.Apply(b, BinaryLUT(t)), nil
}

// Quantile returns the smallest t whose cumulative histogram count reaches
// the fraction p of all pixels.
func Quantile(b *raster.Buffer, p float64) (int, error) {
	if err := raster.RequireGray(b, "quantile threshold"); err != nil {
		return 0, err
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", raster.ErrInvalidArgument, p)
	}
	hist := b.Histogram(0)
	target := p * float64(b.Width*b.Height)
	cum := 0
	for t, n := range hist {
		cum += n
		if float64(cum) >= target {
			return t, nil
		}
	}
	return 255, nil
}

// MedianThreshold returns the median sample of a grayscale image, the
// smallest intensity whose cumulative count reaches (N+1)/2.
func MedianThreshold(b *raster.Buffer) (int, error) {
	if err := raster.RequireGray(b, "median threshold"); err != nil {
		return 0, err
	}
	hist := b.Histogram(0)
	target := (b.Width*b.Height + 1) / 2
	cum := 0
	for t, n := range hist {
		cum += n
		if cum >= target {
			return t, nil
		}
	}
	return 255, nil
}

// Intermeans runs the iterative isodata selection: starting from the mean
// intensity, t becomes the rounded average of the means of the pixels below
// t and of the pixels at or above t, until t repeats. The second return
// value is the number of iterations performed.
func Intermeans(b *raster.Buffer) (int, int, error) {
	if err := raster.RequireGray(b, "intermeans threshold"); err != nil {
		return 0, 0, err
	}
	hist := b.Histogram(0)
	var cnt, sum [257]float64
	for v, n := range hist {
		cnt[v+1] = cnt[v] + float64(n)
		sum[v+1] = sum[v] + float64(v*n)
	}
	total, totalSum := cnt[256], sum[256]

	t := int(math.Round(totalSum / total))
	for it := 1; it <= MaxIntermeansIterations; it++ {
		lowN, highN := cnt[t], total-cnt[t]
		if lowN == 0 || highN == 0 {
			return t, it, nil
		}
		mLow := sum[t] / lowN
		mHigh := (totalSum - sum[t]) / highN
		next := int(math.Round((mLow + mHigh) / 2))
		if next == t {
			return t, it, nil
		}
		t = next
	}
	return t, MaxIntermeansIterations, nil
}

// Otsu returns the threshold maximising the between-class variance of
// the classes [0,t) and [t,255]. When several thresholds tie, the middle of
// the tied range is chosen, so two separated peaks are split halfway.
func Otsu(b *raster.Buffer) (int, error) {
	if err := raster.RequireGray(b, "otsu threshold"); err != nil {
		return 0, err
	}
	t, ok := otsuLevel(b.Histogram(0))
	if !ok {
		// a constant image has a single class
		return int(b.Pix[0]), nil
	}
	return t, nil
}

// otsuLevel runs the Otsu search over hist. It reports false when the
// histogram holds a single intensity.
func otsuLevel(hist [256]int) (int, bool) {
	total, totalSum := 0.0, 0.0
	for v, n := range hist {
		total += float64(n)
		totalSum += float64(v * n)
	}

	best, first, last := -1.0, 0, 0
	w0, s0 := 0.0, 0.0
	for t := 1; t < 256; t++ {
		w0 += float64(hist[t-1])
		s0 += float64((t - 1) * hist[t-1])
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		d := s0/w0 - (totalSum-s0)/w1
		v := w0 * w1 * d * d
		switch {
		case v > best*(1+1e-12):
			best, first, last = v, t, t
		case v >= best*(1-1e-12):
			last = t
		}
	}
	if best < 0 {
		return 0, false
	}
	return (first + last) / 2, true
}

// OtsuTwo returns t1 < t2 maximising the between-class variance of the
// three classes [0,t1), [t1,t2) and [t2,255].
func OtsuTwo(b *raster.Buffer) (int, int, error) {
	if err := raster.RequireGray(b, "two-level otsu threshold"); err != nil {
		return 0, 0, err
	}
	hist := b.Histogram(0)
	var cnt, sum [257]float64
	for v, n := range hist {
		cnt[v+1] = cnt[v] + float64(n)
		sum[v+1] = sum[v] + float64(v*n)
	}
	total := cnt[256]
	mean := sum[256] / total

	// sigma_B^2 = sum w_k (mu_k - mu)^2 over non-empty classes
	class := func(lo, hi int) float64 {
		w := cnt[hi] - cnt[lo]
		if w == 0 {
			return 0
		}
		d := (sum[hi]-sum[lo])/w - mean
		return w * d * d
	}

	best, t1, t2 := -1.0, 1, 2
	for a := 1; a < 255; a++ {
		for c := a + 1; c < 256; c++ {
			v := class(0, a) + class(a, c) + class(c, 256)
			if v > best {
				best, t1, t2 = v, a, c
			}
		}
	}
	return t1, t2, nil
}

// ThreeLevel maps pixels below t1 to 0, pixels in [t1,t2) to 128 and the
// rest to 255.
func ThreeLevel(b *raster.Buffer, t1, t2 int) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "three-level threshold"); err != nil {
		return nil, err
	}
	if err := validateThreshold(t1); err != nil {
		return nil, err
	}
	if err := validateThreshold(t2); err != nil {
		return nil, err
	}
	if t1 > t2 {
		return nil, fmt.Errorf("%w: thresholds %d > %d", raster.ErrInvalidArgument, t1, t2)
	}
	var lut pointwise.LUT
	for r := range lut {
		switch {
		case r >= t2:
			lut[r] = 255
		case r >= t1:
			lut[r] = 128
		}
	}
	return pointwise.Apply(b, lut), nil
}
