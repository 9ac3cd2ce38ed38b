// Package pointwise builds 256-entry lookup tables for intensity mappings
// and applies them sample by sample.
package pointwise

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// LUT maps every 8-bit intensity to its transformed value.
type LUT [256]uint8

// FromFunc tabulates f over 0..255, rounding and clamping each output.
func FromFunc(f func(r float64) float64) LUT {
	var t LUT
	for r := range t {
		t[r] = raster.Clamp(f(float64(r)))
	}
	return t
}

// Identity returns the table that maps every intensity to itself.
func Identity() LUT {
	var t LUT
	for r := range t {
		t[r] = uint8(r)
	}
	return t
}

// Compose returns the table applying t first and then u.
func (t LUT) Compose(u LUT) LUT {
	var out LUT
	for r := range out {
		out[r] = u[t[r]]
	}
	return out
}

// Apply maps every sample of every channel through t into a new buffer.
func Apply(b *raster.Buffer, t LUT) *raster.Buffer {
	out := b.Blank()
	for i, v := range b.Pix {
		out.Pix[i] = t[v]
	}
	return out
}

// ApplyChannel maps only channel c through t; other channels are copied.
func ApplyChannel(b *raster.Buffer, t LUT, c int) (*raster.Buffer, error) {
	if c < 0 || c >= b.Channels {
		return nil, fmt.Errorf("%w: channel %d of %d", raster.ErrInvalidArgument, c, b.Channels)
	}
	out := b.Copy()
	for i := c; i < len(out.Pix); i += out.Channels {
		out.Pix[i] = t[out.Pix[i]]
	}
	return out, nil
}

// Invert returns s = 255 - r.
func Invert() LUT {
	var t LUT
	for r := range t {
		t[r] = uint8(255 - r)
	}
	return t
}

// Brightness returns s = r + delta. A negative delta darkens the image.
func Brightness(delta int) (LUT, error) {
	if delta < -255 || delta > 255 {
		return LUT{}, fmt.Errorf("%w: brightness offset %d outside [-255,255]", raster.ErrInvalidArgument, delta)
	}
	var t LUT
	for r := range t {
		t[r] = raster.ClampInt(r + delta)
	}
	return t, nil
}

// ContrastKeepBlack returns s = a*r, which keeps 0 fixed. a > 1 increases
// contrast, 0 < a < 1 decreases it.
func ContrastKeepBlack(a float64) (LUT, error) {
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return LUT{}, fmt.Errorf("%w: contrast factor %v must be positive", raster.ErrInvalidArgument, a)
	}
	return FromFunc(func(r float64) float64 { return a * r }), nil
}

// ContrastKeepWhite returns s = 255 - a*(255-r), which keeps 255 fixed.
func ContrastKeepWhite(a float64) (LUT, error) {
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return LUT{}, fmt.Errorf("%w: contrast factor %v must be positive", raster.ErrInvalidArgument, a)
	}
	return FromFunc(func(r float64) float64 { return 255 - a*(255-r) }), nil
}

// Logarithmic returns s = c*ln(1+r) with c chosen so that s(255) = 255.
func Logarithmic() LUT {
	c := 255 / math.Log(256)
	return FromFunc(func(r float64) float64 { return c * math.Log1p(r) })
}

// Exponential is the inverse of Logarithmic: s = exp(r/c) - 1 with the
// same c, so that s(255) = 255.
func Exponential() LUT {
	c := 255 / math.Log(256)
	return FromFunc(func(r float64) float64 { return math.Expm1(r / c) })
}

// Gamma returns s = 255*(r/255)^gamma.
func Gamma(gamma float64) (LUT, error) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return LUT{}, fmt.Errorf("%w: gamma %v must be positive", raster.ErrInvalidArgument, gamma)
	}
	return FromFunc(func(r float64) float64 { return 255 * math.Pow(r/255, gamma) }), nil
}

// PiecewiseLinear joins (0,0), (r1,s1), (r2,s2) and (255,255) with line segments.
func PiecewiseLinear(r1, s1, r2, s2 int) (LUT, error) {
	if r1 < 0 || r1 > r2 || r2 > 255 || s1 < 0 || s1 > s2 || s2 > 255 {
		return LUT{}, fmt.Errorf("%w: control points (%d,%d),(%d,%d) must satisfy 0<=r1<=r2<=255 and 0<=s1<=s2<=255",
			raster.ErrInvalidArgument, r1, s1, r2, s2)
	}
	segment := func(r, x0, y0, x1, y1 float64) float64 {
		if x1 == x0 {
			return y1
		}
		return y0 + (r-x0)*(y1-y0)/(x1-x0)
	}
	fr1, fs1, fr2, fs2 := float64(r1), float64(s1), float64(r2), float64(s2)
	return FromFunc(func(r float64) float64 {
		switch {
		case r <= fr1:
			return segment(r, 0, 0, fr1, fs1)
		case r <= fr2:
			return segment(r, fr1, fs1, fr2, fs2)
		default:
			return segment(r, fr2, fs2, 255, 255)
		}
	}), nil
}

// Sinusoidal stretches mid-tones when increase is true,
// s = 127.5*(1 - cos(pi*r/255)), and applies the inverse curve
// s = (255/pi)*acos(1 - 2r/255) otherwise.
func Sinusoidal(increase bool) LUT {
	if increase {
		return FromFunc(func(r float64) float64 { return 127.5 * (1 - math.Cos(math.Pi*r/255)) })
	}
	return FromFunc(func(r float64) float64 { return 255 / math.Pi * math.Acos(1-2*r/255) })
}

// Polynomial returns s = sum(coeffs[i] * r^i).
func Polynomial(coeffs ...float64) (LUT, error) {
	if len(coeffs) == 0 {
		return LUT{}, fmt.Errorf("%w: polynomial needs at least one coefficient", raster.ErrInvalidArgument)
	}
	return FromFunc(func(r float64) float64 {
		// Horner
		s := 0.0
		for i := len(coeffs) - 1; i >= 0; i-- {
			s = s*r + coeffs[i]
		}
		return s
	}), nil
}

// EMOperator is the contrast-stretching curve s = 255 / (1 + (m/r)^E):
// intensities below m are darkened, those above brightened, with slope
// controlled by E. m must be positive and E non-zero.
func EMOperator(m, e float64) (LUT, error) {
	if !(m > 0) || e == 0 || math.IsNaN(e) {
		return LUT{}, fmt.Errorf("%w: EM operator needs m > 0 and E != 0, got m=%v E=%v", raster.ErrInvalidArgument, m, e)
	}
	return FromFunc(func(r float64) float64 {
		if r == 0 {
			return 0
		}
		return 255 / (1 + math.Pow(m/r, e))
	}), nil
}

// Equalization builds the histogram-equalisation table of channel c of b:
// s = round(255 * (cdf(r) - cdfMin) / (N - cdfMin)). A constant channel
// maps to itself.
func Equalization(b *raster.Buffer, c int) (LUT, error) {
	if c < 0 || c >= b.Channels {
		return LUT{}, fmt.Errorf("%w: channel %d of %d", raster.ErrInvalidArgument, c, b.Channels)
	}
	hist := b.Histogram(c)
	total := b.Width * b.Height

	cdfMin := 0
	for _, n := range hist {
		if n > 0 {
			cdfMin = n
			break
		}
	}
	if total == cdfMin {
		return Identity(), nil
	}

	var t LUT
	cdf := 0
	for r, n := range hist {
		cdf += n
		if cdf == 0 {
			continue
		}
		t[r] = raster.Clamp(255 * float64(cdf-cdfMin) / float64(total-cdfMin))
	}
	return t, nil
}

// Equalize equalises every channel of b with its own table.
func Equalize(b *raster.Buffer) *raster.Buffer {
	out := b.Copy()
	for c := 0; c < b.Channels; c++ {
		// channel index is always valid here
		t, _ := Equalization(b, c)
		for i := c; i < len(out.Pix); i += out.Channels {
			out.Pix[i] = t[b.Pix[i]]
		}
	}
	return out
}
