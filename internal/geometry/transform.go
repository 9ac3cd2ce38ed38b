package geometry

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"pixel-processing/internal/raster"
)

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive, got %v", raster.ErrInvalidArgument, name, v)
	}
	return nil
}

// Scale resizes b by sy vertically and sx horizontally. The destination is
// round(H*sy) x round(W*sx), at least one pixel each way.
func Scale(b *raster.Buffer, sy, sx float64, s Sampler) (*raster.Buffer, error) {
	if err := positive("vertical scale", sy); err != nil {
		return nil, err
	}
	if err := positive("horizontal scale", sx); err != nil {
		return nil, err
	}
	w := max(1, int(math.Round(float64(b.Width)*sx)))
	h := max(1, int(math.Round(float64(b.Height)*sy)))
	// align pixel areas rather than pixel centres so the corners match; the
	// rounded size gives the effective factors
	fx := float64(w) / float64(b.Width)
	fy := float64(h) / float64(b.Height)
	return Affine(b, f64.Aff3{
		1 / fx, 0, 0.5/fx - 0.5,
		0, 1 / fy, 0.5/fy - 0.5,
	}, w, h, s)
}

// Affine builds a width x height image whose pixel (x, y) is read from b at
// m * (x, y, 1). Both coordinate systems put pixel centres on integers.
func Affine(b *raster.Buffer, m f64.Aff3, width, height int, s Sampler) (*raster.Buffer, error) {
	return Warp(b, width, height, func(x, y float64) (float64, float64, bool) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5], true
	}, s)
}

// rotation is the destination to source mapping of a counterclockwise
// rotation by rad about (cx, cy).
func rotation(rad, cx, cy float64) f64.Aff3 {
	sin, cos := math.Sincos(rad)
	return f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
}

func center(b *raster.Buffer) (float64, float64) {
	return float64(b.Width-1) / 2, float64(b.Height-1) / 2
}

// rotateBack maps a destination offset from the centre to the source offset
// of a counterclockwise rotation by rad.
func rotateBack(dx, dy, rad float64) (float64, float64) {
	sin, cos := math.Sincos(rad)
	return dx*cos - dy*sin, dx*sin + dy*cos
}

// Rotate turns b counterclockwise by deg degrees about its centre. The
// output keeps b's size; corners rotated in from outside are background.
func Rotate(b *raster.Buffer, deg float64, s Sampler) (*raster.Buffer, error) {
	cx, cy := center(b)
	return Affine(b, rotation(deg*math.Pi/180, cx, cy), b.Width, b.Height, s)
}

// Twirl rotates every pixel about the centre by an angle falling linearly
// from deg at the centre to zero at maxRadius. Pixels farther out are
// copied unchanged.
func Twirl(b *raster.Buffer, deg, maxRadius float64, s Sampler) (*raster.Buffer, error) {
	if err := positive("twirl radius", maxRadius); err != nil {
		return nil, err
	}
	cx, cy := center(b)
	rad := deg * math.Pi / 180
	return Warp(b, b.Width, b.Height, func(x, y float64) (float64, float64, bool) {
		dx, dy := x-cx, y-cy
		r := math.Hypot(dx, dy)
		if r >= maxRadius {
			return x, y, true
		}
		sx, sy := rotateBack(dx, dy, rad*(maxRadius-r)/maxRadius)
		return sx + cx, sy + cy, true
	}, s)
}

// Ripple displaces every pixel sinusoidally: the source of (x, y) is
// (x + ax*sin(2*pi*y/ty), y + ay*sin(2*pi*x/tx)). Periods must be positive.
func Ripple(b *raster.Buffer, tx, ty, ax, ay float64, s Sampler) (*raster.Buffer, error) {
	if err := positive("horizontal period", tx); err != nil {
		return nil, err
	}
	if err := positive("vertical period", ty); err != nil {
		return nil, err
	}
	return Warp(b, b.Width, b.Height, func(x, y float64) (float64, float64, bool) {
		return x + ax*math.Sin(2*math.Pi*y/ty), y + ay*math.Sin(2*math.Pi*x/tx), true
	}, s)
}

// MirrorHorizontal flips b left to right.
func MirrorHorizontal(b *raster.Buffer) *raster.Buffer {
	out := b.Blank()
	ch := b.Channels
	for y := 0; y < b.Height; y++ {
		src, dst := b.Row(y), out.Row(y)
		for x := 0; x < b.Width; x++ {
			m := b.Width - 1 - x
			copy(dst[m*ch:(m+1)*ch], src[x*ch:(x+1)*ch])
		}
	}
	return out
}

// MirrorVertical flips b top to bottom.
func MirrorVertical(b *raster.Buffer) *raster.Buffer {
	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		copy(out.Row(b.Height-1-y), b.Row(y))
	}
	return out
}
