// Package morphology implements erosion, dilation and their compositions
// with a solid square structuring element, plus connected component
// labeling of binary images.
package morphology

import (
	"fmt"

	"pixel-processing/internal/raster"
)

// Op is a morphological operation selectable by name.
type Op int

const (
	OpDilate Op = iota
	OpErode
	OpOpen
	OpClose
	OpGradient
	OpSmooth
	OpBoundary
	OpTopHat
)

var opNames = map[Op]string{
	OpDilate:   "dilate",
	OpErode:    "erode",
	OpOpen:     "open",
	OpClose:    "close",
	OpGradient: "gradient",
	OpSmooth:   "smooth",
	OpBoundary: "boundary",
	OpTopHat:   "top_hat",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// rank filters a single plane with the size x size window, keeping the
// maximum (dilation) or minimum (erosion). The square window is separable,
// so one horizontal and one vertical pass suffice.
func rank(b *raster.Buffer, size int, dilate bool) (*raster.Buffer, error) {
	padded, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	better := func(a, c uint8) bool { return a < c }
	if dilate {
		better = func(a, c uint8) bool { return a > c }
	}

	// horizontal pass: padded height, output width
	rows, err := raster.New(b.Width, padded.Height, raster.Gray)
	if err != nil {
		return nil, err
	}
	for y := 0; y < padded.Height; y++ {
		src, dst := padded.Row(y), rows.Row(y)
		for x := 0; x < b.Width; x++ {
			v := src[x]
			for k := 1; k < size; k++ {
				if better(src[x+k], v) {
					v = src[x+k]
				}
			}
			dst[x] = v
		}
	}

	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		dst := out.Row(y)
		for x := 0; x < b.Width; x++ {
			v := rows.Pix[y*rows.Stride+x]
			for k := 1; k < size; k++ {
				if c := rows.Pix[(y+k)*rows.Stride+x]; better(c, v) {
					v = c
				}
			}
			dst[x] = v
		}
	}
	return out, nil
}

func grayRank(b *raster.Buffer, size int, dilate bool) (*raster.Buffer, error) {
	if err := raster.ValidateMask(size); err != nil {
		return nil, err
	}
	return raster.MapChannels(b, func(p *raster.Buffer) (*raster.Buffer, error) {
		return rank(p, size, dilate)
	})
}

// GrayDilate replaces every sample with the maximum of its window.
// Color images are processed per channel.
func GrayDilate(b *raster.Buffer, size int) (*raster.Buffer, error) {
	return grayRank(b, size, true)
}

// GrayErode replaces every sample with the minimum of its window.
func GrayErode(b *raster.Buffer, size int) (*raster.Buffer, error) {
	return grayRank(b, size, false)
}

// GrayOpen is erosion followed by dilation.
func GrayOpen(b *raster.Buffer, size int) (*raster.Buffer, error) {
	e, err := GrayErode(b, size)
	if err != nil {
		return nil, err
	}
	return GrayDilate(e, size)
}

// GrayClose is dilation followed by erosion.
func GrayClose(b *raster.Buffer, size int) (*raster.Buffer, error) {
	d, err := GrayDilate(b, size)
	if err != nil {
		return nil, err
	}
	return GrayErode(d, size)
}

// Smooth is an opening followed by a closing.
func Smooth(b *raster.Buffer, size int) (*raster.Buffer, error) {
	o, err := GrayOpen(b, size)
	if err != nil {
		return nil, err
	}
	return GrayClose(o, size)
}

// subtract returns a - c per sample; a and c must have the same shape and
// a >= c holds for every pair this package produces.
func subtract(a, c *raster.Buffer) *raster.Buffer {
	out := a.Blank()
	for i := range out.Pix {
		out.Pix[i] = raster.ClampInt(int(a.Pix[i]) - int(c.Pix[i]))
	}
	return out
}

// Gradient is dilation minus erosion.
func Gradient(b *raster.Buffer, size int) (*raster.Buffer, error) {
	d, err := GrayDilate(b, size)
	if err != nil {
		return nil, err
	}
	e, err := GrayErode(b, size)
	if err != nil {
		return nil, err
	}
	return subtract(d, e), nil
}

// Boundary is the image minus its erosion, the inner contour of every
// bright region.
func Boundary(b *raster.Buffer, size int) (*raster.Buffer, error) {
	e, err := GrayErode(b, size)
	if err != nil {
		return nil, err
	}
	return subtract(b, e), nil
}

// TopHat is the image minus its opening: bright details smaller than the
// structuring element.
func TopHat(b *raster.Buffer, size int) (*raster.Buffer, error) {
	o, err := GrayOpen(b, size)
	if err != nil {
		return nil, err
	}
	return subtract(b, o), nil
}

// Dilate sets a pixel to 255 when any pixel of its window is 255.
// The input must be a binary grayscale image.
func Dilate(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := raster.RequireBinary(b, "dilation"); err != nil {
		return nil, err
	}
	return GrayDilate(b, size)
}

// Erode keeps a pixel at 255 only when its whole window is 255.
func Erode(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := raster.RequireBinary(b, "erosion"); err != nil {
		return nil, err
	}
	return GrayErode(b, size)
}

// Open is binary erosion followed by dilation.
func Open(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := raster.RequireBinary(b, "opening"); err != nil {
		return nil, err
	}
	return GrayOpen(b, size)
}

// Close is binary dilation followed by erosion.
func Close(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := raster.RequireBinary(b, "closing"); err != nil {
		return nil, err
	}
	return GrayClose(b, size)
}

// Apply runs op on b. Binary-only operations reject other inputs.
func Apply(b *raster.Buffer, op Op, size int) (*raster.Buffer, error) {
	switch op {
	case OpDilate:
		return Dilate(b, size)
	case OpErode:
		return Erode(b, size)
	case OpOpen:
		return Open(b, size)
	case OpClose:
		return Close(b, size)
	case OpGradient:
		return Gradient(b, size)
	case OpSmooth:
		return Smooth(b, size)
	case OpBoundary:
		return Boundary(b, size)
	case OpTopHat:
		return TopHat(b, size)
	}
	return nil, fmt.Errorf("%w: unknown morphological operation %d", raster.ErrInvalidArgument, int(op))
}
