// Package edges computes gradient images with the Prewitt, Sobel and
// Roberts operators and runs the Canny pipeline stage by stage.
package edges

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// Operator selects the derivative masks used for a gradient.
type Operator int

const (
	Sobel Operator = iota
	Prewitt
	Roberts
)

func (o Operator) String() string {
	switch o {
	case Sobel:
		return "sobel"
	case Prewitt:
		return "prewitt"
	case Roberts:
		return "roberts"
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

// Gradient holds the two directional responses of every pixel. For Roberts
// they are the two diagonal differences. Border pixels are zero.
type Gradient struct {
	Width  int
	Height int
	Fx     []float64
	Fy     []float64
}

// ComputeGradient evaluates the operator's masks at every interior pixel of
// a grayscale image. Fx grows to the right and Fy grows downward.
func ComputeGradient(b *raster.Buffer, op Operator) (*Gradient, error) {
	if err := raster.RequireGray(b, op.String()+" gradient"); err != nil {
		return nil, err
	}
	g := &Gradient{
		Width:  b.Width,
		Height: b.Height,
		Fx:     make([]float64, b.Width*b.Height),
		Fy:     make([]float64, b.Width*b.Height),
	}
	w := b.Width
	at := func(x, y int) float64 { return float64(b.Pix[y*b.Stride+x]) }

	switch op {
	case Sobel, Prewitt:
		c := 2.0
		if op == Prewitt {
			c = 1
		}
		for y := 1; y < b.Height-1; y++ {
			for x := 1; x < w-1; x++ {
				g.Fx[y*w+x] = at(x+1, y-1) + c*at(x+1, y) + at(x+1, y+1) -
					at(x-1, y-1) - c*at(x-1, y) - at(x-1, y+1)
				g.Fy[y*w+x] = at(x-1, y+1) + c*at(x, y+1) + at(x+1, y+1) -
					at(x-1, y-1) - c*at(x, y-1) - at(x+1, y-1)
			}
		}
	case Roberts:
		// the last row and column have no forward neighbour
		for y := 0; y < b.Height-1; y++ {
			for x := 0; x < w-1; x++ {
				g.Fx[y*w+x] = at(x, y) - at(x+1, y+1)
				g.Fy[y*w+x] = at(x+1, y) - at(x, y+1)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown operator %d", raster.ErrInvalidArgument, int(op))
	}
	return g, nil
}

// Magnitude returns sqrt(fx^2 + fy^2) for pixel index i.
func (g *Gradient) Magnitude(i int) float64 {
	return math.Hypot(g.Fx[i], g.Fy[i])
}

// MagnitudeImage renders min(255, |grad|) as a grayscale buffer.
func (g *Gradient) MagnitudeImage() *raster.Buffer {
	out := raster.NewGray(g.Width, g.Height)
	for i := range out.Pix {
		out.Pix[i] = raster.Clamp(g.Magnitude(i))
	}
	return out
}

// Magnitude computes the gradient magnitude image of b with op.
func Magnitude(b *raster.Buffer, op Operator) (*raster.Buffer, error) {
	g, err := ComputeGradient(b, op)
	if err != nil {
		return nil, err
	}
	return g.MagnitudeImage(), nil
}

// PrewittEdges is the Prewitt gradient magnitude image.
func PrewittEdges(b *raster.Buffer) (*raster.Buffer, error) { return Magnitude(b, Prewitt) }

// SobelEdges is the Sobel gradient magnitude image.
func SobelEdges(b *raster.Buffer) (*raster.Buffer, error) { return Magnitude(b, Sobel) }

// RobertsEdges is the Roberts cross gradient magnitude image.
func RobertsEdges(b *raster.Buffer) (*raster.Buffer, error) { return Magnitude(b, Roberts) }

// ThresholdGradient binarises the magnitude image of op at t.
func ThresholdGradient(b *raster.Buffer, op Operator, t float64) (*raster.Buffer, error) {
	g, err := ComputeGradient(b, op)
	if err != nil {
		return nil, err
	}
	out := raster.NewGray(g.Width, g.Height)
	for i := range out.Pix {
		if g.Magnitude(i) >= t {
			out.Pix[i] = 255
		}
	}
	return out, nil
}
