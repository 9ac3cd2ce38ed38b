package edges

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// directionBin quantises the gradient angle of pixel i into bins sectors
// centred on multiples of 180/bins (4 bins) or 360/bins (8 bins) degrees.
func (g *Gradient) directionBin(i, bins int) int {
	deg := math.Atan2(g.Fy[i], g.Fx[i]) * 180 / math.Pi
	span := 180.0
	if bins == 8 {
		span = 360
	}
	deg = math.Mod(deg+span, span)
	step := span / float64(bins)
	return int((deg+step/2)/step) % bins
}

// Direction renders the quantised gradient direction of every pixel for
// inspection: bin k maps to (k+1)*255/bins, pixels without gradient are 0.
// bins must be 4 (orientation modulo 180 degrees) or 8 (full circle).
func Direction(g *Gradient, bins int) (*raster.Buffer, error) {
	if bins != 4 && bins != 8 {
		return nil, fmt.Errorf("%w: direction bins must be 4 or 8, got %d", raster.ErrInvalidArgument, bins)
	}
	out := raster.NewGray(g.Width, g.Height)
	for i := range out.Pix {
		if g.Fx[i] == 0 && g.Fy[i] == 0 {
			continue
		}
		out.Pix[i] = uint8((g.directionBin(i, bins) + 1) * 255 / bins)
	}
	return out, nil
}

// neighbour offsets along the gradient for the four orientation bins
var nmsOffsets = [4][2]int{
	{1, 0},
	{1, 1},
	{0, 1},
	{-1, 1},
}

// NonMaxSuppression keeps a pixel's magnitude only when it is not smaller
// than both neighbours along its quantised gradient direction. Border
// pixels are suppressed.
func NonMaxSuppression(g *Gradient) *raster.Buffer {
	out := raster.NewGray(g.Width, g.Height)
	w := g.Width
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := g.Magnitude(i)
			if m == 0 {
				continue
			}
			d := nmsOffsets[g.directionBin(i, 4)]
			ahead := g.Magnitude((y+d[1])*w + x + d[0])
			behind := g.Magnitude((y-d[1])*w + x - d[0])
			if m >= ahead && m >= behind {
				out.Pix[i] = raster.Clamp(m)
			}
		}
	}
	return out
}

// Hysteresis keeps every pixel >= high and every pixel >= low that is
// 8-connected to a kept pixel through pixels >= low. Propagation is a
// breadth-first flood from the strong pixels, so the result does not depend
// on scan order.
func Hysteresis(b *raster.Buffer, low, high int) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "hysteresis"); err != nil {
		return nil, err
	}
	if low < 0 || high > 255 || low > high {
		return nil, fmt.Errorf("%w: hysteresis thresholds must satisfy 0<=low<=high<=255, got %d,%d", raster.ErrInvalidArgument, low, high)
	}
	out := b.Blank()
	w, h := b.Width, b.Height
	queue := make([]int, 0, len(b.Pix)/8)
	for i, v := range b.Pix {
		if int(v) >= high {
			out.Pix[i] = 255
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if out.Pix[j] == 0 && int(b.Pix[j]) >= low {
					out.Pix[j] = 255
					queue = append(queue, j)
				}
			}
		}
	}
	return out, nil
}

// Canny runs Sobel gradient, non-maxima suppression and hysteresis and
// returns a binary edge image. Smooth the input first for noisy images.
func Canny(b *raster.Buffer, low, high int) (*raster.Buffer, error) {
	g, err := ComputeGradient(b, Sobel)
	if err != nil {
		return nil, err
	}
	return Hysteresis(NonMaxSuppression(g), low, high)
}
