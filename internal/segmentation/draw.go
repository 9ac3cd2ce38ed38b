package segmentation

import (
	"math"

	"pixel-processing/internal/raster"
)

// Red in B,G,R order.
var Red = [3]uint8{0, 0, 255}

// DrawLines returns a 3-channel copy of b with every line painted in c. A
// grayscale b is replicated into all channels first.
func DrawLines(b *raster.Buffer, lines []Line, c [3]uint8) (*raster.Buffer, error) {
	var out *raster.Buffer
	if b.IsGray() {
		var err error
		if out, err = raster.Merge(b, b, b); err != nil {
			return nil, err
		}
	} else {
		out = b.Copy()
	}
	for _, l := range lines {
		drawLine(out, l, c)
	}
	return out, nil
}

// drawLine walks the axis along which the line changes fastest so the
// rendered line has no gaps.
func drawLine(out *raster.Buffer, l Line, c [3]uint8) {
	sin, cos := math.Sincos(float64(l.Theta) * math.Pi / 180)
	rho := float64(l.Rho)
	put := func(x, y int) {
		if out.InBounds(x, y) {
			out.SetPixel(x, y, c[:]...)
		}
	}
	if math.Abs(sin) >= math.Abs(cos) {
		for x := 0; x < out.Width; x++ {
			put(x, int(math.Round((rho-float64(x)*cos)/sin)))
		}
		return
	}
	for y := 0; y < out.Height; y++ {
		put(int(math.Round((rho-float64(y)*sin)/cos)), y)
	}
}

// Hough detects up to maxLines lines with at least minVotes votes in the
// binary edge image b and draws them in red.
func Hough(b *raster.Buffer, r AngleRange, minVotes, maxLines int) (*raster.Buffer, []Line, error) {
	lines, err := HoughLines(b, r, minVotes, maxLines)
	if err != nil {
		return nil, nil, err
	}
	out, err := DrawLines(b, lines, Red)
	if err != nil {
		return nil, nil, err
	}
	return out, lines, nil
}
