package filters

import (
	"pixel-processing/internal/raster"
)

// FastMedian computes the same output as Median with a sliding histogram.
//
// Each padded column keeps a histogram of the size rows currently under the
// window. Rows are visited top to bottom and columns in alternating
// direction, so stepping sideways swaps one column histogram out of the
// window and one in, and stepping down only exchanges the size samples of
// the leaving and entering rows. Cost is O(W*H*256) independent of size.
func FastMedian(b *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := raster.ValidateMask(size); err != nil {
		return nil, err
	}
	return raster.MapChannels(b, func(plane *raster.Buffer) (*raster.Buffer, error) {
		return fastMedianPlane(plane, size)
	})
}

type histogram [256]int

func (h *histogram) add(o *histogram) {
	for i, n := range o {
		h[i] += n
	}
}

func (h *histogram) sub(o *histogram) {
	for i, n := range o {
		h[i] -= n
	}
}

// rank returns the smallest intensity whose cumulative count reaches target.
func (h *histogram) rank(target int) uint8 {
	cum := 0
	for v, n := range h {
		cum += n
		if cum >= target {
			return uint8(v)
		}
	}
	return 255
}

func fastMedianPlane(b *raster.Buffer, size int) (*raster.Buffer, error) {
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	out := b.Blank()
	target := (size*size + 1) / 2

	columns := make([]histogram, p.Width)
	for y := 0; y < size; y++ {
		for x, v := range p.Row(y) {
			columns[x][v]++
		}
	}

	var window histogram
	for x := 0; x < size; x++ {
		window.add(&columns[x])
	}

	// x is the left edge of the window in padded coordinates, which is
	// also the output column.
	x := 0
	for y := 0; y < b.Height; y++ {
		if y > 0 {
			leaving, entering := p.Row(y-1), p.Row(y+size-1)
			for j := range columns {
				columns[j][leaving[j]]--
				columns[j][entering[j]]++
			}
			for j := x; j < x+size; j++ {
				window[leaving[j]]--
				window[entering[j]]++
			}
		}

		if y%2 == 0 {
			for {
				out.Pix[y*out.Stride+x] = window.rank(target)
				if x == b.Width-1 {
					break
				}
				window.sub(&columns[x])
				window.add(&columns[x+size])
				x++
			}
		} else {
			for {
				out.Pix[y*out.Stride+x] = window.rank(target)
				if x == 0 {
					break
				}
				window.sub(&columns[x+size-1])
				window.add(&columns[x-1])
				x--
			}
		}
	}
	return out, nil
}
