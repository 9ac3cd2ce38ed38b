// Package filters implements the spatial smoothing filters: mean, median
// (brute-force and histogram-incremental), vector median, Gaussian and
// bilateral. Every filter pads its input by edge replication and returns a
// new buffer of the input's shape.
package filters

import (
	"fmt"
	"slices"

	"pixel-processing/internal/raster"
)

// Mean replaces every sample by the rounded mean of its size x size window,
// channel by channel.
func Mean(b *raster.Buffer, size int) (*raster.Buffer, error) {
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	out := b.Blank()
	n := size * size
	ch := b.Channels
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			for c := 0; c < ch; c++ {
				sum := 0
				for wy := 0; wy < size; wy++ {
					row := p.Row(y + wy)
					for wx := 0; wx < size; wx++ {
						sum += int(row[(x+wx)*ch+c])
					}
				}
				out.Pix[out.Offset(x, y)+c] = uint8((sum + n/2) / n)
			}
		}
	}
	return out, nil
}

// Median replaces every sample by the median of its size x size window,
// sorting each window independently. FastMedian gives identical output.
func Median(b *raster.Buffer, size int) (*raster.Buffer, error) {
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	out := b.Blank()
	ch := b.Channels
	window := make([]uint8, 0, size*size)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			for c := 0; c < ch; c++ {
				window = window[:0]
				for wy := 0; wy < size; wy++ {
					row := p.Row(y + wy)
					for wx := 0; wx < size; wx++ {
						window = append(window, row[(x+wx)*ch+c])
					}
				}
				slices.Sort(window)
				out.Pix[out.Offset(x, y)+c] = window[len(window)/2]
			}
		}
	}
	return out, nil
}

// Kernel is a square convolution mask of odd size, indexed [row][column].
type Kernel [][]float64

func (k Kernel) validate() error {
	n := len(k)
	if err := raster.ValidateMask(n); err != nil {
		return err
	}
	for i, row := range k {
		if len(row) != n {
			return fmt.Errorf("%w: kernel row %d has %d entries, want %d", raster.ErrInvalidArgument, i, len(row), n)
		}
	}
	return nil
}

// Convolve correlates every channel of b with k over a replicated border
// and rounds the response into [0,255].
func Convolve(b *raster.Buffer, k Kernel) (*raster.Buffer, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	size := len(k)
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	out := b.Blank()
	ch := b.Channels
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			for c := 0; c < ch; c++ {
				acc := 0.0
				for wy := 0; wy < size; wy++ {
					row := p.Row(y + wy)
					for wx := 0; wx < size; wx++ {
						acc += k[wy][wx] * float64(row[(x+wx)*ch+c])
					}
				}
				out.Pix[out.Offset(x, y)+c] = raster.Clamp(acc)
			}
		}
	}
	return out, nil
}
