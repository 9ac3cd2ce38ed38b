package raster

import (
	"fmt"
	"math"
)

// Histogram counts the samples of channel c.
func (b *Buffer) Histogram(c int) [256]int {
	var hist [256]int
	for i := c; i < len(b.Pix); i += b.Channels {
		hist[b.Pix[i]]++
	}
	return hist
}

// Channel extracts channel c as a grayscale buffer.
func (b *Buffer) Channel(c int) *Buffer {
	if c < 0 || c >= b.Channels {
		panic(fmt.Sprintf("raster: channel %d outside %d channels", c, b.Channels))
	}
	if b.Channels == Gray {
		return b.Copy()
	}
	out := NewGray(b.Width, b.Height)
	for i, j := c, 0; i < len(b.Pix); i, j = i+b.Channels, j+1 {
		out.Pix[j] = b.Pix[i]
	}
	return out
}

// Merge interleaves grayscale planes of equal size into one buffer.
func Merge(planes ...*Buffer) (*Buffer, error) {
	if len(planes) != Gray && len(planes) != Color {
		return nil, fmt.Errorf("%w: cannot merge %d planes", ErrInvalidArgument, len(planes))
	}
	w, h := planes[0].Width, planes[0].Height
	out, err := New(w, h, len(planes))
	if err != nil {
		return nil, err
	}
	for c, p := range planes {
		if p.Width != w || p.Height != h || p.Channels != Gray {
			return nil, fmt.Errorf("%w: plane %d is %dx%dx%d, want %dx%dx1", ErrInvalidArgument, c, p.Width, p.Height, p.Channels, w, h)
		}
		for i, v := range p.Pix {
			out.Pix[i*len(planes)+c] = v
		}
	}
	return out, nil
}

// MapChannels runs a single-channel operation on every channel of b and
// merges the results. Grayscale buffers are passed through unchanged in shape.
func MapChannels(b *Buffer, fn func(*Buffer) (*Buffer, error)) (*Buffer, error) {
	if b.Channels == Gray {
		return fn(b)
	}
	planes := make([]*Buffer, b.Channels)
	for c := range planes {
		p, err := fn(b.Channel(c))
		if err != nil {
			return nil, err
		}
		planes[c] = p
	}
	return Merge(planes...)
}

// Grayscale converts a B,G,R buffer to luminance with the BT.601 weights.
// A grayscale input is copied.
func (b *Buffer) Grayscale() *Buffer {
	if b.Channels == Gray {
		return b.Copy()
	}
	out := NewGray(b.Width, b.Height)
	for i, j := 0, 0; i < len(b.Pix); i, j = i+Color, j+1 {
		l := 0.114*float64(b.Pix[i]) + 0.587*float64(b.Pix[i+1]) + 0.299*float64(b.Pix[i+2])
		out.Pix[j] = Clamp(l)
	}
	return out
}

// Clamp rounds v to the nearest integer and saturates it to [0,255]. NaN
// maps to 0.
func Clamp(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ClampInt saturates v to [0,255].
func ClampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
