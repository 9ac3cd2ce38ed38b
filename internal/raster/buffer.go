// Package raster holds the 8-bit raster buffer shared by every algorithm
// package, together with the border padding and cropping helpers used by
// windowed operations.
package raster

import (
	"fmt"
)

const (
	// Gray is the channel count of a single-channel buffer.
	Gray = 1
	// Color is the channel count of a B,G,R buffer.
	Color = 3
)

// Buffer is a row-major 8-bit raster with one (gray) or three (B,G,R)
// interleaved channels. Sample (x, y, c) lives at Pix[y*Stride+x*Channels+c].
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Stride   int
	Pix      []uint8
}

// New allocates a zeroed buffer.
func New(width, height, channels int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if channels != Gray && channels != Color {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidArgument, channels)
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   width * channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// NewGray allocates a single-channel buffer. It panics on non-positive
// dimensions, like image.NewGray does on overflow.
func NewGray(width, height int) *Buffer {
	b, err := New(width, height, Gray)
	if err != nil {
		panic(err)
	}
	return b
}

// NewColor allocates a three-channel buffer. It panics on non-positive dimensions.
func NewColor(width, height int) *Buffer {
	b, err := New(width, height, Color)
	if err != nil {
		panic(err)
	}
	return b
}

// FromPix wraps a copy of pix as a buffer.
func FromPix(width, height, channels int, pix []uint8) (*Buffer, error) {
	b, err := New(width, height, channels)
	if err != nil {
		return nil, err
	}
	if len(pix) != len(b.Pix) {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidArgument, len(pix), len(b.Pix))
	}
	copy(b.Pix, pix)
	return b, nil
}

// Blank returns a zeroed buffer with the same shape as b.
func (b *Buffer) Blank() *Buffer {
	return &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Stride:   b.Stride,
		Pix:      make([]uint8, len(b.Pix)),
	}
}

// Copy returns a deep copy of b.
func (b *Buffer) Copy() *Buffer {
	c := b.Blank()
	copy(c.Pix, b.Pix)
	return c
}

// IsGray reports whether b has a single channel.
func (b *Buffer) IsGray() bool { return b.Channels == Gray }

// IsColor reports whether b has three channels.
func (b *Buffer) IsColor() bool { return b.Channels == Color }

// InBounds reports whether (x, y) addresses a pixel of b.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Offset returns the index of channel 0 of pixel (x, y) in Pix.
func (b *Buffer) Offset(x, y int) int {
	return y*b.Stride + x*b.Channels
}

func (b *Buffer) check(x, y, c int) {
	if !b.InBounds(x, y) || c < 0 || c >= b.Channels {
		panic(fmt.Sprintf("raster: access (%d,%d,%d) outside %dx%dx%d", x, y, c, b.Width, b.Height, b.Channels))
	}
}

// At returns sample c of pixel (x, y). It panics when the access is out of range.
func (b *Buffer) At(x, y, c int) uint8 {
	b.check(x, y, c)
	return b.Pix[b.Offset(x, y)+c]
}

// Set stores sample c of pixel (x, y). It panics when the access is out of range.
func (b *Buffer) Set(x, y, c int, v uint8) {
	b.check(x, y, c)
	b.Pix[b.Offset(x, y)+c] = v
}

// SetPixel stores all channels of pixel (x, y) from v, which must hold
// b.Channels values.
func (b *Buffer) SetPixel(x, y int, v ...uint8) {
	b.check(x, y, 0)
	copy(b.Pix[b.Offset(x, y):b.Offset(x, y)+b.Channels], v)
}

// Row returns the samples of row y without copying.
func (b *Buffer) Row(y int) []uint8 {
	return b.Pix[y*b.Stride : (y+1)*b.Stride]
}

// SameShape reports whether b and o have identical dimensions and channel counts.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height && b.Channels == o.Channels
}

// Equal reports whether b and o have the same shape and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if !b.SameShape(o) {
		return false
	}
	for i, v := range b.Pix {
		if o.Pix[i] != v {
			return false
		}
	}
	return true
}

// IsBinary reports whether every sample is 0 or 255.
func (b *Buffer) IsBinary() bool {
	for _, v := range b.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}

// RequireGray returns ErrInvalidArgument unless b is single-channel.
func RequireGray(b *Buffer, op string) error {
	if b == nil {
		return fmt.Errorf("%w: %s: nil buffer", ErrInvalidArgument, op)
	}
	if !b.IsGray() {
		return fmt.Errorf("%w: %s requires a grayscale image, got %d channels", ErrInvalidArgument, op, b.Channels)
	}
	return nil
}

// RequireBinary returns ErrInvalidState unless b is a grayscale 0/255 image.
func RequireBinary(b *Buffer, op string) error {
	if err := RequireGray(b, op); err != nil {
		return err
	}
	if !b.IsBinary() {
		return fmt.Errorf("%w: %s requires a binary image", ErrInvalidState, op)
	}
	return nil
}

// ValidateMask returns ErrInvalidArgument unless size is a positive odd integer.
func ValidateMask(size int) error {
	if size <= 0 || size%2 == 0 {
		return fmt.Errorf("%w: mask size %d must be positive and odd", ErrInvalidArgument, size)
	}
	return nil
}
