package raster

import "fmt"

// ReplicatePad grows b by thickness pixels in each dimension: thickness/2
// rows and columns are added above and to the left, the remainder below and
// to the right. New samples repeat the nearest edge pixel, so the corner
// regions repeat the corner pixels. The interior equals b exactly.
func ReplicatePad(b *Buffer, thickness int) (*Buffer, error) {
	if thickness < 0 {
		return nil, fmt.Errorf("%w: border thickness %d", ErrInvalidArgument, thickness)
	}
	before := thickness / 2
	out, err := New(b.Width+thickness, b.Height+thickness, b.Channels)
	if err != nil {
		return nil, err
	}
	ch := b.Channels
	for y := 0; y < out.Height; y++ {
		sy := clampIndex(y-before, b.Height)
		src := b.Row(sy)
		dst := out.Row(y)
		// left border, interior, right border
		for x := 0; x < before; x++ {
			copy(dst[x*ch:(x+1)*ch], src[:ch])
		}
		copy(dst[before*ch:], src)
		last := src[(b.Width-1)*ch:]
		for x := before + b.Width; x < out.Width; x++ {
			copy(dst[x*ch:(x+1)*ch], last)
		}
	}
	return out, nil
}

// PadForMask pads b for a square window of the given odd size so that the
// window centred on any pixel of b lies inside the padded buffer.
func PadForMask(b *Buffer, size int) (*Buffer, error) {
	if err := ValidateMask(size); err != nil {
		return nil, err
	}
	return ReplicatePad(b, size-1)
}

// Crop extracts the rectangle [left,right) x [top,bottom) into a new buffer.
func Crop(b *Buffer, left, top, right, bottom int) (*Buffer, error) {
	if left < 0 || top < 0 || right > b.Width || bottom > b.Height || left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: crop [%d,%d)x[%d,%d) of %dx%d image", ErrInvalidArgument, left, right, top, bottom, b.Width, b.Height)
	}
	out, err := New(right-left, bottom-top, b.Channels)
	if err != nil {
		return nil, err
	}
	for y := top; y < bottom; y++ {
		copy(out.Row(y-top), b.Pix[b.Offset(left, y):b.Offset(right, y)])
	}
	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
