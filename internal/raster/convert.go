package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// FromImage converts any image.Image into a buffer. *image.Gray sources
// become single-channel buffers; everything else is flattened to B,G,R.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if g, ok := img.(*image.Gray); ok {
		out := NewGray(w, h)
		for y := 0; y < h; y++ {
			start := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Row(y), g.Pix[start:start+w])
		}
		return out
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	out := NewColor(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := rgba.PixOffset(x, y)
			di := out.Offset(x, y)
			out.Pix[di] = rgba.Pix[si+2]
			out.Pix[di+1] = rgba.Pix[si+1]
			out.Pix[di+2] = rgba.Pix[si]
		}
	}
	return out
}

// ToImage returns an *image.Gray for single-channel buffers and an opaque
// *image.RGBA otherwise.
func (b *Buffer) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == Gray {
		g := image.NewGray(rect)
		for y := 0; y < b.Height; y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+b.Width], b.Row(y))
		}
		return g
	}

	rgba := image.NewRGBA(rect)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			si := b.Offset(x, y)
			rgba.SetRGBA(x, y, color.RGBA{R: b.Pix[si+2], G: b.Pix[si+1], B: b.Pix[si], A: 255})
		}
	}
	return rgba
}
