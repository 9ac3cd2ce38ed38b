// Package geometry warps images by inverse mapping: every destination
// pixel is traced back to a source coordinate, which a Sampler then reads.
// Destination pixels whose source falls outside the image are background 0.
package geometry

import (
	"fmt"
	"math"
	"strings"

	"pixel-processing/internal/raster"
)

// Sampler selects how a fractional source coordinate is read.
type Sampler int

const (
	Nearest Sampler = iota
	Bilinear
	Lanczos
)

// LanczosLobes is the support radius a of the Lanczos kernel.
const LanczosLobes = 3

func (s Sampler) String() string {
	switch s {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Lanczos:
		return "lanczos"
	}
	return fmt.Sprintf("sampler(%d)", int(s))
}

// ParseSampler accepts the names returned by String.
func ParseSampler(name string) (Sampler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest", "":
		return Nearest, nil
	case "bilinear", "linear":
		return Bilinear, nil
	case "lanczos", "lanczos3":
		return Lanczos, nil
	}
	return 0, fmt.Errorf("%w: unknown sampler %q", raster.ErrInvalidArgument, name)
}

func (s Sampler) validate() error {
	if s < Nearest || s > Lanczos {
		return fmt.Errorf("%w: unknown sampler %d", raster.ErrInvalidArgument, int(s))
	}
	return nil
}

// inside reports whether (x, y) rounds to a pixel of b.
func inside(b *raster.Buffer, x, y float64) bool {
	return x >= -0.5 && y >= -0.5 && x < float64(b.Width)-0.5 && y < float64(b.Height)-0.5
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// sample writes the channels of b at (x, y) into dst and reports whether
// the coordinate lies inside b. Pixel centres sit on integer coordinates.
func (s Sampler) sample(b *raster.Buffer, x, y float64, dst []uint8) bool {
	if !inside(b, x, y) {
		return false
	}
	ch := b.Channels
	switch s {
	case Bilinear:
		x0, y0 := math.Floor(x), math.Floor(y)
		fx, fy := x-x0, y-y0
		ix0, iy0 := clampIdx(int(x0), b.Width), clampIdx(int(y0), b.Height)
		ix1, iy1 := clampIdx(int(x0)+1, b.Width), clampIdx(int(y0)+1, b.Height)
		o00, o10 := b.Offset(ix0, iy0), b.Offset(ix1, iy0)
		o01, o11 := b.Offset(ix0, iy1), b.Offset(ix1, iy1)
		for c := 0; c < ch; c++ {
			top := float64(b.Pix[o00+c])*(1-fx) + float64(b.Pix[o10+c])*fx
			bottom := float64(b.Pix[o01+c])*(1-fx) + float64(b.Pix[o11+c])*fx
			dst[c] = raster.Clamp(top*(1-fy) + bottom*fy)
		}
	case Lanczos:
		lanczosSample(b, x, y, dst)
	default:
		o := b.Offset(clampIdx(int(math.Floor(x+0.5)), b.Width), clampIdx(int(math.Floor(y+0.5)), b.Height))
		copy(dst[:ch], b.Pix[o:o+ch])
	}
	return true
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

func lanczosKernel(x float64) float64 {
	if x <= -LanczosLobes || x >= LanczosLobes {
		return 0
	}
	return sinc(x) * sinc(x/LanczosLobes)
}

// lanczosSample evaluates the separable Lanczos-3 filter over the 6x6
// neighbourhood of (x, y), replicating edge pixels, and normalises the
// weights so flat regions stay flat.
func lanczosSample(b *raster.Buffer, x, y float64, dst []uint8) {
	const taps = 2 * LanczosLobes
	x0 := int(math.Floor(x)) - LanczosLobes + 1
	y0 := int(math.Floor(y)) - LanczosLobes + 1
	var wx, wy [taps]float64
	sumX, sumY := 0.0, 0.0
	for i := 0; i < taps; i++ {
		wx[i] = lanczosKernel(x - float64(x0+i))
		wy[i] = lanczosKernel(y - float64(y0+i))
		sumX += wx[i]
		sumY += wy[i]
	}
	norm := sumX * sumY

	var acc [raster.Color]float64
	for j := 0; j < taps; j++ {
		if wy[j] == 0 {
			continue
		}
		row := clampIdx(y0+j, b.Height)
		for i := 0; i < taps; i++ {
			w := wx[i] * wy[j]
			if w == 0 {
				continue
			}
			o := b.Offset(clampIdx(x0+i, b.Width), row)
			for c := 0; c < b.Channels; c++ {
				acc[c] += w * float64(b.Pix[o+c])
			}
		}
	}
	for c := 0; c < b.Channels; c++ {
		dst[c] = raster.Clamp(acc[c] / norm)
	}
}

// Mapping returns the source coordinate for destination pixel (x, y) and
// whether it exists.
type Mapping func(x, y float64) (sx, sy float64, ok bool)

// Warp builds a width x height image with b's channel count by inverse
// mapping every destination pixel through m.
func Warp(b *raster.Buffer, width, height int, m Mapping, s Sampler) (*raster.Buffer, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	out, err := raster.New(width, height, b.Channels)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		row := out.Row(y)
		for x := 0; x < width; x++ {
			sx, sy, ok := m(float64(x), float64(y))
			if !ok {
				continue
			}
			s.sample(b, sx, sy, row[x*b.Channels:(x+1)*b.Channels])
		}
	}
	return out, nil
}
