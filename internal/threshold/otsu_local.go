package threshold

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// LocalOtsu binarises b against Otsu thresholds computed over a grid of
// window x window tiles. Tiles start every window*(1-overlap) pixels, so
// consecutive tiles share the given fraction of their width. A tile holding
// a single intensity takes the global Otsu threshold instead.
//
// With interpolate set, a pixel's threshold is bilinearly interpolated
// between the four nearest tile thresholds; otherwise the pixel uses the
// last tile that starts at or before it. Pixels >= threshold become 255.
func LocalOtsu(b *raster.Buffer, window int, overlap float64, interpolate bool) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "local otsu threshold"); err != nil {
		return nil, err
	}
	if window < 2 {
		return nil, fmt.Errorf("%w: window size %d must be at least 2", raster.ErrInvalidArgument, window)
	}
	if overlap < 0 || overlap >= 1 || math.IsNaN(overlap) {
		return nil, fmt.Errorf("%w: overlap %v outside [0,1)", raster.ErrInvalidArgument, overlap)
	}
	step := max(1, int(float64(window)*(1-overlap)))

	global, err := Otsu(b)
	if err != nil {
		return nil, err
	}
	cols, rows := (b.Width-1)/step+1, (b.Height-1)/step+1
	grid := make([]float64, cols*rows)
	for gy := 0; gy < rows; gy++ {
		for gx := 0; gx < cols; gx++ {
			t, ok := otsuLevel(tileHistogram(b, gx*step, gy*step, window))
			if !ok {
				t = global
			}
			grid[gy*cols+gx] = float64(t)
		}
	}

	at := func(x, y int) float64 {
		return grid[(y/step)*cols+x/step]
	}
	if interpolate {
		at = func(x, y int) float64 {
			fx, fy := float64(x)/float64(step), float64(y)/float64(step)
			x0, y0 := int(fx), int(fy)
			x1, y1 := min(x0+1, cols-1), min(y0+1, rows-1)
			ax, ay := fx-float64(x0), fy-float64(y0)
			top := grid[y0*cols+x0]*(1-ax) + grid[y0*cols+x1]*ax
			bottom := grid[y1*cols+x0]*(1-ax) + grid[y1*cols+x1]*ax
			return top*(1-ay) + bottom*ay
		}
	}

	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		src, dst := b.Row(y), out.Row(y)
		for x := 0; x < b.Width; x++ {
			if float64(src[x]) >= at(x, y) {
				dst[x] = 255
			}
		}
	}
	return out, nil
}

// tileHistogram counts the pixels of the window x window tile at (x0,y0),
// clipped to the image.
func tileHistogram(b *raster.Buffer, x0, y0, window int) [256]int {
	var hist [256]int
	for y := y0; y < min(y0+window, b.Height); y++ {
		row := b.Row(y)
		for x := x0; x < min(x0+window, b.Width); x++ {
			hist[row[x]]++
		}
	}
	return hist
}
