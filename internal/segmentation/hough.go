// Package segmentation finds straight lines in binary edge images with the
// Hough transform over the normal parametrisation rho = x*cos(theta) +
// y*sin(theta).
package segmentation

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"pixel-processing/internal/raster"
)

// AngleRange selects the theta interval of the accumulator, sampled at one
// degree.
type AngleRange int

const (
	// TwoQuadrants covers theta in [0,180) degrees.
	TwoQuadrants AngleRange = iota
	// ThreeQuadrants covers theta in [-90,180) degrees, so lines through the
	// top-left region appear with both signs of rho.
	ThreeQuadrants
)

func (r AngleRange) bounds() (first, count int, err error) {
	switch r {
	case TwoQuadrants:
		return 0, 180, nil
	case ThreeQuadrants:
		return -90, 270, nil
	}
	return 0, 0, fmt.Errorf("%w: unknown angle range %d", raster.ErrInvalidArgument, int(r))
}

func (r AngleRange) String() string {
	switch r {
	case TwoQuadrants:
		return "two_quadrants"
	case ThreeQuadrants:
		return "three_quadrants"
	}
	return fmt.Sprintf("range(%d)", int(r))
}

// Line is one accumulator cell: rho in pixels, theta in degrees.
type Line struct {
	Rho   int
	Theta int
	Votes int
}

// Accumulator counts votes per (rho, theta) cell. Rho spans [-Diag, Diag]
// in one pixel bins.
type Accumulator struct {
	Width, Height int
	Range         AngleRange
	Diag          int

	firstTheta int
	thetas     int
	cos, sin   []float64
	votes      []int
}

// NewAccumulator sizes an empty accumulator for width x height images.
func NewAccumulator(width, height int, r AngleRange) (*Accumulator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: accumulator for %dx%d image", raster.ErrInvalidArgument, width, height)
	}
	first, count, err := r.bounds()
	if err != nil {
		return nil, err
	}
	a := &Accumulator{
		Width:      width,
		Height:     height,
		Range:      r,
		Diag:       int(math.Ceil(math.Hypot(float64(width-1), float64(height-1)))),
		firstTheta: first,
		thetas:     count,
		cos:        make([]float64, count),
		sin:        make([]float64, count),
	}
	for i := range a.cos {
		a.sin[i], a.cos[i] = math.Sincos(float64(first+i) * math.Pi / 180)
	}
	a.votes = make([]int, (2*a.Diag+1)*count)
	return a, nil
}

// Rhos is the number of rho bins.
func (a *Accumulator) Rhos() int { return 2*a.Diag + 1 }

// Thetas is the number of theta bins.
func (a *Accumulator) Thetas() int { return a.thetas }

// Votes returns the count of the cell for rho and theta (degrees), or 0
// outside the accumulator.
func (a *Accumulator) Votes(rho, theta int) int {
	ri, ti := rho+a.Diag, theta-a.firstTheta
	if ri < 0 || ri >= a.Rhos() || ti < 0 || ti >= a.thetas {
		return 0
	}
	return a.votes[ri*a.thetas+ti]
}

func (a *Accumulator) line(i int) Line {
	return Line{
		Rho:   i/a.thetas - a.Diag,
		Theta: i%a.thetas + a.firstTheta,
		Votes: a.votes[i],
	}
}

// Vote adds, for every 255 pixel of the binary image b, one vote to each
// theta bin at the rho bin nearest x*cos(theta) + y*sin(theta).
func (a *Accumulator) Vote(b *raster.Buffer) error {
	if err := raster.RequireBinary(b, "hough transform"); err != nil {
		return err
	}
	if b.Width != a.Width || b.Height != a.Height {
		return fmt.Errorf("%w: %dx%d image for a %dx%d accumulator", raster.ErrInvalidArgument, b.Width, b.Height, a.Width, a.Height)
	}
	for y := 0; y < b.Height; y++ {
		row := b.Row(y)
		for x, v := range row {
			if v == 0 {
				continue
			}
			fx, fy := float64(x), float64(y)
			for t := 0; t < a.thetas; t++ {
				rho := int(math.Round(fx*a.cos[t] + fy*a.sin[t]))
				a.votes[(rho+a.Diag)*a.thetas+t]++
			}
		}
	}
	return nil
}

// Peak returns the cell with the most votes, the first in rho-major order
// on ties. ok is false when nothing voted.
func (a *Accumulator) Peak() (Line, bool) {
	best := 0
	for i, v := range a.votes {
		if v > a.votes[best] {
			best = i
		}
	}
	if a.votes[best] == 0 {
		return Line{}, false
	}
	return a.line(best), true
}

// Peaks returns up to limit cells with at least minVotes votes that are
// local maxima of their 3x3 neighbourhood, strongest first. Of a plateau of
// equal neighbours only the first in rho-major order is reported. limit <= 0
// means no limit.
func (a *Accumulator) Peaks(minVotes, limit int) []Line {
	minVotes = max(minVotes, 1)
	rhos := a.Rhos()
	var peaks []Line
	for ri := 0; ri < rhos; ri++ {
		for ti := 0; ti < a.thetas; ti++ {
			i := ri*a.thetas + ti
			v := a.votes[i]
			if v < minVotes || !a.isLocalMax(ri, ti, v) {
				continue
			}
			peaks = append(peaks, a.line(i))
		}
	}
	slices.SortStableFunc(peaks, func(p, q Line) int { return cmp.Compare(q.Votes, p.Votes) })
	if limit > 0 && len(peaks) > limit {
		peaks = peaks[:limit]
	}
	return peaks
}

// isLocalMax compares cell (ri, ti) with its 8 neighbours. Over [0,180)
// theta wraps around: (rho, 180) is the cell (-rho, 0).
func (a *Accumulator) isLocalMax(ri, ti, v int) bool {
	i := ri*a.thetas + ti
	wrap := a.firstTheta == 0 && a.thetas == 180
	for dr := -1; dr <= 1; dr++ {
		for dt := -1; dt <= 1; dt++ {
			if dr == 0 && dt == 0 {
				continue
			}
			nr, nt := ri+dr, ti+dt
			if wrap && (nt < 0 || nt >= a.thetas) {
				nt = (nt + a.thetas) % a.thetas
				nr = 2*a.Diag - nr
			}
			if nr < 0 || nr >= a.Rhos() || nt < 0 || nt >= a.thetas {
				continue
			}
			j := nr*a.thetas + nt
			n := a.votes[j]
			// of equal neighbours only the first in scan order survives
			if n > v || (n == v && j < i) {
				return false
			}
		}
	}
	return true
}

// HoughLines votes b into a fresh accumulator and returns its peaks.
func HoughLines(b *raster.Buffer, r AngleRange, minVotes, maxLines int) ([]Line, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: hough transform: nil buffer", raster.ErrInvalidArgument)
	}
	a, err := NewAccumulator(b.Width, b.Height, r)
	if err != nil {
		return nil, err
	}
	if err := a.Vote(b); err != nil {
		return nil, err
	}
	return a.Peaks(minVotes, maxLines), nil
}
