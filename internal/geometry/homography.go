package geometry

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"pixel-processing/internal/raster"
)

// Point is a source image coordinate.
type Point struct {
	X, Y float64
}

// Homography is a row-major 3x3 projective matrix acting on (x, y, 1).
type Homography f64.Mat3

const collinearEps = 1e-9

// Project maps (x, y) through h. ok is false when the point lands on the
// line at infinity.
func (h Homography) Project(x, y float64) (px, py float64, ok bool) {
	w := h[6]*x + h[7]*y + h[8]
	if math.Abs(w) < 1e-12 {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w, true
}

// Mul returns the product h*o, the mapping that applies o first.
func (h Homography) Mul(o Homography) Homography {
	var r Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i*3+j] += h[i*3+k] * o[k*3+j]
			}
		}
	}
	return r
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// SquareToQuad solves the eight-parameter homography taking the unit square
// corners (0,0), (1,0), (1,1), (0,1) to q[0..3]. Quads with three collinear
// or two coincident corners have no such mapping.
func SquareToQuad(q [4]Point) (Homography, error) {
	for i := 0; i < 4; i++ {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		if math.Abs(cross(a, b, c)) < collinearEps {
			return Homography{}, fmt.Errorf("%w: corners %v %v %v are collinear", raster.ErrDegenerateGeometry, a, b, c)
		}
	}

	dx1, dy1 := q[1].X-q[2].X, q[1].Y-q[2].Y
	dx2, dy2 := q[3].X-q[2].X, q[3].Y-q[2].Y
	dx3 := q[0].X - q[1].X + q[2].X - q[3].X
	dy3 := q[0].Y - q[1].Y + q[2].Y - q[3].Y

	var g, h float64
	if math.Abs(dx3) > collinearEps || math.Abs(dy3) > collinearEps {
		den := dx1*dy2 - dx2*dy1
		if math.Abs(den) < collinearEps {
			return Homography{}, fmt.Errorf("%w: singular quad", raster.ErrDegenerateGeometry)
		}
		g = (dx3*dy2 - dx2*dy3) / den
		h = (dx1*dy3 - dx3*dy1) / den
	}
	return Homography{
		q[1].X - q[0].X + g*q[1].X, q[3].X - q[0].X + h*q[3].X, q[0].X,
		q[1].Y - q[0].Y + g*q[1].Y, q[3].Y - q[0].Y + h*q[3].Y, q[0].Y,
		g, h, 1,
	}, nil
}

// Projective rectifies the quadrilateral with corners src (top-left,
// top-right, bottom-right, bottom-left) onto a width x height image.
func Projective(b *raster.Buffer, src [4]Point, width, height int, s Sampler) (*raster.Buffer, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: projective output must be at least 2x2, got %dx%d", raster.ErrInvalidArgument, width, height)
	}
	quad, err := SquareToQuad(src)
	if err != nil {
		return nil, err
	}
	toUnit := Homography{
		1 / float64(width-1), 0, 0,
		0, 1 / float64(height-1), 0,
		0, 0, 1,
	}
	m := quad.Mul(toUnit)
	return Warp(b, width, height, m.Project, s)
}
