package morphology

import (
	"fmt"

	"pixel-processing/internal/raster"
)

// unionFind is a disjoint-set forest over provisional labels with path
// halving. Label 0 is the background and never merged.
type unionFind []int32

func (u *unionFind) add() int32 {
	l := int32(len(*u))
	*u = append(*u, l)
	return l
}

func (u unionFind) find(l int32) int32 {
	for u[l] != l {
		u[l] = u[u[l]]
		l = u[l]
	}
	return l
}

func (u unionFind) union(a, b int32) {
	ra, rb := u.find(a), u.find(b)
	switch {
	case ra < rb:
		u[rb] = ra
	case rb < ra:
		u[ra] = rb
	}
}

// Label assigns every 255 pixel of a binary image the number of its
// connected region, 1..count, numbered in raster order of each region's
// first pixel; background pixels get 0. connectivity is 4 or 8.
func Label(b *raster.Buffer, connectivity int) ([]int32, int, error) {
	if err := raster.RequireBinary(b, "connected components"); err != nil {
		return nil, 0, err
	}
	if connectivity != 4 && connectivity != 8 {
		return nil, 0, fmt.Errorf("%w: connectivity must be 4 or 8, got %d", raster.ErrInvalidArgument, connectivity)
	}
	w, h := b.Width, b.Height
	labels := make([]int32, w*h)
	uf := unionFind{0}

	// already visited neighbours: W, NW, N, NE
	prior := [][2]int{{-1, 0}, {0, -1}}
	if connectivity == 8 {
		prior = [][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if b.Pix[y*b.Stride+x] == 0 {
				continue
			}
			var l int32
			for _, d := range prior {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w {
					continue
				}
				n := labels[ny*w+nx]
				if n == 0 {
					continue
				}
				if l == 0 {
					l = n
				} else if n != l {
					uf.union(l, n)
				}
			}
			if l == 0 {
				l = uf.add()
			}
			labels[y*w+x] = l
		}
	}

	// second pass: resolve roots and renumber densely
	final := make([]int32, len(uf))
	count := 0
	for i, l := range labels {
		if l == 0 {
			continue
		}
		r := uf.find(l)
		if final[r] == 0 {
			count++
			final[r] = int32(count)
		}
		labels[i] = final[r]
	}
	return labels, count, nil
}

// LabelColor returns the B,G,R color of component l. Distinct labels below
// 2^24 get distinct colors and only label 0 is black.
func LabelColor(l int32) [3]uint8 {
	// multiplying by an odd constant is a bijection modulo 2^24
	v := (uint32(l) * 2654435761) & 0xffffff
	return [3]uint8{uint8(v), uint8(v >> 8), uint8(v >> 16)}
}

// ConnectedComponents labels the foreground regions of a binary image and
// renders each with its own color on a black 3-channel image. It also
// returns the number of regions.
func ConnectedComponents(b *raster.Buffer, connectivity int) (*raster.Buffer, int, error) {
	labels, count, err := Label(b, connectivity)
	if err != nil {
		return nil, 0, err
	}
	out := raster.NewColor(b.Width, b.Height)
	for i, l := range labels {
		if l == 0 {
			continue
		}
		c := LabelColor(l)
		copy(out.Pix[i*raster.Color:], c[:])
	}
	return out, count, nil
}
