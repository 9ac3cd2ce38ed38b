package threshold

import (
	"pixel-processing/internal/filters"
	"pixel-processing/internal/raster"
)

// jointTable holds prefix sums over the 256x256 histogram of (gray, guide)
// pairs with a zero first row and column.
type jointTable struct {
	count, gray, guide [257 * 257]float64
}

func newJointTable(b, guide *raster.Buffer) *jointTable {
	var hist [256 * 256]float64
	for i, g := range b.Pix {
		hist[int(g)*256+int(guide.Pix[i])]++
	}
	jt := &jointTable{}
	for g := 0; g < 256; g++ {
		var n, sg, sf float64
		for f := 0; f < 256; f++ {
			h := hist[g*256+f]
			n += h
			sg += h * float64(g)
			sf += h * float64(f)
			i := (g+1)*257 + f + 1
			jt.count[i] = jt.count[g*257+f+1] + n
			jt.gray[i] = jt.gray[g*257+f+1] + sg
			jt.guide[i] = jt.guide[g*257+f+1] + sf
		}
	}
	return jt
}

// rect sums table t over gray levels [g0,g1) and guide levels [f0,f1).
func rect(t *[257 * 257]float64, g0, f0, g1, f1 int) float64 {
	return t[g1*257+f1] - t[g0*257+f1] - t[g1*257+f0] + t[g0*257+f0]
}

// Otsu2D thresholds b on the joint histogram of each pixel and its guided
// filter response (window radius, regularisation eps). It picks (s,t)
// maximising w0*w1*|mu0-mu1|^2 between the background class
// [0,s]x[0,t] and the foreground class [s+1,255]x[t+1,255], and marks a
// pixel 255 when its gray level exceeds s and its guide value exceeds t.
// When no split leaves both classes populated, the global Otsu threshold
// of b is used.
func Otsu2D(b *raster.Buffer, radius int, eps float64) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "2d otsu threshold"); err != nil {
		return nil, err
	}
	guide, err := filters.Guided(b, radius, eps)
	if err != nil {
		return nil, err
	}
	s, t, ok := jointSplit(newJointTable(b, guide))
	if !ok {
		level, err := Otsu(b)
		if err != nil {
			return nil, err
		}
		return Manual(b, level)
	}

	out := b.Blank()
	for i, g := range b.Pix {
		if int(g) > s && int(guide.Pix[i]) > t {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// jointSplit searches every (s,t) for the largest between-class distance.
// Ties keep the first split found.
func jointSplit(jt *jointTable) (int, int, bool) {
	best, bs, bt := 0.0, 0, 0
	found := false
	for s := 0; s < 255; s++ {
		for t := 0; t < 255; t++ {
			w0 := rect(&jt.count, 0, 0, s+1, t+1)
			w1 := rect(&jt.count, s+1, t+1, 256, 256)
			if w0 == 0 || w1 == 0 {
				continue
			}
			dg := rect(&jt.gray, 0, 0, s+1, t+1)/w0 - rect(&jt.gray, s+1, t+1, 256, 256)/w1
			df := rect(&jt.guide, 0, 0, s+1, t+1)/w0 - rect(&jt.guide, s+1, t+1, 256, 256)/w1
			v := w0 * w1 * (dg*dg + df*df)
			if !found || v > best {
				best, bs, bt, found = v, s, t, true
			}
		}
	}
	return bs, bt, found
}
