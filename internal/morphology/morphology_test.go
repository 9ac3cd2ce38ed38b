package morphology

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/pointwise"
	"pixel-processing/internal/raster"
)

func randomBinary(w, h int, seed int64) *raster.Buffer {
	r := rand.New(rand.NewSource(seed))
	b := raster.NewGray(w, h)
	for i := range b.Pix {
		if r.Intn(3) == 0 {
			b.Pix[i] = 255
		}
	}
	return b
}

func fromRows(rows ...string) *raster.Buffer {
	b := raster.NewGray(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				b.Set(x, y, 0, 255)
			}
		}
	}
	return b
}

func TestDilateSinglePixel(t *testing.T) {
	b := raster.NewGray(5, 5)
	b.Set(2, 2, 0, 255)
	out, err := Dilate(b, 3)
	require.NoError(t, err)
	want := fromRows(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	)
	assert.True(t, want.Equal(out))
}

func TestErosionDilationDuality(t *testing.T) {
	inv := pointwise.Invert()
	for _, size := range []int{1, 3, 5, 7} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			b := randomBinary(17, 13, int64(size))
			eroded, err := Erode(b, size)
			require.NoError(t, err)
			dilated, err := Dilate(pointwise.Apply(b, inv), size)
			require.NoError(t, err)
			assert.True(t, eroded.Equal(pointwise.Apply(dilated, inv)))
		})
	}
}

func TestBinaryOpsRejectGrayInput(t *testing.T) {
	b := raster.NewGray(4, 4)
	b.Set(1, 1, 0, 100)
	for _, op := range []Op{OpDilate, OpErode, OpOpen, OpClose} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := Apply(b, op, 3)
			assert.ErrorIs(t, err, raster.ErrInvalidState)
		})
	}
	_, err := Dilate(randomBinary(4, 4, 1), 2)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = Dilate(raster.NewColor(4, 4), 3)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestGrayRankMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	b := raster.NewColor(9, 7)
	for i := range b.Pix {
		b.Pix[i] = uint8(r.Intn(256))
	}
	dilated, err := GrayDilate(b, 5)
	require.NoError(t, err)
	eroded, err := GrayErode(b, 5)
	require.NoError(t, err)

	p, err := raster.PadForMask(b, 5)
	require.NoError(t, err)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			for c := 0; c < raster.Color; c++ {
				lo, hi := uint8(255), uint8(0)
				for wy := 0; wy < 5; wy++ {
					for wx := 0; wx < 5; wx++ {
						v := p.At(x+wx, y+wy, c)
						lo, hi = min(lo, v), max(hi, v)
					}
				}
				require.Equal(t, hi, dilated.At(x, y, c))
				require.Equal(t, lo, eroded.At(x, y, c))
			}
		}
	}
}

func TestOpenAndClose(t *testing.T) {
	speck := fromRows(
		"#......",
		".......",
		"..###..",
		"..###..",
		"..###..",
		".......",
	)
	opened, err := Open(speck, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), opened.At(0, 0, 0), "isolated pixel removed")
	assert.Equal(t, uint8(255), opened.At(3, 3, 0), "square survives")

	holed := fromRows(
		"#####",
		"#####",
		"##.##",
		"#####",
		"#####",
	)
	closed, err := Close(holed, 3)
	require.NoError(t, err)
	for _, v := range closed.Pix {
		assert.Equal(t, uint8(255), v)
	}
}

func TestGradientBoundaryTopHat(t *testing.T) {
	square := fromRows(
		".........",
		".........",
		"..#####..",
		"..#####..",
		"..#####..",
		"..#####..",
		"..#####..",
		".........",
		".........",
	)
	boundary, err := Boundary(square, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), boundary.At(2, 2, 0))
	assert.Equal(t, uint8(255), boundary.At(6, 4, 0))
	assert.Equal(t, uint8(0), boundary.At(4, 4, 0), "interior")
	assert.Equal(t, uint8(0), boundary.At(1, 4, 0), "outside")

	grad, err := Gradient(square, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), grad.At(1, 4, 0), "outer ring")
	assert.Equal(t, uint8(255), grad.At(2, 4, 0), "inner ring")
	assert.Equal(t, uint8(0), grad.At(4, 4, 0))

	dark := raster.NewGray(7, 7)
	for i := range dark.Pix {
		dark.Pix[i] = 30
	}
	dark.Set(3, 3, 0, 130)
	hat, err := TopHat(dark, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), hat.At(3, 3, 0))
	assert.Equal(t, uint8(0), hat.At(0, 0, 0))
}

func TestSmoothFlatImage(t *testing.T) {
	b := raster.NewColor(6, 6)
	for i := range b.Pix {
		b.Pix[i] = 90
	}
	out, err := Smooth(b, 3)
	require.NoError(t, err)
	assert.True(t, b.Equal(out))
	assert.NotSame(t, b, out)
}

func TestConnectedComponents(t *testing.T) {
	diagonal := fromRows(
		"##...",
		"##...",
		"..##.",
		"..##.",
		".....",
	)
	_, n4, err := ConnectedComponents(diagonal, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n4)
	_, n8, err := ConnectedComponents(diagonal, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, n8)

	// the arms of the U meet only on the bottom row, so provisional labels
	// must be merged
	u := fromRows(
		"#...#..#",
		"#...#...",
		"#####...",
	)
	labels, n, err := Label(u, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(1), labels[0])
	assert.Equal(t, int32(1), labels[4])
	assert.Equal(t, int32(2), labels[7])

	img, _, err := ConnectedComponents(u, 4)
	require.NoError(t, err)
	assert.Equal(t, raster.Color, img.Channels)
	assert.Equal(t, []uint8{0, 0, 0}, img.Pix[img.Offset(1, 0):img.Offset(1, 0)+3])
	c1 := img.Pix[img.Offset(0, 0) : img.Offset(0, 0)+3]
	c2 := img.Pix[img.Offset(7, 0) : img.Offset(7, 0)+3]
	assert.NotEqual(t, c1, c2)
	assert.Equal(t, c1, img.Pix[img.Offset(4, 0):img.Offset(4, 0)+3])

	_, _, err = ConnectedComponents(u, 6)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	gray := raster.NewGray(3, 3)
	gray.Set(1, 1, 0, 7)
	_, _, err = ConnectedComponents(gray, 8)
	assert.ErrorIs(t, err, raster.ErrInvalidState)
}

func TestLabelColorsAreDistinct(t *testing.T) {
	seen := map[[3]uint8]int32{{0, 0, 0}: 0}
	for l := int32(1); l < 5000; l++ {
		c := LabelColor(l)
		prev, dup := seen[c]
		require.False(t, dup, "labels %d and %d share a color", prev, l)
		seen[c] = l
	}
}
