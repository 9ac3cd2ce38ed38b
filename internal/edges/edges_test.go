package edges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/raster"
)

// verticalStep is dark on the left, value v from column x0 on.
func verticalStep(w, h, x0 int, v uint8) *raster.Buffer {
	b := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := x0; x < w; x++ {
			b.Set(x, y, 0, v)
		}
	}
	return b
}

func TestOperatorsOnVerticalStep(t *testing.T) {
	b := verticalStep(8, 6, 4, 20)
	cases := []struct {
		op   Operator
		want uint8
	}{
		{Sobel, 80},
		{Prewitt, 60},
	}
	for _, c := range cases {
		t.Run(c.op.String(), func(t *testing.T) {
			out, err := Magnitude(b, c.op)
			require.NoError(t, err)
			assert.Equal(t, c.want, out.At(3, 2, 0))
			assert.Equal(t, c.want, out.At(4, 2, 0))
			assert.Equal(t, uint8(0), out.At(1, 2, 0))
			assert.Equal(t, uint8(0), out.At(6, 2, 0))
			for x := 0; x < b.Width; x++ {
				assert.Equal(t, uint8(0), out.At(x, 0, 0), "top border")
				assert.Equal(t, uint8(0), out.At(x, b.Height-1, 0), "bottom border")
			}
		})
	}
}

func TestRobertsOnVerticalStep(t *testing.T) {
	out, err := RobertsEdges(verticalStep(6, 4, 3, 100))
	require.NoError(t, err)
	// |0-100| on both diagonals at the step: sqrt(2)*100
	assert.Equal(t, uint8(141), out.At(2, 1, 0))
	assert.Equal(t, uint8(0), out.At(0, 1, 0))
	assert.Equal(t, uint8(0), out.At(3, 1, 0))
}

func TestMagnitudeSaturates(t *testing.T) {
	out, err := SobelEdges(verticalStep(5, 5, 2, 255))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), out.At(2, 2, 0))
}

func TestGradientRequiresGray(t *testing.T) {
	_, err := PrewittEdges(raster.NewColor(4, 4))
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestDirection(t *testing.T) {
	g, err := ComputeGradient(verticalStep(8, 6, 4, 50), Sobel)
	require.NoError(t, err)

	d4, err := Direction(g, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(63), d4.At(4, 2, 0), "horizontal gradient is bin 0")
	assert.Equal(t, uint8(0), d4.At(1, 2, 0))

	horizontal := raster.NewGray(6, 8)
	for y := 4; y < 8; y++ {
		for x := 0; x < 6; x++ {
			horizontal.Set(x, y, 0, 50)
		}
	}
	g, err = ComputeGradient(horizontal, Sobel)
	require.NoError(t, err)
	d8, err := Direction(g, 8)
	require.NoError(t, err)
	assert.Equal(t, uint8(3*255/8), d8.At(2, 4, 0), "downward gradient is 90 degrees")

	_, err = Direction(g, 6)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestNonMaxSuppressionThinsRamp(t *testing.T) {
	// a ramp whose slope peaks at column 5
	b := raster.NewGray(11, 5)
	values := []uint8{0, 0, 0, 10, 40, 100, 160, 190, 200, 200, 200}
	for y := 0; y < 5; y++ {
		for x, v := range values {
			b.Set(x, y, 0, v)
		}
	}
	g, err := ComputeGradient(b, Sobel)
	require.NoError(t, err)
	thin := NonMaxSuppression(g)
	for x := 1; x < 10; x++ {
		if x == 5 {
			assert.NotZero(t, thin.At(x, 2, 0))
		} else {
			assert.Zero(t, thin.At(x, 2, 0), "column %d", x)
		}
	}
}

func TestHysteresisPropagatesTransitively(t *testing.T) {
	b := raster.NewGray(12, 3)
	// strong seed at (0,1) followed by a long weak chain, a gap, and an
	// isolated weak run that must be dropped
	b.Set(0, 1, 0, 200)
	for x := 1; x < 7; x++ {
		b.Set(x, 1, 0, 60)
	}
	for x := 9; x < 12; x++ {
		b.Set(x, 1, 0, 60)
	}
	out, err := Hysteresis(b, 50, 150)
	require.NoError(t, err)
	for x := 0; x < 12; x++ {
		want := uint8(0)
		if x < 7 {
			want = 255
		}
		assert.Equal(t, want, out.At(x, 1, 0), "column %d", x)
	}

	_, err = Hysteresis(b, 200, 100)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestCannySquare(t *testing.T) {
	b := raster.NewGray(16, 16)
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			b.Set(x, y, 0, 200)
		}
	}
	edges, err := Canny(b, 50, 150)
	require.NoError(t, err)
	assert.True(t, edges.IsBinary())
	assert.Equal(t, uint8(255), edges.At(4, 8, 0), "left side of the square")
	assert.Equal(t, uint8(0), edges.At(8, 8, 0), "flat interior")
	assert.Equal(t, uint8(0), edges.At(0, 0, 0))
}
