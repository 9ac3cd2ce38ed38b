package filters

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/raster"
)

func noise(t *testing.T, w, h, c int, seed int64) *raster.Buffer {
	t.Helper()
	b, err := raster.New(w, h, c)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(seed))
	for i := range b.Pix {
		b.Pix[i] = uint8(r.Intn(256))
	}
	return b
}

func TestMeanCenterScenario(t *testing.T) {
	b := raster.NewGray(3, 3)
	b.Set(1, 1, 0, 255)

	out, err := Mean(b, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(28), out.At(1, 1, 0)) // 255/9 = 28.3
}

func TestMeanOfConstantImage(t *testing.T) {
	b := raster.NewColor(5, 4)
	for i := range b.Pix {
		b.Pix[i] = 77
	}
	out, err := Mean(b, 5)
	require.NoError(t, err)
	assert.True(t, b.Equal(out))
}

func TestWindowedFiltersRejectBadMasks(t *testing.T) {
	b := raster.NewGray(4, 4)
	for _, size := range []int{0, -3, 2, 4} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			_, err := Mean(b, size)
			assert.ErrorIs(t, err, raster.ErrInvalidArgument)
			_, err = Median(b, size)
			assert.ErrorIs(t, err, raster.ErrInvalidArgument)
			_, err = FastMedian(b, size)
			assert.ErrorIs(t, err, raster.ErrInvalidArgument)
			_, err = VectorMedian(raster.NewColor(4, 4), size)
			assert.ErrorIs(t, err, raster.ErrInvalidArgument)
		})
	}
}

func TestMedianRemovesImpulse(t *testing.T) {
	b := raster.NewGray(5, 5)
	for i := range b.Pix {
		b.Pix[i] = 40
	}
	b.Set(2, 2, 0, 255)
	out, err := Median(b, 3)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Equal(t, uint8(40), v)
	}
}

func TestFastMedianMatchesMedian(t *testing.T) {
	shapes := []struct{ w, h, c int }{
		{1, 1, raster.Gray},
		{1, 6, raster.Gray},
		{7, 1, raster.Gray},
		{2, 3, raster.Gray},
		{13, 9, raster.Gray},
		{16, 17, raster.Gray},
		{11, 8, raster.Color},
	}
	for i, s := range shapes {
		for _, size := range []int{1, 3, 5, 7, 9} {
			t.Run(fmt.Sprintf("%dx%dx%d_k%d", s.w, s.h, s.c, size), func(t *testing.T) {
				b := noise(t, s.w, s.h, s.c, int64(i*100+size))
				slow, err := Median(b, size)
				require.NoError(t, err)
				fast, err := FastMedian(b, size)
				require.NoError(t, err)
				require.True(t, slow.Equal(fast), "fast median diverges from brute force")
			})
		}
	}
}

func TestFastMedianLowEntropy(t *testing.T) {
	b := noise(t, 20, 15, raster.Gray, 5)
	for i := range b.Pix {
		b.Pix[i] = b.Pix[i] % 3 * 100
	}
	slow, err := Median(b, 5)
	require.NoError(t, err)
	fast, err := FastMedian(b, 5)
	require.NoError(t, err)
	assert.True(t, slow.Equal(fast))
}

func TestVectorMedian(t *testing.T) {
	_, err := VectorMedian(raster.NewGray(3, 3), 3)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)

	b := raster.NewColor(3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			b.SetPixel(x, y, 10, 20, 30)
		}
	}
	b.SetPixel(1, 1, 250, 0, 250)
	out, err := VectorMedian(b, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 20, 30}, out.Pix[out.Offset(1, 1):out.Offset(1, 1)+3])
}

func TestVectorMedianOutputsWindowColors(t *testing.T) {
	b := noise(t, 6, 5, raster.Color, 9)
	out, err := VectorMedian(b, 3)
	require.NoError(t, err)

	p, err := raster.PadForMask(b, 3)
	require.NoError(t, err)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			o := out.Offset(x, y)
			found := false
			for wy := 0; wy < 3 && !found; wy++ {
				for wx := 0; wx < 3; wx++ {
					po := p.Offset(x+wx, y+wy)
					if p.Pix[po] == out.Pix[o] && p.Pix[po+1] == out.Pix[o+1] && p.Pix[po+2] == out.Pix[o+2] {
						found = true
						break
					}
				}
			}
			assert.True(t, found, "pixel (%d,%d) is not a window sample", x, y)
		}
	}
}

func TestGaussian(t *testing.T) {
	_, err := Gaussian(raster.NewGray(3, 3), 0)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)

	k, err := GaussianKernel1D(1)
	require.NoError(t, err)
	assert.Len(t, k, 7)
	sum := 0.0
	for _, w := range k {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	flat := raster.NewColor(6, 6)
	for i := range flat.Pix {
		flat.Pix[i] = 123
	}
	out, err := Gaussian(flat, 2)
	require.NoError(t, err)
	assert.True(t, flat.Equal(out))

	spike := raster.NewGray(9, 9)
	spike.Set(4, 4, 0, 255)
	out, err = Gaussian(spike, 1)
	require.NoError(t, err)
	assert.Less(t, out.At(4, 4, 0), uint8(255))
	assert.Greater(t, out.At(4, 4, 0), out.At(5, 4, 0))
	assert.Equal(t, out.At(3, 4, 0), out.At(5, 4, 0), "kernel must be symmetric")
}

func TestBilateral(t *testing.T) {
	_, err := BilateralGaussian(raster.NewColor(3, 3), 1, 10)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = BilateralGaussian(raster.NewGray(3, 3), 0, 10)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = BilateralGaussian(raster.NewGray(3, 3), 1, -1)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)

	assert.Equal(t, 5, BilateralMaskSize(1))
	assert.Equal(t, 3, BilateralMaskSize(0.5))
	assert.Equal(t, 7, BilateralMaskSize(1.5))

	// a hard step survives a small range sigma
	step := raster.NewGray(10, 6)
	for y := 0; y < 6; y++ {
		for x := 5; x < 10; x++ {
			step.Set(x, y, 0, 200)
		}
	}
	out, err := BilateralGaussian(step, 2, 5)
	require.NoError(t, err)
	assert.True(t, step.Equal(out))
}

func TestConvolve(t *testing.T) {
	b := noise(t, 5, 5, raster.Color, 3)
	id := Kernel{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	out, err := Convolve(b, id)
	require.NoError(t, err)
	assert.True(t, b.Equal(out))

	_, err = Convolve(b, Kernel{{1, 1}, {1, 1}})
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = Convolve(b, Kernel{{1, 1, 1}, {1, 1}, {1, 1, 1}})
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

// step is a 32x16 image, 40 left of column 16 and 200 from it on.
func step() *raster.Buffer {
	b := raster.NewGray(32, 16)
	for y := 0; y < 16; y++ {
		for x := 16; x < 32; x++ {
			b.Set(x, y, 0, 200)
		}
		for x := 0; x < 16; x++ {
			b.Set(x, y, 0, 40)
		}
	}
	return b
}

func TestGuidedKeepsEdgesForSmallEpsilon(t *testing.T) {
	b := step()
	out, err := Guided(b, 2, 1e-4)
	require.NoError(t, err)
	for i := range b.Pix {
		assert.InDelta(t, float64(b.Pix[i]), float64(out.Pix[i]), 2, "pixel %d", i)
	}
}

func TestGuidedSmoothsEdgesForLargeEpsilon(t *testing.T) {
	b := step()
	out, err := Guided(b, 2, 1)
	require.NoError(t, err)
	assert.Greater(t, out.At(15, 8, 0), uint8(50))
	assert.Less(t, out.At(16, 8, 0), uint8(190))
	assert.Equal(t, uint8(40), out.At(2, 8, 0))
	assert.Equal(t, uint8(200), out.At(29, 8, 0))
}

func TestGuidedRejectsBadArguments(t *testing.T) {
	b := raster.NewGray(8, 8)
	_, err := Guided(b, 0, 0.02)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = Guided(b, 2, -1)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
	_, err = Guided(raster.NewColor(8, 8), 2, 0.02)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}
