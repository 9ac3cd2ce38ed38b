package imageio

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/raster"
)

func TestIsSupported(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"scan.png", true},
		{"dir/scan.JPG", true},
		{"page.tif", true},
		{"page.tiff", true},
		{"photo.bmp", true},
		{"notes.txt", false},
		{"archive.png.gz", false},
		{"noext", false},
		{"dir.png/file", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSupported(tc.path))
		})
	}
}

func TestMatRoundTrip(t *testing.T) {
	for _, channels := range []int{raster.Gray, raster.Color} {
		b, err := raster.New(5, 3, channels)
		require.NoError(t, err)
		for i := range b.Pix {
			b.Pix[i] = uint8(i * 7)
		}

		mat, err := ToMat(b)
		require.NoError(t, err)
		assert.Equal(t, 3, mat.Rows())
		assert.Equal(t, 5, mat.Cols())
		assert.Equal(t, channels, mat.Channels())

		back, err := FromMat(mat)
		mat.Close()
		require.NoError(t, err)
		assert.True(t, b.Equal(back))
	}
}

func TestSaveAndLoadPNG(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	il := NewImageLoader(logger)

	b := raster.NewColor(6, 4)
	b.SetPixel(1, 2, 10, 20, 30)
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, il.SaveImage(b, path))

	loaded, err := il.LoadImage(path)
	require.NoError(t, err)
	assert.True(t, b.Equal(loaded), "png is lossless and B,G,R order survives")

	gray, err := il.LoadImageGrayscale(path)
	require.NoError(t, err)
	assert.True(t, gray.IsGray())

	assert.Equal(t, "Image loaded successfully", hook.LastEntry().Message)
}

func TestLoadErrors(t *testing.T) {
	il := NewImageLoader(logrus.New())
	_, err := il.LoadImage("missing.png")
	assert.Error(t, err)
	_, err = il.LoadImage("notes.txt")
	assert.ErrorContains(t, err, "unsupported")
	assert.Error(t, il.SaveImage(nil, "x.png"))
	assert.Error(t, il.SaveImage(raster.NewGray(2, 2), "x.gif"))
}
