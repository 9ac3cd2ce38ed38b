package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/raster"
)

func TestImageDataLifecycle(t *testing.T) {
	img := NewImageData()
	assert.False(t, img.HasImage())
	assert.Nil(t, img.GetOriginal())
	assert.Error(t, img.ResetToOriginal())

	b := raster.NewColor(6, 4)
	b.SetPixel(1, 1, 10, 20, 30)
	require.NoError(t, img.SetOriginal(b, "/tmp/page.PNG"))

	meta := img.GetMetadata()
	assert.Equal(t, ImageMetadata{Width: 6, Height: 4, Channels: 3, Format: "png"}, meta)
	assert.Equal(t, "/tmp/page.PNG", img.GetFilepath())

	// Stored copies do not alias the caller's buffer.
	b.SetPixel(1, 1, 0, 0, 0)
	assert.Equal(t, uint8(10), img.GetOriginal().At(1, 1, 0))

	processed := raster.NewGray(6, 4)
	require.NoError(t, img.SetProcessed(processed))
	assert.True(t, img.GetProcessed().IsGray())

	require.NoError(t, img.ResetToOriginal())
	assert.True(t, img.GetProcessed().Equal(img.GetOriginal()))

	img.Clear()
	assert.False(t, img.HasImage())
	assert.Equal(t, ImageMetadata{}, img.GetMetadata())
}

func TestSetProcessedWithoutOriginal(t *testing.T) {
	img := NewImageData()
	assert.Error(t, img.SetProcessed(raster.NewGray(2, 2)))
}

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name string
		b    *raster.Buffer
	}{
		{"nil", nil},
		{"zero width", &raster.Buffer{Width: 0, Height: 2, Channels: 1}},
		{"two channels", &raster.Buffer{Width: 2, Height: 2, Channels: 2, Stride: 4, Pix: make([]uint8, 8)}},
		{"short pixels", &raster.Buffer{Width: 2, Height: 2, Channels: 1, Stride: 2, Pix: make([]uint8, 3)}},
		{"too large", &raster.Buffer{Width: maxDimension + 1, Height: 1, Channels: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateImage(tc.b), raster.ErrInvalidArgument)
		})
	}
	assert.NoError(t, ValidateImage(raster.NewGray(3, 3)))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "jpg", formatFromPath("a/b.JPG"))
	assert.Equal(t, "unknown", formatFromPath("noext"))
}
