// Package imageio reads and writes image files through OpenCV and converts
// between gocv.Mat and raster.Buffer.
package imageio

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"pixel-processing/internal/raster"
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// IsSupported reports whether path has an extension the loader reads and
// writes.
func IsSupported(path string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(path)))
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}

// LoadImage reads a three-channel B,G,R buffer.
func (il *ImageLoader) LoadImage(path string) (*raster.Buffer, error) {
	return il.load(path, gocv.IMReadColor)
}

func (il *ImageLoader) LoadImageGrayscale(path string) (*raster.Buffer, error) {
	return il.load(path, gocv.IMReadGrayScale)
}

func (il *ImageLoader) load(path string, flags gocv.IMReadFlag) (*raster.Buffer, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, flags)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	b, err := FromMat(mat)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Width,
		"height":   b.Height,
		"channels": b.Channels,
	}).Info("Image loaded successfully")

	return b, nil
}

func (il *ImageLoader) SaveImage(b *raster.Buffer, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if b == nil {
		return fmt.Errorf("cannot save empty image")
	}
	if !IsSupported(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	mat, err := ToMat(b)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Width,
		"height":   b.Height,
		"channels": b.Channels,
	}).Info("Image saved successfully")

	return nil
}
