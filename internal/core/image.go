// Package core holds the image being worked on and the pipeline of
// registry algorithms applied to it.
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"pixel-processing/internal/raster"
)

// maxDimension bounds either side of an accepted image.
const maxDimension = 16384

// ImageData manages original and processed images with thread safety
type ImageData struct {
	mu        sync.RWMutex
	original  *raster.Buffer
	processed *raster.Buffer
	filepath  string
	metadata  ImageMetadata
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`
	Channels int    `json:"channels" yaml:"channels"`
	Format   string `json:"format" yaml:"format"`
}

func NewImageData() *ImageData {
	return &ImageData{}
}

// SetOriginal stores a copy of b as the original and resets the processed
// image to it.
func (img *ImageData) SetOriginal(b *raster.Buffer, path string) error {
	if err := ValidateImage(b); err != nil {
		return err
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = b.Copy()
	img.processed = b.Copy()
	img.filepath = path
	img.metadata = ImageMetadata{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Format:   formatFromPath(path),
	}
	return nil
}

// SetProcessed stores a copy of b as the processed image
func (img *ImageData) SetProcessed(b *raster.Buffer) error {
	if err := ValidateImage(b); err != nil {
		return err
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	if img.original == nil {
		return fmt.Errorf("no original image loaded")
	}
	img.processed = b.Copy()
	return nil
}

// GetOriginal returns a copy of the original image, nil when none is loaded
func (img *ImageData) GetOriginal() *raster.Buffer {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.original == nil {
		return nil
	}
	return img.original.Copy()
}

// GetProcessed returns a copy of the processed image
func (img *ImageData) GetProcessed() *raster.Buffer {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.processed == nil {
		return nil
	}
	return img.processed.Copy()
}

func (img *ImageData) HasImage() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.original != nil
}

func (img *ImageData) GetMetadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

func (img *ImageData) GetFilepath() string {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.filepath
}

// Clear clears all image data
func (img *ImageData) Clear() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = nil
	img.processed = nil
	img.filepath = ""
	img.metadata = ImageMetadata{}
}

// ResetToOriginal resets processed image to original
func (img *ImageData) ResetToOriginal() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.original == nil {
		return fmt.Errorf("no original image available")
	}
	img.processed = img.original.Copy()
	return nil
}

func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// ValidateImage validates a buffer for basic requirements
func ValidateImage(b *raster.Buffer) error {
	if b == nil {
		return fmt.Errorf("%w: image is empty", raster.ErrInvalidArgument)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions: %dx%d", raster.ErrInvalidArgument, b.Width, b.Height)
	}
	if b.Channels != raster.Gray && b.Channels != raster.Color {
		return fmt.Errorf("%w: unsupported channel count: %d", raster.ErrInvalidArgument, b.Channels)
	}
	if len(b.Pix) < b.Height*b.Stride {
		return fmt.Errorf("%w: pixel data too short", raster.ErrInvalidArgument)
	}
	if b.Width > maxDimension || b.Height > maxDimension {
		return fmt.Errorf("%w: image too large: %dx%d (max: %d)", raster.ErrInvalidArgument, b.Width, b.Height, maxDimension)
	}
	return nil
}
