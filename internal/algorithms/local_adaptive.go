// Local adaptive thresholding from windowed mean and standard deviation
package algorithms

import (
	"fmt"

	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

// LocalThreshold binarises against a per-pixel threshold derived from the
// statistics of the surrounding window. Bright pixels become 255.
type LocalThreshold struct {
	name        string
	description string
	k           ParameterInfo
	extra       []ParameterInfo
	apply       func(gray *raster.Buffer, windowSize int, p Params) (*raster.Buffer, error)
}

// NewNiblack creates the Niblack variant: T = mean + k*stddev
func NewNiblack() *LocalThreshold {
	return &LocalThreshold{
		name:        "Niblack",
		description: "Niblack local thresholding with local mean and standard deviation",
		k:           ParameterInfo{Name: "k", Type: "float", Min: -1.0, Max: 1.0, Default: -0.2, Description: "Weight of the standard deviation"},
		apply: func(gray *raster.Buffer, windowSize int, p Params) (*raster.Buffer, error) {
			return threshold.Niblack(gray, windowSize, p.Float("k", -0.2))
		},
	}
}

// NewSauvola creates the Sauvola variant with dynamic range normalisation
func NewSauvola() *LocalThreshold {
	return &LocalThreshold{
		name:        "Sauvola",
		description: "Sauvola local thresholding with dynamic range normalization",
		k:           ParameterInfo{Name: "k", Type: "float", Min: 0.1, Max: 1.0, Default: 0.5, Description: "Sauvola parameter controlling threshold sensitivity"},
		extra: []ParameterInfo{
			{Name: "R", Type: "float", Min: 50.0, Max: 255.0, Default: 128.0, Description: "Dynamic range of standard deviation"},
		},
		apply: func(gray *raster.Buffer, windowSize int, p Params) (*raster.Buffer, error) {
			return threshold.Sauvola(gray, windowSize, p.Float("k", 0.5), p.Float("R", 128))
		},
	}
}

// NewWolfJolion creates the Wolf-Jolion variant
func NewWolfJolion() *LocalThreshold {
	return &LocalThreshold{
		name:        "Wolf-Jolion",
		description: "Sauvola thresholding normalised by the image contrast",
		k:           ParameterInfo{Name: "k", Type: "float", Min: 0.1, Max: 1.0, Default: 0.5, Description: "Wolf-Jolion parameter"},
		apply: func(gray *raster.Buffer, windowSize int, p Params) (*raster.Buffer, error) {
			return threshold.WolfJolion(gray, windowSize, p.Float("k", 0.5))
		},
	}
}

// NewNICK creates the NICK variant
func NewNICK() *LocalThreshold {
	return &LocalThreshold{
		name:        "NICK",
		description: "NICK thresholding for bright, low-contrast pages",
		k:           ParameterInfo{Name: "k", Type: "float", Min: -1.0, Max: 0.0, Default: -0.2, Description: "NICK parameter"},
		apply: func(gray *raster.Buffer, windowSize int, p Params) (*raster.Buffer, error) {
			return threshold.Nick(gray, windowSize, p.Float("k", -0.2))
		},
	}
}

func (l *LocalThreshold) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	// Convert to grayscale if needed
	gray := ensureGrayscale(input)

	p := withDefaults(l.GetParameterInfo(), params)
	return l.apply(gray, p.Int("window_size", 15), p)
}

func (l *LocalThreshold) GetDefaultParams() map[string]interface{} {
	return defaultsOf(l.GetParameterInfo())
}

func (l *LocalThreshold) GetName() string {
	return l.name
}

func (l *LocalThreshold) GetDescription() string {
	return l.description
}

func (l *LocalThreshold) Validate(params map[string]interface{}) error {
	if err := checkParams(l.GetParameterInfo(), params); err != nil {
		return err
	}
	return checkOdd(params, "window_size")
}

func (l *LocalThreshold) GetParameterInfo() []ParameterInfo {
	info := []ParameterInfo{
		{
			Name:        "window_size",
			Type:        "int",
			Min:         3.0,
			Max:         101.0,
			Default:     15.0,
			Description: "Local window size for statistics calculation (odd)",
		},
		l.k,
	}
	return append(info, l.extra...)
}
