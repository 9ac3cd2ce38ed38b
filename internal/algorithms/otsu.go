// Global thresholding: manual, histogram quantiles, isodata and Otsu
package algorithms

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

// MultiOtsu implements one- and two-threshold Otsu segmentation
type MultiOtsu struct{}

// NewMultiOtsu creates a new multi-level Otsu algorithm
func NewMultiOtsu() *MultiOtsu {
	return &MultiOtsu{}
}

func (m *MultiOtsu) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	// Convert to grayscale if needed
	gray := ensureGrayscale(input)

	levels := 2 // Default to 2-level (finds 1 threshold)
	if val, ok := params["levels"]; ok {
		if v, ok := toFloat(val); ok {
			levels = int(v)
		}
	}

	if levels == 2 {
		t, err := threshold.Otsu(gray)
		if err != nil {
			return nil, err
		}
		return threshold.Manual(gray, t)
	}

	t1, t2, err := threshold.OtsuTwo(gray)
	if err != nil {
		return nil, err
	}
	return threshold.ThreeLevel(gray, t1, t2)
}

func (m *MultiOtsu) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"levels": 2.0,
	}
}

func (m *MultiOtsu) GetName() string {
	return "Multi-Level Otsu"
}

func (m *MultiOtsu) GetDescription() string {
	return "Otsu thresholding with 2-level (binary) or 3-level (0/128/255) output"
}

func (m *MultiOtsu) Validate(params map[string]interface{}) error {
	return checkParams(m.GetParameterInfo(), params)
}

func (m *MultiOtsu) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "levels",
			Type:        "int",
			Min:         2.0,
			Max:         3.0,
			Default:     2.0,
			Description: "Number of output levels (2=1 threshold, 3=2 thresholds)",
		},
	}
}

func newManualThreshold() *operation {
	return &operation{
		name:        "Threshold",
		description: "Binarises at a fixed level: 255 where pixel >= t",
		params: []ParameterInfo{
			{Name: "threshold", Type: "int", Min: 0.0, Max: 255.0, Default: 128.0, Description: "Threshold t"},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return threshold.Manual(ensureGrayscale(input), p.Int("threshold", 128))
		},
	}
}

// histogramThreshold binarises at a level computed from the image itself.
func histogramThreshold(name, description string, params []ParameterInfo, pick func(*raster.Buffer, Params) (int, error)) *operation {
	return &operation{
		name:        name,
		description: description,
		params:      params,
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			gray := ensureGrayscale(input)
			t, err := pick(gray, p)
			if err != nil {
				return nil, err
			}
			return threshold.Manual(gray, t)
		},
	}
}

func newQuantileThreshold() *operation {
	return histogramThreshold("Quantile Threshold",
		"Threshold at the level below which the fraction p of pixels falls",
		[]ParameterInfo{{Name: "p", Type: "float", Min: 0.0, Max: 1.0, Default: 0.5, Description: "Fraction of pixels"}},
		func(gray *raster.Buffer, p Params) (int, error) { return threshold.Quantile(gray, p.Float("p", 0.5)) },
	)
}

func newMedianThreshold() *operation {
	return histogramThreshold("Median Threshold", "Threshold at the median intensity", nil,
		func(gray *raster.Buffer, _ Params) (int, error) { return threshold.MedianThreshold(gray) },
	)
}

func newIntermeansThreshold() *operation {
	return histogramThreshold("Intermeans Threshold", "Iterative isodata threshold selection", nil,
		func(gray *raster.Buffer, _ Params) (int, error) {
			t, iterations, err := threshold.Intermeans(gray)
			if err == nil {
				currentLogger().WithFields(logrus.Fields{
					"threshold":  t,
					"iterations": iterations,
				}).Debug("Intermeans converged")
			}
			return t, err
		},
	)
}

func newLocalOtsu() *operation {
	return &operation{
		name:        "Local Otsu",
		description: "Otsu thresholds over overlapping tiles, interpolated between tiles",
		params: []ParameterInfo{
			{Name: "window_size", Type: "int", Min: 5.0, Max: 101.0, Default: 15.0, Description: "Tile size in pixels"},
			{Name: "overlap", Type: "float", Min: 0.0, Max: 0.9, Default: 0.5, Description: "Fraction of a tile shared with the next"},
			{Name: "interpolation", Type: "bool", Default: true, Description: "Interpolate thresholds between tiles"},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return threshold.LocalOtsu(ensureGrayscale(input),
				p.Int("window_size", 15), p.Float("overlap", 0.5), p.Bool("interpolation", true))
		},
	}
}

func newOtsu2D() *operation {
	return &operation{
		name:        "2D Otsu",
		description: "Otsu on the joint histogram of intensity and its guided filter response",
		params: []ParameterInfo{
			{Name: "window_radius", Type: "int", Min: 1.0, Max: 20.0, Default: 5.0, Description: "Guided filter window radius"},
			{Name: "epsilon", Type: "float", Min: 0.001, Max: 1.0, Default: 0.02, Description: "Guided filter regularisation"},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return threshold.Otsu2D(ensureGrayscale(input), p.Int("window_radius", 5), p.Float("epsilon", 0.02))
		},
	}
}
