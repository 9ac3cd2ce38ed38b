// Local adaptive binarisation over summed-area tables
package algorithms

import (
	"fmt"

	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

// AdaptiveThreshold marks pixels darker than a fraction of their local mean
type AdaptiveThreshold struct{}

func NewAdaptiveThreshold() *AdaptiveThreshold {
	return &AdaptiveThreshold{}
}

func (a *AdaptiveThreshold) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	// Convert to grayscale if needed
	gray := ensureGrayscale(input)

	// Get parameters
	blockSize := 15
	if val, ok := params["block_size"]; ok {
		if v, ok := toFloat(val); ok {
			blockSize = int(v)
		}
	}

	weight := 0.85
	if val, ok := params["weight"]; ok {
		if v, ok := toFloat(val); ok {
			weight = v
		}
	}

	return threshold.Adaptive(gray, blockSize, weight)
}

func (a *AdaptiveThreshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"block_size": 15.0,
		"weight":     0.85,
	}
}

func (a *AdaptiveThreshold) GetName() string {
	return "Adaptive Threshold"
}

func (a *AdaptiveThreshold) GetDescription() string {
	return "Local mean thresholding for uneven illumination; dark pixels become foreground"
}

func (a *AdaptiveThreshold) Validate(params map[string]interface{}) error {
	if err := checkParams(a.GetParameterInfo(), params); err != nil {
		return err
	}
	return checkOdd(params, "block_size")
}

func (a *AdaptiveThreshold) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "block_size",
			Type:        "int",
			Min:         3.0,
			Max:         99.0,
			Default:     15.0,
			Description: "Size of the local neighborhood (odd)",
		},
		{
			Name:        "weight",
			Type:        "float",
			Min:         threshold.MinAdaptiveWeight,
			Max:         threshold.MaxAdaptiveWeight,
			Default:     0.85,
			Description: "Fraction of the local mean a pixel must fall below",
		},
	}
}
