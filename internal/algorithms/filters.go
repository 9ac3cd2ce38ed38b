// Filter algorithms for noise reduction and enhancement
package algorithms

import (
	"fmt"

	"pixel-processing/internal/filters"
	"pixel-processing/internal/raster"
)

// GaussianFilter implements Gaussian blur filter
type GaussianFilter struct{}

// NewGaussianFilter creates a new Gaussian filter algorithm
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

func (g *GaussianFilter) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	variance := 1.0
	if val, ok := params["variance"]; ok {
		if v, ok := toFloat(val); ok {
			variance = v
		}
	}

	return filters.Gaussian(input, variance)
}

func (g *GaussianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"variance": 1.0,
	}
}

func (g *GaussianFilter) GetName() string {
	return "Gaussian Filter"
}

func (g *GaussianFilter) GetDescription() string {
	return "Separable Gaussian blur with a kernel radius of three standard deviations"
}

func (g *GaussianFilter) Validate(params map[string]interface{}) error {
	return checkParams(g.GetParameterInfo(), params)
}

func (g *GaussianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "variance",
			Type:        "float",
			Min:         0.01,
			Max:         100.0,
			Default:     1.0,
			Description: "Variance of the Gaussian",
		},
	}
}

// MedianFilter implements median filter for noise reduction
type MedianFilter struct{}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter() *MedianFilter {
	return &MedianFilter{}
}

func (m *MedianFilter) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	p := withDefaults(m.GetParameterInfo(), params)
	kernelSize := p.Int("kernel_size", 3)
	if p.Bool("fast", true) {
		return filters.FastMedian(input, kernelSize)
	}
	return filters.Median(input, kernelSize)
}

func (m *MedianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 3.0,
		"fast":        true,
	}
}

func (m *MedianFilter) GetName() string {
	return "Median Filter"
}

func (m *MedianFilter) GetDescription() string {
	return "Per-channel median filter for impulse noise removal"
}

func (m *MedianFilter) Validate(params map[string]interface{}) error {
	if err := checkParams(m.GetParameterInfo(), params); err != nil {
		return err
	}
	return checkOdd(params, "kernel_size")
}

func (m *MedianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		maskParam("kernel_size", 3.0, "Size of the median window (odd)"),
		{
			Name:        "fast",
			Type:        "bool",
			Default:     true,
			Description: "Use the sliding histogram instead of sorting every window",
		},
	}
}

// BilateralFilter implements edge-preserving bilateral filter
type BilateralFilter struct{}

// NewBilateralFilter creates a new bilateral filter algorithm
func NewBilateralFilter() *BilateralFilter {
	return &BilateralFilter{}
}

func (b *BilateralFilter) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}

	// Convert to grayscale if needed
	gray := ensureGrayscale(input)

	p := withDefaults(b.GetParameterInfo(), params)
	return filters.BilateralGaussian(gray, p.Float("sigma_d", 2), p.Float("sigma_r", 25))
}

func (b *BilateralFilter) GetDefaultParams() map[string]interface{} {
	return defaultsOf(b.GetParameterInfo())
}

func (b *BilateralFilter) GetName() string {
	return "Bilateral Filter"
}

func (b *BilateralFilter) GetDescription() string {
	return "Edge-preserving smoothing weighted by distance and intensity difference"
}

func (b *BilateralFilter) Validate(params map[string]interface{}) error {
	return checkParams(b.GetParameterInfo(), params)
}

func (b *BilateralFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "sigma_d",
			Type:        "float",
			Min:         0.1,
			Max:         20.0,
			Default:     2.0,
			Description: "Spatial standard deviation; the mask spans 4 sigma",
		},
		{
			Name:        "sigma_r",
			Type:        "float",
			Min:         0.1,
			Max:         255.0,
			Default:     25.0,
			Description: "Range standard deviation in intensity levels",
		},
	}
}

func newMeanFilter() *operation {
	return &operation{
		name:        "Mean Filter",
		description: "Box average over a square window",
		params:      []ParameterInfo{maskParam("mask_size", 3.0, "Size of the averaging window (odd)")},
		check:       func(p map[string]interface{}) error { return checkOdd(p, "mask_size") },
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return filters.Mean(input, p.Int("mask_size", 3))
		},
	}
}

func newVectorMedianFilter() *operation {
	return &operation{
		name:        "Vector Median Filter",
		description: "Replaces each color pixel with the window color closest to all others",
		params:      []ParameterInfo{maskParam("mask_size", 3.0, "Size of the window (odd)")},
		check:       func(p map[string]interface{}) error { return checkOdd(p, "mask_size") },
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return filters.VectorMedian(input, p.Int("mask_size", 3))
		},
	}
}

func newGuidedFilter() *operation {
	return &operation{
		name:        "Guided Filter",
		description: "Edge-preserving smoothing guided by the image itself",
		params: []ParameterInfo{
			{Name: "radius", Type: "int", Min: 1.0, Max: 20.0, Default: 5.0, Description: "Window radius"},
			{Name: "epsilon", Type: "float", Min: 0.001, Max: 1.0, Default: 0.02, Description: "Regularisation; larger values smooth more edges"},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return raster.MapChannels(input, func(plane *raster.Buffer) (*raster.Buffer, error) {
				return filters.Guided(plane, p.Int("radius", 5), p.Float("epsilon", 0.02))
			})
		},
	}
}
