// Morphological operations algorithms
package algorithms

import (
	"fmt"

	"pixel-processing/internal/morphology"
	"pixel-processing/internal/raster"
)

func morphologyParams(verb string) []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         1.0,
			Max:         15.0,
			Default:     3.0,
			Description: "Size of the square structuring element (odd)",
		},
		{
			Name:        "iterations",
			Type:        "int",
			Min:         1.0,
			Max:         10.0,
			Default:     1.0,
			Description: "Number of " + verb + " iterations",
		},
	}
}

// iterate applies op the requested number of times.
func iterate(input *raster.Buffer, params map[string]interface{}, op morphology.Op) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}
	p := withDefaults(morphologyParams(""), params)
	kernelSize := p.Int("kernel_size", 3)
	iterations := p.Int("iterations", 1)

	output := binaryPlane(input)
	for i := 0; i < iterations; i++ {
		next, err := morphology.Apply(output, op, kernelSize)
		if err != nil {
			return nil, err
		}
		output = next
	}
	return output, nil
}

func validateMorphology(params map[string]interface{}) error {
	if err := checkParams(morphologyParams(""), params); err != nil {
		return err
	}
	return checkOdd(params, "kernel_size")
}

// Erosion implements binary morphological erosion
type Erosion struct{}

// NewErosion creates a new erosion algorithm
func NewErosion() *Erosion {
	return &Erosion{}
}

func (e *Erosion) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	return iterate(input, params, morphology.OpErode)
}

func (e *Erosion) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 3.0,
		"iterations":  1.0,
	}
}

func (e *Erosion) GetName() string {
	return "Erosion"
}

func (e *Erosion) GetDescription() string {
	return "Binary erosion to remove small noise"
}

func (e *Erosion) Validate(params map[string]interface{}) error {
	return validateMorphology(params)
}

func (e *Erosion) GetParameterInfo() []ParameterInfo {
	return morphologyParams("erosion")
}

// Dilation implements binary morphological dilation
type Dilation struct{}

// NewDilation creates a new dilation algorithm
func NewDilation() *Dilation {
	return &Dilation{}
}

func (d *Dilation) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	return iterate(input, params, morphology.OpDilate)
}

func (d *Dilation) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 3.0,
		"iterations":  1.0,
	}
}

func (d *Dilation) GetName() string {
	return "Dilation"
}

func (d *Dilation) GetDescription() string {
	return "Binary dilation to fill gaps in text"
}

func (d *Dilation) Validate(params map[string]interface{}) error {
	return validateMorphology(params)
}

func (d *Dilation) GetParameterInfo() []ParameterInfo {
	return morphologyParams("dilation")
}

// Opening implements morphological opening (erosion followed by dilation)
type Opening struct{}

// NewOpening creates a new opening algorithm
func NewOpening() *Opening {
	return &Opening{}
}

func (o *Opening) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	return iterate(input, params, morphology.OpOpen)
}

func (o *Opening) GetDefaultParams() map[string]interface{} {
	return defaultsOf(o.GetParameterInfo())
}

func (o *Opening) GetName() string {
	return "Opening"
}

func (o *Opening) GetDescription() string {
	return "Binary opening to remove specks smaller than the kernel"
}

func (o *Opening) Validate(params map[string]interface{}) error {
	return validateMorphology(params)
}

func (o *Opening) GetParameterInfo() []ParameterInfo {
	return morphologyParams("opening")
}

// Closing implements morphological closing (dilation followed by erosion)
type Closing struct{}

// NewClosing creates a new closing algorithm
func NewClosing() *Closing {
	return &Closing{}
}

func (c *Closing) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	return iterate(input, params, morphology.OpClose)
}

func (c *Closing) GetDefaultParams() map[string]interface{} {
	return defaultsOf(c.GetParameterInfo())
}

func (c *Closing) GetName() string {
	return "Closing"
}

func (c *Closing) GetDescription() string {
	return "Binary closing to fill holes and gaps smaller than the kernel"
}

func (c *Closing) Validate(params map[string]interface{}) error {
	return validateMorphology(params)
}

func (c *Closing) GetParameterInfo() []ParameterInfo {
	return morphologyParams("closing")
}

func grayMorphology(name, description string, op func(*raster.Buffer, int) (*raster.Buffer, error)) *operation {
	return &operation{
		name:        name,
		description: description,
		params:      []ParameterInfo{maskParam("kernel_size", 3.0, "Size of the square structuring element (odd)")},
		check:       func(p map[string]interface{}) error { return checkOdd(p, "kernel_size") },
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return op(input, p.Int("kernel_size", 3))
		},
	}
}

func registerGrayMorphology() {
	Register(CategoryMorphology, "gray_erosion", grayMorphology("Gray Erosion", "Local minimum", morphology.GrayErode))
	Register(CategoryMorphology, "gray_dilation", grayMorphology("Gray Dilation", "Local maximum", morphology.GrayDilate))
	Register(CategoryMorphology, "gray_opening", grayMorphology("Gray Opening", "Local minimum then maximum", morphology.GrayOpen))
	Register(CategoryMorphology, "gray_closing", grayMorphology("Gray Closing", "Local maximum then minimum", morphology.GrayClose))
	Register(CategoryMorphology, "morphological_gradient", grayMorphology("Morphological Gradient", "Dilation minus erosion", morphology.Gradient))
	Register(CategoryMorphology, "morphological_smooth", grayMorphology("Morphological Smoothing", "Opening followed by closing", morphology.Smooth))
	Register(CategoryMorphology, "boundary", grayMorphology("Boundary", "Image minus its erosion", morphology.Boundary))
	Register(CategoryMorphology, "top_hat", grayMorphology("Top Hat", "Image minus its opening", morphology.TopHat))

	Register(CategoryMorphology, "connected_components", &operation{
		name:        "Connected Components",
		description: "Colors every connected foreground region of a binary image",
		params: []ParameterInfo{
			{Name: "connectivity", Type: "enum", Default: "8", Description: "Pixel neighbourhood", Options: []string{"4", "8"}},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			out, count, err := morphology.ConnectedComponents(binaryPlane(input), p.Int("connectivity", 8))
			if err != nil {
				return nil, err
			}
			currentLogger().WithField("components", count).Debug("Labeled connected components")
			return out, nil
		},
	})
}
