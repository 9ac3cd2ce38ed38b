package algorithms

import (
	"fmt"

	"pixel-processing/internal/edges"
	"pixel-processing/internal/raster"
)

var operatorParam = ParameterInfo{
	Name:        "operator",
	Type:        "enum",
	Default:     "sobel",
	Description: "Derivative masks",
	Options:     []string{"sobel", "prewitt", "roberts"},
}

func parseOperator(name string) edges.Operator {
	switch name {
	case "prewitt":
		return edges.Prewitt
	case "roberts":
		return edges.Roberts
	}
	return edges.Sobel
}

func magnitudeOperation(name string, op edges.Operator) *operation {
	return &operation{
		name:        name,
		description: fmt.Sprintf("Gradient magnitude with the %s operator", op),
		run: func(input *raster.Buffer, _ Params) (*raster.Buffer, error) {
			return edges.Magnitude(ensureGrayscale(input), op)
		},
	}
}

func registerEdges() {
	Register(CategoryEdges, "prewitt", magnitudeOperation("Prewitt", edges.Prewitt))
	Register(CategoryEdges, "sobel", magnitudeOperation("Sobel", edges.Sobel))
	Register(CategoryEdges, "roberts", magnitudeOperation("Roberts", edges.Roberts))

	Register(CategoryEdges, "edge_threshold", &operation{
		name:        "Gradient Threshold",
		description: "Marks pixels whose gradient magnitude reaches the threshold",
		params: []ParameterInfo{
			operatorParam,
			{Name: "threshold", Type: "float", Min: 0.0, Max: 1500.0, Default: 100.0, Description: "Minimum gradient magnitude"},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return edges.ThresholdGradient(ensureGrayscale(input), parseOperator(p.String("operator", "sobel")), p.Float("threshold", 100))
		},
	})

	Register(CategoryEdges, "gradient_direction", &operation{
		name:        "Gradient Direction",
		description: "Quantised gradient direction rendered as gray levels",
		params: []ParameterInfo{
			operatorParam,
			{Name: "bins", Type: "enum", Default: "4", Description: "Number of direction sectors", Options: []string{"4", "8"}},
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			g, err := edges.ComputeGradient(ensureGrayscale(input), parseOperator(p.String("operator", "sobel")))
			if err != nil {
				return nil, err
			}
			return edges.Direction(g, p.Int("bins", 4))
		},
	})

	Register(CategoryEdges, "canny", &operation{
		name:        "Canny",
		description: "Sobel gradient, non-maxima suppression and hysteresis",
		params: []ParameterInfo{
			{Name: "low", Type: "int", Min: 0.0, Max: 255.0, Default: 50.0, Description: "Weak edge threshold"},
			{Name: "high", Type: "int", Min: 0.0, Max: 255.0, Default: 150.0, Description: "Strong edge threshold"},
		},
		check: func(params map[string]interface{}) error {
			p := Params(params)
			if p.Int("low", 0) > p.Int("high", 0) {
				return fmt.Errorf("%w: low threshold must not exceed high", raster.ErrInvalidArgument)
			}
			return nil
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			return edges.Canny(ensureGrayscale(input), p.Int("low", 50), p.Int("high", 150))
		},
	})
}
