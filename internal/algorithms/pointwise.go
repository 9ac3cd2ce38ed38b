// Intensity transformations backed by lookup tables
package algorithms

import (
	"fmt"

	"pixel-processing/internal/pointwise"
	"pixel-processing/internal/raster"
)

func lutOperation(name, description string, params []ParameterInfo, gen func(p Params) (pointwise.LUT, error)) *operation {
	return &operation{
		name:        name,
		description: description,
		params:      params,
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			lut, err := gen(p)
			if err != nil {
				return nil, err
			}
			return pointwise.Apply(input, lut), nil
		},
	}
}

func fixed(lut pointwise.LUT) func(Params) (pointwise.LUT, error) {
	return func(Params) (pointwise.LUT, error) { return lut, nil }
}

func registerPointwise() {
	Register(CategoryPointwise, "brightness", lutOperation(
		"Brightness", "Adds a constant to every sample",
		[]ParameterInfo{{Name: "delta", Type: "int", Min: -255.0, Max: 255.0, Default: 20.0, Description: "Intensity offset; negative values darken"}},
		func(p Params) (pointwise.LUT, error) { return pointwise.Brightness(p.Int("delta", 20)) },
	))
	Register(CategoryPointwise, "contrast_keep_black", lutOperation(
		"Contrast (keep black)", "Scales intensities about 0: s = a*r",
		[]ParameterInfo{{Name: "factor", Type: "float", Min: 0.01, Max: 10.0, Default: 1.2, Description: "Gain; above 1 increases contrast"}},
		func(p Params) (pointwise.LUT, error) { return pointwise.ContrastKeepBlack(p.Float("factor", 1.2)) },
	))
	Register(CategoryPointwise, "contrast_keep_white", lutOperation(
		"Contrast (keep white)", "Scales intensities about 255: s = 255 - a*(255-r)",
		[]ParameterInfo{{Name: "factor", Type: "float", Min: 0.01, Max: 10.0, Default: 1.2, Description: "Gain; above 1 increases contrast"}},
		func(p Params) (pointwise.LUT, error) { return pointwise.ContrastKeepWhite(p.Float("factor", 1.2)) },
	))
	Register(CategoryPointwise, "logarithmic", lutOperation(
		"Logarithmic", "Expands dark tones: s = c*ln(1+r)", nil, fixed(pointwise.Logarithmic())))
	Register(CategoryPointwise, "exponential", lutOperation(
		"Exponential", "Inverse of the logarithmic operator, expands bright tones", nil, fixed(pointwise.Exponential())))
	Register(CategoryPointwise, "gamma", lutOperation(
		"Gamma", "Power-law correction s = 255*(r/255)^gamma",
		[]ParameterInfo{{Name: "gamma", Type: "float", Min: 0.01, Max: 10.0, Default: 1.0, Description: "Exponent; below 1 brightens"}},
		func(p Params) (pointwise.LUT, error) { return pointwise.Gamma(p.Float("gamma", 1)) },
	))
	Register(CategoryPointwise, "piecewise_linear", &operation{
		name:        "Piecewise Linear",
		description: "Contrast stretch through the control points (r1,s1) and (r2,s2)",
		params: []ParameterInfo{
			{Name: "r1", Type: "int", Min: 0.0, Max: 255.0, Default: 64.0, Description: "First input level"},
			{Name: "s1", Type: "int", Min: 0.0, Max: 255.0, Default: 32.0, Description: "First output level"},
			{Name: "r2", Type: "int", Min: 0.0, Max: 255.0, Default: 192.0, Description: "Second input level"},
			{Name: "s2", Type: "int", Min: 0.0, Max: 255.0, Default: 224.0, Description: "Second output level"},
		},
		check: func(params map[string]interface{}) error {
			p := Params(params)
			if p.Int("r1", 0) > p.Int("r2", 0) {
				return fmt.Errorf("%w: r1 must not exceed r2", raster.ErrInvalidArgument)
			}
			if p.Int("s1", 0) > p.Int("s2", 0) {
				return fmt.Errorf("%w: s1 must not exceed s2", raster.ErrInvalidArgument)
			}
			return nil
		},
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			lut, err := pointwise.PiecewiseLinear(p.Int("r1", 64), p.Int("s1", 32), p.Int("r2", 192), p.Int("s2", 224))
			if err != nil {
				return nil, err
			}
			return pointwise.Apply(input, lut), nil
		},
	})
	Register(CategoryPointwise, "sinusoidal", lutOperation(
		"Sinusoidal", "Cosine-shaped tone curve",
		[]ParameterInfo{{Name: "mode", Type: "enum", Default: "increase", Description: "increase stretches mid-tones, decrease compresses them", Options: []string{"increase", "decrease"}}},
		func(p Params) (pointwise.LUT, error) {
			return pointwise.Sinusoidal(p.String("mode", "increase") == "increase"), nil
		},
	))
	Register(CategoryPointwise, "polynomial", lutOperation(
		"Polynomial", "s = c0 + c1*r + c2*r^2 + c3*r^3",
		[]ParameterInfo{
			{Name: "c0", Type: "float", Default: 0.0, Description: "Constant term"},
			{Name: "c1", Type: "float", Default: 1.0, Description: "Linear coefficient"},
			{Name: "c2", Type: "float", Default: 0.0, Description: "Quadratic coefficient"},
			{Name: "c3", Type: "float", Default: 0.0, Description: "Cubic coefficient"},
		},
		func(p Params) (pointwise.LUT, error) {
			return pointwise.Polynomial(p.Float("c0", 0), p.Float("c1", 1), p.Float("c2", 0), p.Float("c3", 0))
		},
	))
	Register(CategoryPointwise, "em_operator", lutOperation(
		"EM Operator", "Contrast stretch around m: s = 255/(1+(m/r)^E)",
		[]ParameterInfo{
			{Name: "m", Type: "float", Min: 1.0, Max: 255.0, Default: 128.0, Description: "Mid level mapped to 127.5"},
			{Name: "e", Type: "float", Min: 0.1, Max: 20.0, Default: 4.0, Description: "Slope exponent"},
		},
		func(p Params) (pointwise.LUT, error) { return pointwise.EMOperator(p.Float("m", 128), p.Float("e", 4)) },
	))
	Register(CategoryPointwise, "invert", lutOperation(
		"Invert", "Photographic negative s = 255 - r", nil, fixed(pointwise.Invert())))
	Register(CategoryPointwise, "equalization", &operation{
		name:        "Histogram Equalization",
		description: "Flattens the histogram of every channel",
		run: func(input *raster.Buffer, _ Params) (*raster.Buffer, error) {
			return pointwise.Equalize(input), nil
		},
	})
}
