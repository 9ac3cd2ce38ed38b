package algorithms

import (
	"pixel-processing/internal/raster"
)

// operation adapts a plain function to Algorithm. Parameters are declared
// once in params; defaults, range checks and UI metadata all derive from it.
type operation struct {
	name        string
	description string
	params      []ParameterInfo
	// check runs after the declared range checks, for cross-field rules
	check func(params map[string]interface{}) error
	run   func(input *raster.Buffer, p Params) (*raster.Buffer, error)
}

func (o *operation) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if err := o.Validate(params); err != nil {
		return nil, err
	}
	return o.run(input, withDefaults(o.params, params))
}

func (o *operation) GetDefaultParams() map[string]interface{} { return defaultsOf(o.params) }

func (o *operation) GetName() string { return o.name }

func (o *operation) GetDescription() string { return o.description }

func (o *operation) Validate(params map[string]interface{}) error {
	if err := checkParams(o.params, params); err != nil {
		return err
	}
	if o.check != nil {
		return o.check(withDefaults(o.params, params))
	}
	return nil
}

func (o *operation) GetParameterInfo() []ParameterInfo {
	out := make([]ParameterInfo, len(o.params))
	copy(out, o.params)
	return out
}

// maskParam declares an odd window size.
func maskParam(name string, def float64, description string) ParameterInfo {
	return ParameterInfo{
		Name:        name,
		Type:        "int",
		Min:         1.0,
		Max:         99.0,
		Default:     def,
		Description: description,
	}
}

var samplerParam = ParameterInfo{
	Name:        "sampler",
	Type:        "enum",
	Default:     "bilinear",
	Description: "Interpolation used to read source pixels",
	Options:     []string{"nearest", "bilinear", "lanczos"},
}
