package algorithms

import (
	"fmt"
	"slices"
	"strconv"

	"pixel-processing/internal/raster"
)

// Params carries algorithm parameters as decoded from JSON, YAML or the
// command line. Numbers usually arrive as float64.
type Params map[string]interface{}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Float returns the named parameter or def when it is missing.
func (p Params) Float(name string, def float64) float64 {
	if val, ok := p[name]; ok {
		if v, ok := toFloat(val); ok {
			return v
		}
	}
	return def
}

// Int truncates the named numeric parameter.
func (p Params) Int(name string, def int) int {
	return int(p.Float(name, float64(def)))
}

// Bool accepts booleans, "true"/"false" strings and numbers.
func (p Params) Bool(name string, def bool) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	case nil:
		return def
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
	}
	return def
}

// String returns the named string parameter.
func (p Params) String(name, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return def
}

// withDefaults overlays params on the defaults of info.
func withDefaults(info []ParameterInfo, params map[string]interface{}) Params {
	out := make(Params, len(info)+len(params))
	for _, pi := range info {
		out[pi.Name] = pi.Default
	}
	for k, v := range params {
		out[k] = v
	}
	return out
}

func defaultsOf(info []ParameterInfo) map[string]interface{} {
	out := make(map[string]interface{}, len(info))
	for _, pi := range info {
		out[pi.Name] = pi.Default
	}
	return out
}

// checkParams enforces the declared type, range and options of every
// parameter present in params. Unknown names are rejected.
func checkParams(info []ParameterInfo, params map[string]interface{}) error {
	for name, val := range params {
		i := slices.IndexFunc(info, func(pi ParameterInfo) bool { return pi.Name == name })
		if i < 0 {
			return fmt.Errorf("%w: unknown parameter %q", raster.ErrInvalidArgument, name)
		}
		pi := info[i]
		switch pi.Type {
		case "enum", "string":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", raster.ErrInvalidArgument, name)
			}
			if len(pi.Options) > 0 && !slices.Contains(pi.Options, s) {
				return fmt.Errorf("%w: %s must be one of %v, got %q", raster.ErrInvalidArgument, name, pi.Options, s)
			}
		case "bool":
			switch val.(type) {
			case bool, string:
			default:
				if _, ok := toFloat(val); !ok {
					return fmt.Errorf("%w: %s must be a boolean", raster.ErrInvalidArgument, name)
				}
			}
		default:
			v, ok := toFloat(val)
			if !ok {
				return fmt.Errorf("%w: %s must be a number", raster.ErrInvalidArgument, name)
			}
			if pi.Type == "int" && v != float64(int(v)) {
				return fmt.Errorf("%w: %s must be an integer, got %v", raster.ErrInvalidArgument, name, v)
			}
			if lo, ok := toFloat(pi.Min); ok && v < lo {
				return fmt.Errorf("%w: %s must be between %v and %v, got %v", raster.ErrInvalidArgument, name, pi.Min, pi.Max, v)
			}
			if hi, ok := toFloat(pi.Max); ok && v > hi {
				return fmt.Errorf("%w: %s must be between %v and %v, got %v", raster.ErrInvalidArgument, name, pi.Min, pi.Max, v)
			}
		}
	}
	return nil
}

// checkOdd rejects even values of the named mask size.
func checkOdd(params map[string]interface{}, name string) error {
	if val, ok := params[name]; ok {
		if v, ok := toFloat(val); ok {
			return raster.ValidateMask(int(v))
		}
	}
	return nil
}

func ensureGrayscale(input *raster.Buffer) *raster.Buffer {
	if input.IsGray() {
		return input
	}
	return input.Grayscale()
}

// binaryPlane returns the single plane of a color image whose channels are
// identical, as files saved from a binary image load that way. Other inputs
// are returned unchanged.
func binaryPlane(input *raster.Buffer) *raster.Buffer {
	if input == nil || input.IsGray() {
		return input
	}
	for i := 0; i < len(input.Pix); i += input.Channels {
		for c := 1; c < input.Channels; c++ {
			if input.Pix[i+c] != input.Pix[i] {
				return input
			}
		}
	}
	return input.Channel(0)
}

// NormalizeParameters coerces decoded values to the types the named
// algorithm declares: enum and string values become strings, numbers given
// as text become float64. Names the algorithm does not declare are kept so
// Validate can report them.
func NormalizeParameters(name string, params map[string]interface{}) (map[string]interface{}, error) {
	algorithm, exists := Get(name)
	if !exists {
		return nil, fmt.Errorf("algorithm not found: %s", name)
	}
	info := algorithm.GetParameterInfo()
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
		i := slices.IndexFunc(info, func(pi ParameterInfo) bool { return pi.Name == k })
		if i < 0 {
			continue
		}
		switch info[i].Type {
		case "enum", "string":
			if _, ok := v.(string); !ok {
				out[k] = fmt.Sprint(v)
			}
		case "int", "float":
			if s, ok := v.(string); ok {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					out[k] = f
				}
			}
		}
	}
	return out, nil
}
