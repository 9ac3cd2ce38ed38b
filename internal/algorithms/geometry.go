// Geometric transforms with inverse mapping
package algorithms

import (
	"fmt"

	"pixel-processing/internal/geometry"
	"pixel-processing/internal/raster"
)

func sampler(p Params) (geometry.Sampler, error) {
	return geometry.ParseSampler(p.String("sampler", "bilinear"))
}

// warp wraps a transform that needs a sampler.
func warp(name, description string, params []ParameterInfo, fn func(*raster.Buffer, Params, geometry.Sampler) (*raster.Buffer, error)) *operation {
	return &operation{
		name:        name,
		description: description,
		params:      append(params, samplerParam),
		run: func(input *raster.Buffer, p Params) (*raster.Buffer, error) {
			s, err := sampler(p)
			if err != nil {
				return nil, err
			}
			return fn(input, p, s)
		},
	}
}

// corner coordinates of -1 stand for the matching image corner.
var cornerNames = [4][2]string{{"x0", "y0"}, {"x1", "y1"}, {"x2", "y2"}, {"x3", "y3"}}

func projectiveParams() []ParameterInfo {
	labels := [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}
	var info []ParameterInfo
	for i, names := range cornerNames {
		for _, n := range names {
			info = append(info, ParameterInfo{
				Name:        n,
				Type:        "float",
				Min:         -1.0,
				Max:         65535.0,
				Default:     -1.0,
				Description: fmt.Sprintf("Source %s corner %s (-1 for the image corner)", labels[i], n[:1]),
			})
		}
	}
	return append(info,
		ParameterInfo{Name: "width", Type: "int", Min: 0.0, Max: 16384.0, Default: 0.0, Description: "Output width (0 keeps the input width)"},
		ParameterInfo{Name: "height", Type: "int", Min: 0.0, Max: 16384.0, Default: 0.0, Description: "Output height (0 keeps the input height)"},
	)
}

func projectiveCorners(input *raster.Buffer, p Params) [4]geometry.Point {
	right, bottom := float64(input.Width-1), float64(input.Height-1)
	image := [4]geometry.Point{{X: 0, Y: 0}, {X: right, Y: 0}, {X: right, Y: bottom}, {X: 0, Y: bottom}}
	var q [4]geometry.Point
	for i, names := range cornerNames {
		q[i] = image[i]
		if x := p.Float(names[0], -1); x >= 0 {
			q[i].X = x
		}
		if y := p.Float(names[1], -1); y >= 0 {
			q[i].Y = y
		}
	}
	return q
}

func registerGeometry() {
	Register(CategoryGeometry, "scale", warp("Scale", "Resizes by independent horizontal and vertical factors",
		[]ParameterInfo{
			{Name: "sx", Type: "float", Min: 0.01, Max: 16.0, Default: 1.0, Description: "Horizontal factor"},
			{Name: "sy", Type: "float", Min: 0.01, Max: 16.0, Default: 1.0, Description: "Vertical factor"},
		},
		func(b *raster.Buffer, p Params, s geometry.Sampler) (*raster.Buffer, error) {
			return geometry.Scale(b, p.Float("sy", 1), p.Float("sx", 1), s)
		}))

	Register(CategoryGeometry, "rotate", warp("Rotate", "Rotates counterclockwise about the image center",
		[]ParameterInfo{
			{Name: "angle", Type: "float", Min: -360.0, Max: 360.0, Default: 0.0, Description: "Angle in degrees"},
		},
		func(b *raster.Buffer, p Params, s geometry.Sampler) (*raster.Buffer, error) {
			return geometry.Rotate(b, p.Float("angle", 0), s)
		}))

	Register(CategoryGeometry, "twirl", warp("Twirl", "Rotation that fades out with distance from the center",
		[]ParameterInfo{
			{Name: "angle", Type: "float", Min: -720.0, Max: 720.0, Default: 90.0, Description: "Rotation at the center in degrees"},
			{Name: "max_radius", Type: "float", Min: 1.0, Max: 65535.0, Default: 100.0, Description: "Radius beyond which pixels stay put"},
		},
		func(b *raster.Buffer, p Params, s geometry.Sampler) (*raster.Buffer, error) {
			return geometry.Twirl(b, p.Float("angle", 90), p.Float("max_radius", 100), s)
		}))

	Register(CategoryGeometry, "ripple", warp("Ripple", "Sinusoidal displacement along both axes",
		[]ParameterInfo{
			{Name: "tx", Type: "float", Min: 1.0, Max: 4096.0, Default: 120.0, Description: "Horizontal period"},
			{Name: "ty", Type: "float", Min: 1.0, Max: 4096.0, Default: 120.0, Description: "Vertical period"},
			{Name: "ax", Type: "float", Min: -512.0, Max: 512.0, Default: 10.0, Description: "Horizontal amplitude"},
			{Name: "ay", Type: "float", Min: -512.0, Max: 512.0, Default: 10.0, Description: "Vertical amplitude"},
		},
		func(b *raster.Buffer, p Params, s geometry.Sampler) (*raster.Buffer, error) {
			return geometry.Ripple(b, p.Float("tx", 120), p.Float("ty", 120), p.Float("ax", 10), p.Float("ay", 10), s)
		}))

	Register(CategoryGeometry, "projective", warp("Projective", "Rectifies a source quadrilateral onto a rectangle",
		projectiveParams(),
		func(b *raster.Buffer, p Params, s geometry.Sampler) (*raster.Buffer, error) {
			width, height := p.Int("width", 0), p.Int("height", 0)
			if width == 0 {
				width = b.Width
			}
			if height == 0 {
				height = b.Height
			}
			return geometry.Projective(b, projectiveCorners(b, p), width, height, s)
		}))

	Register(CategoryGeometry, "mirror_horizontal", &operation{
		name:        "Mirror Horizontally",
		description: "Swaps left and right",
		run: func(input *raster.Buffer, _ Params) (*raster.Buffer, error) {
			return geometry.MirrorHorizontal(input), nil
		},
	})
	Register(CategoryGeometry, "mirror_vertical", &operation{
		name:        "Mirror Vertically",
		description: "Swaps top and bottom",
		run: func(input *raster.Buffer, _ Params) (*raster.Buffer, error) {
			return geometry.MirrorVertical(input), nil
		},
	})
}
