package algorithms

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"pixel-processing/internal/raster"
	"pixel-processing/internal/segmentation"
)

// HoughLines detects straight lines in a binary edge image and draws them
// in red over it
type HoughLines struct{}

func NewHoughLines() *HoughLines {
	return &HoughLines{}
}

func (h *HoughLines) Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input image is empty", raster.ErrInvalidArgument)
	}
	p := withDefaults(h.GetParameterInfo(), params)

	angleRange := segmentation.TwoQuadrants
	if p.String("range", "two_quadrants") == "three_quadrants" {
		angleRange = segmentation.ThreeQuadrants
	}

	output, lines, err := segmentation.Hough(binaryPlane(input), angleRange, p.Int("min_votes", 50), p.Int("max_lines", 10))
	if err != nil {
		return nil, err
	}

	currentLogger().WithFields(logrus.Fields{
		"lines": len(lines),
		"range": angleRange.String(),
	}).Debug("Hough transform completed")
	return output, nil
}

func (h *HoughLines) GetDefaultParams() map[string]interface{} {
	return defaultsOf(h.GetParameterInfo())
}

func (h *HoughLines) GetName() string {
	return "Hough Lines"
}

func (h *HoughLines) GetDescription() string {
	return "Line detection over a binary edge image"
}

func (h *HoughLines) Validate(params map[string]interface{}) error {
	return checkParams(h.GetParameterInfo(), params)
}

func (h *HoughLines) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "range",
			Type:        "enum",
			Default:     "two_quadrants",
			Description: "Theta interval of the accumulator",
			Options:     []string{"two_quadrants", "three_quadrants"},
		},
		{
			Name:        "min_votes",
			Type:        "int",
			Min:         1.0,
			Max:         100000.0,
			Default:     50.0,
			Description: "Votes a cell needs to count as a line",
		},
		{
			Name:        "max_lines",
			Type:        "int",
			Min:         0.0,
			Max:         1000.0,
			Default:     10.0,
			Description: "Maximum number of lines drawn (0 for all)",
		},
	}
}
