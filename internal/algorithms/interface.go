// Package algorithms exposes every image operation behind one interface
// and a name-keyed registry, the surface a presentation layer builds its
// forms and pipelines from.
package algorithms

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-processing/internal/raster"
)

// Algorithm defines the interface for image processing algorithms
type Algorithm interface {
	Apply(input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"` // "int", "float", "bool", "string", "enum"
	Min         interface{} `json:"min,omitempty" yaml:"min,omitempty"`
	Max         interface{} `json:"max,omitempty" yaml:"max,omitempty"`
	Default     interface{} `json:"default" yaml:"default"`
	Description string      `json:"description" yaml:"description"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"` // For enum type
}

// Category names used by GetAlgorithmsByCategory.
const (
	CategoryPointwise    = "Pointwise"
	CategoryFilters      = "Filters"
	CategoryEdges        = "Edges"
	CategoryThresholding = "Thresholding"
	CategoryMorphology   = "Morphology"
	CategoryGeometry     = "Geometry"
	CategorySegmentation = "Segmentation"
)

var (
	mu         sync.RWMutex
	algorithms = make(map[string]Algorithm)
	categories = make(map[string][]string)
	logger     = newDiscardLogger()
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger routes the per-call debug records of Apply to l. A nil l
// silences them again.
func SetLogger(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = newDiscardLogger()
	}
	logger = l
}

func currentLogger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Register adds algorithm under name in the given category, replacing any
// previous registration of that name.
func Register(category, name string, algorithm Algorithm) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := algorithms[name]; !exists {
		categories[category] = append(categories[category], name)
	}
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	mu.RLock()
	defer mu.RUnlock()
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

// Apply validates params and runs the named algorithm on input.
func Apply(name string, input *raster.Buffer, params map[string]interface{}) (*raster.Buffer, error) {
	algorithm, exists := Get(name)
	if !exists {
		return nil, fmt.Errorf("algorithm not found: %s", name)
	}
	if input == nil {
		return nil, fmt.Errorf("%s: %w: input image is empty", name, raster.ErrInvalidArgument)
	}
	if err := algorithm.Validate(params); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log := currentLogger()
	start := time.Now()
	output, err := algorithm.Apply(input, params)
	fields := logrus.Fields{
		"algorithm": name,
		"width":     input.Width,
		"height":    input.Height,
		"channels":  input.Channels,
		"duration":  time.Since(start),
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Debug("Algorithm failed")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.WithFields(fields).Debug("Algorithm applied")
	return output, nil
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := Get(name)
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := Get(name)
	return exists
}

func GetAllAlgorithms() map[string]Algorithm {
	mu.RLock()
	defer mu.RUnlock()
	result := make(map[string]Algorithm, len(algorithms))
	for name, algorithm := range algorithms {
		result[name] = algorithm
	}
	return result
}

// GetAlgorithmsByCategory lists registered names per category in
// registration order.
func GetAlgorithmsByCategory() map[string][]string {
	mu.RLock()
	defer mu.RUnlock()
	result := make(map[string][]string, len(categories))
	for c, names := range categories {
		result[c] = slices.Clone(names)
	}
	return result
}

func init() {
	registerPointwise()

	Register(CategoryFilters, "mean", newMeanFilter())
	Register(CategoryFilters, "median", NewMedianFilter())
	Register(CategoryFilters, "vector_median", newVectorMedianFilter())
	Register(CategoryFilters, "gaussian", NewGaussianFilter())
	Register(CategoryFilters, "bilateral", NewBilateralFilter())
	Register(CategoryFilters, "guided", newGuidedFilter())

	registerEdges()

	Register(CategoryThresholding, "threshold", newManualThreshold())
	Register(CategoryThresholding, "quantile_threshold", newQuantileThreshold())
	Register(CategoryThresholding, "median_threshold", newMedianThreshold())
	Register(CategoryThresholding, "intermeans_threshold", newIntermeansThreshold())
	Register(CategoryThresholding, "otsu_multi", NewMultiOtsu())
	Register(CategoryThresholding, "otsu_local", newLocalOtsu())
	Register(CategoryThresholding, "otsu_2d", newOtsu2D())
	Register(CategoryThresholding, "adaptive_threshold", NewAdaptiveThreshold())
	Register(CategoryThresholding, "niblack", NewNiblack())
	Register(CategoryThresholding, "sauvola", NewSauvola())
	Register(CategoryThresholding, "wolf_jolion", NewWolfJolion())
	Register(CategoryThresholding, "nick", NewNICK())

	Register(CategoryMorphology, "erosion", NewErosion())
	Register(CategoryMorphology, "dilation", NewDilation())
	Register(CategoryMorphology, "opening", NewOpening())
	Register(CategoryMorphology, "closing", NewClosing())
	registerGrayMorphology()

	registerGeometry()

	Register(CategorySegmentation, "hough_lines", NewHoughLines())
}
