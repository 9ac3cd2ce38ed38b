// Package metrics scores a processed image against its source: fidelity
// (MSE, PSNR, SSIM), binarisation quality (F-measure) and contrast or
// sharpness preservation.
package metrics

import (
	"fmt"
	"slices"
	"time"

	"pixel-processing/internal/raster"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *raster.Buffer) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange returns the practical value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with every default metric registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("f_measure", NewFMeasure())
	e.Register("mse", NewMSE())
	e.Register("contrast_ratio", NewContrastRatio())
	e.Register("sharpness", NewSharpness())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists the registered metrics in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *raster.Buffer) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric that applies to the pair.
// Metrics that fail, such as fidelity metrics on images of different size,
// are left out.
func (e *Evaluator) CalculateAll(original, processed *raster.Buffer) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

func (e *Evaluator) CalculatePSNR(original, processed *raster.Buffer) (float64, error) {
	return e.Calculate("psnr", original, processed)
}

func (e *Evaluator) CalculateSSIM(original, processed *raster.Buffer) (float64, error) {
	return e.Calculate("ssim", original, processed)
}

func (e *Evaluator) CalculateFMeasure(original, processed *raster.Buffer) (float64, error) {
	return e.Calculate("f_measure", original, processed)
}

// EvaluateStep calculates the metrics relevant to one processing step
func (e *Evaluator) EvaluateStep(before, after *raster.Buffer, algorithm string) map[string]float64 {
	metrics := make(map[string]float64)

	if psnr, err := e.CalculatePSNR(before, after); err == nil {
		metrics["psnr"] = psnr
	}
	if ssim, err := e.CalculateSSIM(before, after); err == nil {
		metrics["ssim"] = ssim
	}

	// Add step-specific metrics based on algorithm type
	switch algorithm {
	case "threshold", "quantile_threshold", "median_threshold", "intermeans_threshold",
		"otsu_multi", "otsu_local", "otsu_2d", "adaptive_threshold", "niblack", "sauvola", "wolf_jolion", "nick":
		if fMeasure, err := e.CalculateFMeasure(before, after); err == nil {
			metrics["f_measure"] = fMeasure
		}

	case "mean", "median", "vector_median", "gaussian", "bilateral", "guided":
		if contrast, err := e.Calculate("contrast_ratio", before, after); err == nil {
			metrics["contrast_preservation"] = contrast
		}

	case "erosion", "dilation", "opening", "closing", "morphological_smooth":
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			metrics["edge_preservation"] = sharpness
		}
	}

	return metrics
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		lo, hi := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}

	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	Range        [2]float64 `json:"range" yaml:"range"`
	HigherBetter bool       `json:"higher_better" yaml:"higher_better"`
}

// QualityReport contains comprehensive quality assessment
type QualityReport struct {
	OverallScore float64            `json:"overall_score" yaml:"overall_score"`
	Metrics      map[string]float64 `json:"metrics" yaml:"metrics"`
	Analysis     QualityAnalysis    `json:"analysis" yaml:"analysis"`
	Timestamp    string             `json:"timestamp" yaml:"timestamp"`
}

// QualityAnalysis provides interpretation of metrics
type QualityAnalysis struct {
	QualityLevel string   `json:"quality_level" yaml:"quality_level"` // "excellent", "good", "fair", "poor"
	Issues       []string `json:"issues" yaml:"issues"`
	Suggestions  []string `json:"suggestions" yaml:"suggestions"`
}

func (e *Evaluator) GenerateReport(original, processed *raster.Buffer) QualityReport {
	metrics := e.CalculateAll(original, processed)
	return QualityReport{
		OverallScore: e.calculateOverallScore(metrics),
		Metrics:      metrics,
		Analysis:     e.analyzeQuality(metrics),
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}
}

// calculateOverallScore is the weighted mean of the normalised metrics, in
// percent.
func (e *Evaluator) calculateOverallScore(metrics map[string]float64) float64 {
	weights := map[string]float64{
		"psnr":           0.3,
		"ssim":           0.3,
		"f_measure":      0.2,
		"contrast_ratio": 0.1,
		"sharpness":      0.1,
	}

	totalWeight := 0.0
	weightedSum := 0.0

	for name, weight := range weights {
		if value, exists := metrics[name]; exists {
			weightedSum += e.normalizeMetric(name, value) * weight
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0
	}

	return (weightedSum / totalWeight) * 100
}

// normalizeMetric maps a value into [0,1], 1 being best
func (e *Evaluator) normalizeMetric(name string, value float64) float64 {
	metric, exists := e.metrics[name]
	if !exists {
		return 0
	}

	lo, hi := metric.GetRange()
	if hi == lo {
		return 1.0
	}
	value = min(max(value, lo), hi)
	normalized := (value - lo) / (hi - lo)

	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}

	return normalized
}

func (e *Evaluator) analyzeQuality(metrics map[string]float64) QualityAnalysis {
	analysis := QualityAnalysis{
		Issues:      make([]string, 0),
		Suggestions: make([]string, 0),
	}

	overallScore := e.calculateOverallScore(metrics)
	switch {
	case overallScore >= 90:
		analysis.QualityLevel = "excellent"
	case overallScore >= 75:
		analysis.QualityLevel = "good"
	case overallScore >= 60:
		analysis.QualityLevel = "fair"
	default:
		analysis.QualityLevel = "poor"
	}

	if psnr, exists := metrics["psnr"]; exists && psnr < 20 {
		analysis.Issues = append(analysis.Issues, "Low PSNR indicates significant noise or distortion")
		analysis.Suggestions = append(analysis.Suggestions, "Consider noise reduction or different binarization parameters")
	}

	if ssim, exists := metrics["ssim"]; exists && ssim < 0.7 {
		analysis.Issues = append(analysis.Issues, "Low SSIM indicates poor structural similarity")
		analysis.Suggestions = append(analysis.Suggestions, "Adjust processing parameters to preserve image structure")
	}

	if fMeasure, exists := metrics["f_measure"]; exists && fMeasure < 0.8 {
		analysis.Issues = append(analysis.Issues, "Low F-measure indicates poor text/background separation")
		analysis.Suggestions = append(analysis.Suggestions, "Try a different binarization algorithm or adjust the window size")
	}

	return analysis
}
