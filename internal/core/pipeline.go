package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-processing/internal/algorithms"
	"pixel-processing/internal/metrics"
	"pixel-processing/internal/raster"
)

// ProcessingStep represents a sequential processing step
type ProcessingStep struct {
	Algorithm  string                 `json:"algorithm" yaml:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Enabled    bool                   `json:"enabled" yaml:"enabled"`
}

// StepResult records one executed step.
type StepResult struct {
	Algorithm string             `json:"algorithm" yaml:"algorithm"`
	Duration  time.Duration      `json:"duration" yaml:"duration"`
	Metrics   map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Result is the outcome of a full pipeline run.
type Result struct {
	Output  *raster.Buffer
	Steps   []StepResult
	Metrics map[string]float64
}

// Pipeline applies registry algorithms in order to the original image of
// an ImageData. Every step receives the previous step's output; the
// original is never modified.
type Pipeline struct {
	mu          sync.RWMutex
	imageData   *ImageData
	metricsEval *metrics.Evaluator
	logger      logrus.FieldLogger
	steps       []ProcessingStep
}

func NewPipeline(imageData *ImageData, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		imageData:   imageData,
		metricsEval: metrics.NewEvaluator(),
		logger:      logger,
		steps:       make([]ProcessingStep, 0),
	}
}

// checkStep normalises the parameters of step and validates them against
// the registry.
func checkStep(step ProcessingStep) (ProcessingStep, error) {
	if !algorithms.IsValidAlgorithm(step.Algorithm) {
		return step, fmt.Errorf("unknown algorithm: %s", step.Algorithm)
	}
	params, err := algorithms.NormalizeParameters(step.Algorithm, step.Parameters)
	if err != nil {
		return step, err
	}
	if err := algorithms.ValidateParameters(step.Algorithm, params); err != nil {
		return step, fmt.Errorf("invalid parameters for %s: %w", step.Algorithm, err)
	}
	step.Parameters = params
	return step, nil
}

// AddStep appends an enabled step
func (p *Pipeline) AddStep(algorithm string, parameters map[string]interface{}) error {
	step, err := checkStep(ProcessingStep{Algorithm: algorithm, Parameters: parameters, Enabled: true})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, step)
	p.logger.WithField("algorithm", algorithm).Debug("Sequential step added")
	return nil
}

// SetSteps replaces all steps. Nothing changes if any step is invalid.
func (p *Pipeline) SetSteps(steps []ProcessingStep) error {
	checked := make([]ProcessingStep, len(steps))
	for i, s := range steps {
		c, err := checkStep(s)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		checked[i] = c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = checked
	return nil
}

// GetSteps returns a copy of the steps
func (p *Pipeline) GetSteps() []ProcessingStep {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.steps)
}

func (p *Pipeline) RemoveStep(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("step index %d out of range", index)
	}
	p.steps = slices.Delete(p.steps, index, index+1)
	return nil
}

func (p *Pipeline) SetStepEnabled(index int, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("step index %d out of range", index)
	}
	p.steps[index].Enabled = enabled
	return nil
}

func (p *Pipeline) ClearSteps() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = p.steps[:0]
}

// Process runs every enabled step on the original image, stores the final
// output as the processed image and scores it against the original. The
// context is checked between steps.
func (p *Pipeline) Process(ctx context.Context) (*Result, error) {
	original := p.imageData.GetOriginal()
	if original == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	start := time.Now()
	current := original
	result := &Result{}

	for i, step := range p.GetSteps() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !step.Enabled {
			continue
		}

		log := p.logger.WithFields(logrus.Fields{
			"step":      i + 1,
			"algorithm": step.Algorithm,
		})
		log.Debug("Step started")

		stepStart := time.Now()
		output, err := algorithms.Apply(step.Algorithm, current, step.Parameters)
		if err != nil {
			log.WithError(err).Error("Algorithm failed")
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{
			Algorithm: step.Algorithm,
			Duration:  time.Since(stepStart),
			Metrics:   p.metricsEval.EvaluateStep(current, output, step.Algorithm),
		}
		result.Steps = append(result.Steps, sr)
		log.WithField("duration", sr.Duration).Info("Step finished")

		current = output
	}

	if err := p.imageData.SetProcessed(current); err != nil {
		return nil, err
	}
	result.Output = current
	result.Metrics = p.metricsEval.CalculateAll(original, current)

	p.logger.WithFields(logrus.Fields{
		"steps":    len(result.Steps),
		"duration": time.Since(start),
	}).Info("Pipeline finished")
	return result, nil
}
