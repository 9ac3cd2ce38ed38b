package core

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the on-disk form of a pipeline:
//
//	steps:
//	  - algorithm: gaussian
//	    parameters:
//	      variance: 2
//	  - algorithm: sauvola
//	    enabled: false
type PipelineConfig struct {
	Steps []ProcessingStep `yaml:"steps"`
}

// UnmarshalYAML treats a missing enabled key as true.
func (s *ProcessingStep) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Algorithm  string                 `yaml:"algorithm"`
		Parameters map[string]interface{} `yaml:"parameters"`
		Enabled    *bool                  `yaml:"enabled"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	s.Algorithm = raw.Algorithm
	s.Parameters = raw.Parameters
	s.Enabled = raw.Enabled == nil || *raw.Enabled
	return nil
}

// ParseSteps decodes a YAML pipeline. Unknown top-level keys are rejected.
func ParseSteps(data []byte) ([]ProcessingStep, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg PipelineConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	for i, s := range cfg.Steps {
		if s.Algorithm == "" {
			return nil, fmt.Errorf("parse pipeline: step %d has no algorithm", i+1)
		}
	}
	return cfg.Steps, nil
}

// LoadSteps reads a YAML pipeline file.
func LoadSteps(path string) ([]ProcessingStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	steps, err := ParseSteps(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// SaveSteps writes steps as a YAML pipeline file.
func SaveSteps(path string, steps []ProcessingStep) error {
	data, err := yaml.Marshal(PipelineConfig{Steps: steps})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
