// Package scenario loads demo scenario definitions: a set of pipelines,
// the strategy each one runs, and the items fed through them.
package scenario

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/streamkit/procflow/internal/strategy"
)

// Scenario describes a named set of demo pipelines.
type Scenario struct {
	Name      string         `yaml:"name"`
	Pipelines []PipelineSpec `yaml:"pipelines"`
}

// PipelineSpec describes one pipeline run: its sizing, the strategy to
// install and the numeric items to feed.
type PipelineSpec struct {
	Name     string             `yaml:"name"`
	Workers  int                `yaml:"workers"`
	Capacity int                `yaml:"capacity"`
	Strategy string             `yaml:"strategy"`
	Params   map[string]float64 `yaml:"params"`
	Script   string             `yaml:"script"`
	Inputs   []float64          `yaml:"inputs"`
	Rate     float64            `yaml:"rate"` // items per second; 0 means unpaced
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects structurally unusable scenarios.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Pipelines) == 0 {
		return fmt.Errorf("scenario %q defines no pipelines", s.Name)
	}
	for i, ps := range s.Pipelines {
		if ps.Name == "" {
			return fmt.Errorf("pipeline %d has no name", i)
		}
		if ps.Strategy == "" && ps.Script == "" {
			return fmt.Errorf("pipeline %q needs a strategy or a script", ps.Name)
		}
		if ps.Strategy != "" && ps.Script != "" {
			return fmt.Errorf("pipeline %q sets both strategy and script", ps.Name)
		}
		if len(ps.Inputs) == 0 {
			return fmt.Errorf("pipeline %q has no inputs", ps.Name)
		}
		if ps.Workers < 0 || ps.Capacity < 0 || ps.Rate < 0 {
			return fmt.Errorf("pipeline %q has negative sizing", ps.Name)
		}
	}
	return nil
}

// BuildStrategy constructs the pipeline's strategy, from the registry for
// named kinds or compiled from source for scripts.
func (ps PipelineSpec) BuildStrategy(reg *strategy.Registry[float64]) (strategy.Strategy[float64], error) {
	if ps.Script != "" {
		return strategy.NewScript[float64](ps.Script, 0)
	}
	return reg.Build(strategy.Kind(ps.Strategy), strategy.Params(ps.Params))
}
