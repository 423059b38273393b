// Package config reads and writes the YAML parameter file of the descmatch
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/viant/descmatch/index/kdforest"
	"github.com/viant/descmatch/match"
)

// MatchingConfig mirrors match.Configuration.
type MatchingConfig struct {
	RatioThreshold float64 `yaml:"ratio_threshold"`
	Trees          int     `yaml:"trees"`
	SearchBudget   int     `yaml:"search_budget"`
	TopN           int     `yaml:"top_n"`
	LineThickness  int     `yaml:"line_thickness"`
}

// IndexConfig holds forest build settings that do not affect match semantics.
type IndexConfig struct {
	Seed        int64 `yaml:"seed"`
	Parallelism int   `yaml:"parallelism,omitempty"`
}

// Parameters is the root of the parameter file.
type Parameters struct {
	Database string         `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	Index    IndexConfig    `yaml:"index"`
}

// Load reads parameters from path. If the file does not exist, it returns
// defaults. Fields left out of the file keep their default values.
func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	params := Default()
	if err := yaml.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return params, nil
}

// Save writes params to path, creating directories as needed.
func Save(path string, params *Parameters) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the parameters used when no file is present.
func Default() *Parameters {
	return &Parameters{
		Database: "descmatch.sqlite",
		Matching: MatchingConfig{
			RatioThreshold: match.DefaultRatioThreshold,
			Trees:          match.DefaultTreesCount,
			SearchBudget:   match.DefaultSearchBudget,
			TopN:           match.DefaultTopN,
			LineThickness:  match.DefaultLineThickness,
		},
		Index: IndexConfig{Seed: kdforest.DefaultSeed},
	}
}

// Configuration validates the matching section. Errors wrap
// match.ErrConfiguration.
func (p *Parameters) Configuration() (match.Configuration, error) {
	m := p.Matching
	return match.NewConfiguration(
		match.WithRatioThreshold(m.RatioThreshold),
		match.WithTreesCount(m.Trees),
		match.WithSearchBudget(m.SearchBudget),
		match.WithTopN(m.TopN),
		match.WithLineThickness(m.LineThickness),
	)
}
