package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/crashsearch/pkg/crashsearch/internalerr"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Defaults applied when the YAML leaves a knob unset.
const (
	DefaultMaxQueryBytes  = 500
	DefaultFuzzyThreshold = 0.2
	// DefaultVehicleTypeLimit caps dataset-derived vehicle types to the most
	// frequent ones so free-text typos in the source data never become
	// vocabulary.
	DefaultVehicleTypeLimit = 50
)

// Config is the vocabulary and threshold configuration.
//
// Expected YAML:
//
//	limits:
//	  max_query_bytes: 500
//	  fuzzy_threshold: 0.2
//	years:
//	  min: 2012
//	  max: 2024
//	categories:
//	  borough:
//	    - canonical: BROOKLYN
//	      aliases: [bk, kings county]
type Config struct {
	Limits     Limits                   `yaml:"limits"`
	Years      YearBounds               `yaml:"years"`
	Categories map[string][]EntryConfig `yaml:"categories"`
}

// Limits holds the tunable query-processing bounds.
type Limits struct {
	MaxQueryBytes  int     `yaml:"max_query_bytes"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// YearBounds bounds plausible year filters to the dataset's coverage.
type YearBounds struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// EntryConfig is one curated vocabulary entry.
type EntryConfig struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// Load reads the vocabulary configuration from a YAML file and applies
// defaults. A missing or unreadable file is an error: the recognizer cannot
// function without its reference lists.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Limits.MaxQueryBytes <= 0 {
		c.Limits.MaxQueryBytes = DefaultMaxQueryBytes
	}
	if c.Limits.FuzzyThreshold <= 0 {
		c.Limits.FuzzyThreshold = DefaultFuzzyThreshold
	}
}

func (c *Config) validate() error {
	if c.Limits.FuzzyThreshold >= 1 {
		return fmt.Errorf("fuzzy_threshold %v out of range: %w", c.Limits.FuzzyThreshold, internalerr.ErrInvalidConfig)
	}
	for name := range c.Categories {
		if !vocab.Category(name).Valid() {
			return fmt.Errorf("unknown category %q: %w", name, internalerr.ErrInvalidConfig)
		}
	}
	if c.Years.Min != 0 || c.Years.Max != 0 {
		if c.Years.Min <= 0 || c.Years.Max < c.Years.Min {
			return fmt.Errorf("years [%d, %d]: %w", c.Years.Min, c.Years.Max, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}
