//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SigETL Authors
//
// This file is part of SigETL.
//
// SigETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SigETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SigETL. If not, see https://www.gnu.org/licenses/.

// Package config loads SigETL job configurations from YAML, TOML, or JSON
// files. A job names an input, an output, the transformation and aggregation
// steps to compose, and the sampling frequency policy.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sigetl/sigetl"
)

// Endpoint describes one side of a job: where rows come from or where feature
// rows go. Type selects the reader or writer implementation; the remaining
// fields apply depending on the type.
type Endpoint struct {
	Type   string `json:"type" yaml:"type" toml:"type"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty" toml:"dsn,omitempty"`
	Query  string `json:"query,omitempty" yaml:"query,omitempty" toml:"query,omitempty"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty" toml:"table,omitempty"`
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty" toml:"suffix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
}

// Config is a complete SigETL job description.
type Config struct {
	Input  Endpoint `json:"input" yaml:"input" toml:"input"`
	Output Endpoint `json:"output" yaml:"output" toml:"output"`

	// SamplingFrequency is a number (constant rate in Hz) or a string (the
	// name of the column holding the per-row rate). Unset means 1 Hz.
	SamplingFrequency interface{} `json:"sampling_frequency,omitempty" yaml:"sampling_frequency,omitempty" toml:"sampling_frequency,omitempty"`

	ValuesColumn string `json:"values_column,omitempty" yaml:"values_column,omitempty" toml:"values_column,omitempty"`
	KeepValues   bool   `json:"keep_values,omitempty" yaml:"keep_values,omitempty" toml:"keep_values,omitempty"`

	Transformations []sigetl.Step `json:"transformations" yaml:"transformations" toml:"transformations"`
	Aggregations    []sigetl.Step `json:"aggregations" yaml:"aggregations" toml:"aggregations"`

	// ErrorStrategy is one of "fail_fast", "skip_errors", "collect_errors".
	ErrorStrategy string `json:"error_strategy,omitempty" yaml:"error_strategy,omitempty" toml:"error_strategy,omitempty"`
}

// Load reads a job configuration, choosing the decoder from the file
// extension (.yaml/.yml, .toml, or .json), and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse json config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	if c.Input.Type == "" {
		return fmt.Errorf("input.type is required")
	}
	if c.Output.Type == "" {
		return fmt.Errorf("output.type is required")
	}
	if len(c.Aggregations) == 0 {
		return fmt.Errorf("at least one aggregation is required")
	}
	for i, step := range c.Transformations {
		if step.Name == "" || step.Primitive == "" {
			return fmt.Errorf("transformations[%d]: name and primitive are required", i)
		}
	}
	for i, step := range c.Aggregations {
		if step.Name == "" || step.Primitive == "" {
			return fmt.Errorf("aggregations[%d]: name and primitive are required", i)
		}
	}
	switch c.ErrorStrategy {
	case "", "fail_fast", "skip_errors", "collect_errors":
	default:
		return fmt.Errorf("unknown error_strategy %q", c.ErrorStrategy)
	}
	if _, err := sigetl.RateFromValue(c.SamplingFrequency); err != nil {
		return err
	}
	return nil
}

// Rate returns the sampling frequency policy of the job.
func (c *Config) Rate() (sigetl.SamplingFrequency, error) {
	return sigetl.RateFromValue(c.SamplingFrequency)
}

// Values returns the configured values column, defaulting to "values".
func (c *Config) Values() string {
	if c.ValuesColumn == "" {
		return sigetl.DefaultValuesColumn
	}
	return c.ValuesColumn
}

// Strategy maps the configured error strategy to its runner constant.
func (c *Config) Strategy() sigetl.ErrorStrategy {
	switch c.ErrorStrategy {
	case "skip_errors":
		return sigetl.SkipErrors
	case "collect_errors":
		return sigetl.CollectErrors
	default:
		return sigetl.FailFast
	}
}
