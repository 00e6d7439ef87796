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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigetl/sigetl"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlJob = `
input:
  type: csv
  path: signals.csv
output:
  type: jsonl
  path: features.jsonl
sampling_frequency: 1000
values_column: vibration
keep_values: true
error_strategy: skip_errors
transformations:
  - name: fft
    primitive: frequency.fft_real
  - name: band
    primitive: frequency.band
    init_params:
      low: 0
      high: 250
aggregations:
  - name: mean
    primitive: statistical.mean
`

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "job.yaml", yamlJob))
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Input.Type)
	assert.Equal(t, "features.jsonl", cfg.Output.Path)
	assert.Equal(t, "vibration", cfg.Values())
	assert.True(t, cfg.KeepValues)
	assert.Equal(t, sigetl.SkipErrors, cfg.Strategy())

	require.Len(t, cfg.Transformations, 2)
	assert.Equal(t, "frequency.band", cfg.Transformations[1].Primitive)
	assert.EqualValues(t, 250, cfg.Transformations[1].InitParams["high"])

	rate, err := cfg.Rate()
	require.NoError(t, err)
	hz, err := rate.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, hz)
}

func TestLoadTOML(t *testing.T) {
	content := `
sampling_frequency = "fs"

[input]
type = "parquet"
path = "signals.parquet"

[output]
type = "csv"
path = "features.csv"

[[aggregations]]
name = "rms"
primitive = "statistical.rms"
`
	cfg, err := Load(writeConfig(t, "job.toml", content))
	require.NoError(t, err)

	assert.Equal(t, "parquet", cfg.Input.Type)
	rate, err := cfg.Rate()
	require.NoError(t, err)
	assert.True(t, rate.IsColumn())
	assert.Equal(t, sigetl.DefaultValuesColumn, cfg.Values())
	assert.Equal(t, sigetl.FailFast, cfg.Strategy())
}

func TestLoadJSON(t *testing.T) {
	content := `{
  "input": {"type": "jsonl", "path": "in.jsonl"},
  "output": {"type": "jsonl", "path": "out.jsonl"},
  "aggregations": [{"name": "mean", "primitive": "statistical.mean"}]
}`
	cfg, err := Load(writeConfig(t, "job.json", content))
	require.NoError(t, err)
	assert.Equal(t, "jsonl", cfg.Input.Type)

	// Unset sampling frequency defaults to a 1 Hz constant.
	rate, err := cfg.Rate()
	require.NoError(t, err)
	hz, err := rate.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, hz)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "job.ini", "input=csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".ini")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Input:        Endpoint{Type: "csv", Path: "in.csv"},
			Output:       Endpoint{Type: "csv", Path: "out.csv"},
			Aggregations: []sigetl.Step{{Name: "mean", Primitive: "statistical.mean"}},
		}
	}

	valid := base()
	assert.NoError(t, valid.Validate())

	missingInput := base()
	missingInput.Input.Type = ""
	assert.Error(t, missingInput.Validate())

	missingOutput := base()
	missingOutput.Output.Type = ""
	assert.Error(t, missingOutput.Validate())

	noAggregations := base()
	noAggregations.Aggregations = nil
	assert.Error(t, noAggregations.Validate())

	namelessStep := base()
	namelessStep.Transformations = []sigetl.Step{{Primitive: "frequency.fft_real"}}
	assert.Error(t, namelessStep.Validate())

	badStrategy := base()
	badStrategy.ErrorStrategy = "explode"
	assert.Error(t, badStrategy.Validate())

	badRate := base()
	badRate.SamplingFrequency = []int{1}
	assert.Error(t, badRate.Validate())
}
