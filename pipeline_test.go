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

package sigetl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPipelineOutputNaming(t *testing.T) {
	transformations := []Step{
		{Name: "rm", Primitive: "amplitude.remove_mean"},
		{Name: "fft", Primitive: "frequency.fft_real"},
	}
	aggregations := []Step{
		{Name: "mean", Primitive: "statistical.mean"},
		{Name: "std", Primitive: "statistical.std"},
	}

	pipeline, err := BuildPipeline(transformations, aggregations)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rm.fft.mean.value",
		"rm.fft.std.value",
	}, pipeline.OutputNames())
	assert.Equal(t, []string{
		"amplitude.remove_mean",
		"frequency.fft_real",
		"statistical.mean",
		"statistical.std",
	}, pipeline.Primitives())
}

func TestBuildPipelineMultiOutputAggregation(t *testing.T) {
	pipeline, err := BuildPipeline(
		[]Step{{Name: "ps", Primitive: "frequency.power_spectrum"}},
		[]Step{{Name: "peak", Primitive: "frequency.peak"}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ps.peak.frequency_value",
		"ps.peak.amplitude_value",
	}, pipeline.OutputNames())
}

func TestBuildPipelineDisambiguatesRepeatedPrimitives(t *testing.T) {
	transformations := []Step{
		{Name: "low", Primitive: "frequency.fft_real"},
		{Name: "narrow", Primitive: "frequency.band", InitParams: map[string]interface{}{"low": 0.0, "high": 0.1}},
		{Name: "wide", Primitive: "frequency.band", InitParams: map[string]interface{}{"low": 0.0, "high": 0.4}},
	}
	aggregations := []Step{
		{Name: "m1", Primitive: "statistical.mean"},
		{Name: "m2", Primitive: "statistical.mean"},
	}

	pipeline, err := BuildPipeline(transformations, aggregations)
	require.NoError(t, err)

	// Both mean instances produce distinct outputs despite the shared primitive.
	assert.Equal(t, []string{
		"low.narrow.wide.m1.value",
		"low.narrow.wide.m2.value",
	}, pipeline.OutputNames())

	outputs := pipeline.Outputs()
	assert.Equal(t, "statistical.mean#1.value", outputs[0].Variable)
	assert.Equal(t, "statistical.mean#2.value", outputs[1].Variable)

	// Init params stay attached to the occurrence, not the primitive name.
	params := pipeline.InitParams()
	assert.Equal(t, 0.1, params["frequency.band#1"]["high"])
	assert.Equal(t, 0.4, params["frequency.band#2"]["high"])
	assert.NotContains(t, params, "statistical.mean#1")
}

func TestBuildPipelineEmptyTransformationsLeadingDot(t *testing.T) {
	pipeline, err := BuildPipeline(nil, []Step{{Name: "mean", Primitive: "statistical.mean"}})
	require.NoError(t, err)
	assert.Equal(t, []string{".mean.value"}, pipeline.OutputNames())
}

func TestBuildPipelineRejectsUnknownPrimitive(t *testing.T) {
	_, err := BuildPipeline(nil, []Step{{Name: "x", Primitive: "statistical.nope"}})
	require.Error(t, err)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "x", buildErr.Step)
}

func TestBuildPipelineRejectsKindMismatch(t *testing.T) {
	// An aggregation cannot appear in the transformation list, and vice versa.
	_, err := BuildPipeline(
		[]Step{{Name: "bad", Primitive: "statistical.mean"}},
		[]Step{{Name: "mean", Primitive: "statistical.mean"}},
	)
	assert.Error(t, err)

	_, err = BuildPipeline(nil, []Step{{Name: "bad", Primitive: "frequency.fft_real"}})
	assert.Error(t, err)
}

func TestBuildPipelineRejectsBadInitParams(t *testing.T) {
	_, err := BuildPipeline(
		[]Step{{Name: "band", Primitive: "frequency.band", InitParams: map[string]interface{}{"low": 1.0}}},
		[]Step{{Name: "mean", Primitive: "statistical.mean"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high")
}

func TestPipelineRunFFTFirstFrequency(t *testing.T) {
	pipeline, err := BuildPipeline(
		[]Step{{Name: "fft", Primitive: "frequency.fft_real"}},
		[]Step{{Name: "first", Primitive: "frequency.first_frequency"}},
	)
	require.NoError(t, err)

	results, err := pipeline.Run([]float64{1, 2, 3, 4}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0])
}

func TestPipelineRunFFTMean(t *testing.T) {
	pipeline, err := BuildPipeline(
		[]Step{{Name: "fft", Primitive: "frequency.fft_real"}},
		[]Step{{Name: "mean", Primitive: "statistical.mean"}},
	)
	require.NoError(t, err)

	// Real DFT parts of [1,2,3,4] are [10,-2,-2,-2]; their mean is 1.
	results, err := pipeline.Run([]float64{1, 2, 3, 4}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0], 1e-12)
}

func TestApplyRow(t *testing.T) {
	pipeline, err := BuildPipeline(
		[]Step{{Name: "fft", Primitive: "frequency.fft_real"}},
		[]Step{{Name: "first", Primitive: "frequency.first_frequency"}},
	)
	require.NoError(t, err)

	row := Record{"id": 7, "values": []float64{1, 2, 3, 4}}
	features, err := ApplyRow(row, pipeline, "values", ConstantRate(10))
	require.NoError(t, err)
	assert.Equal(t, Record{"fft.first.value": 0.0}, features)
}

func TestApplyRowHeterogeneousValues(t *testing.T) {
	pipeline, err := BuildPipeline(nil, []Step{{Name: "mean", Primitive: "statistical.mean"}})
	require.NoError(t, err)

	// JSON decoding produces []interface{} rather than []float64.
	row := Record{"values": []interface{}{1.0, 2.0, 3.0}}
	features, err := ApplyRow(row, pipeline, "values", ConstantRate(1))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, features[".mean.value"].(float64), 1e-12)
}

func TestApplyRowMissingValuesColumn(t *testing.T) {
	pipeline, err := BuildPipeline(nil, []Step{{Name: "mean", Primitive: "statistical.mean"}})
	require.NoError(t, err)

	_, err = ApplyRow(Record{"other": 1}, pipeline, "values", ConstantRate(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `values column "values"`)
}

func TestApplyRowRateColumn(t *testing.T) {
	pipeline, err := BuildPipeline(
		[]Step{{Name: "ps", Primitive: "frequency.power_spectrum"}},
		[]Step{{Name: "peak", Primitive: "frequency.peak"}},
	)
	require.NoError(t, err)

	// [0,1,0,-1] concentrates power in the second bin, whose frequency value
	// depends on the per-row rate.
	low, err := ApplyRow(Record{"values": []float64{0, 1, 0, -1}, "fs": 1.0}, pipeline, "values", RateColumn("fs"))
	require.NoError(t, err)
	high, err := ApplyRow(Record{"values": []float64{0, 1, 0, -1}, "fs": 0.5}, pipeline, "values", RateColumn("fs"))
	require.NoError(t, err)

	assert.InDelta(t, 0.25, low["ps.peak.frequency_value"].(float64), 1e-12)
	assert.InDelta(t, 0.5, high["ps.peak.frequency_value"].(float64), 1e-12)
}
