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

package aggregations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigetl/sigetl/primitive"
)

// aggregate builds the named aggregation from the default registry and runs it.
func aggregate(t *testing.T, name string, s primitive.Signal) []float64 {
	t.Helper()
	spec, err := primitive.Lookup(name)
	require.NoError(t, err)
	agg, err := spec.BuildAggregator(nil)
	require.NoError(t, err)
	values, err := agg.Aggregate(s)
	require.NoError(t, err)
	require.Len(t, values, len(spec.Outputs))
	return values
}

func TestStatisticalAggregations(t *testing.T) {
	s := primitive.Signal{Amplitudes: []float64{1, 2, 3, 4}}

	assert.InDelta(t, 2.5, aggregate(t, "statistical.mean", s)[0], 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), aggregate(t, "statistical.std", s)[0], 1e-12)
	assert.InDelta(t, 5.0/3.0, aggregate(t, "statistical.var", s)[0], 1e-12)
	assert.InDelta(t, math.Sqrt(7.5), aggregate(t, "statistical.rms", s)[0], 1e-12)
	assert.InDelta(t, 4/math.Sqrt(7.5), aggregate(t, "statistical.crest_factor", s)[0], 1e-12)
}

func TestSkewAndKurtosis(t *testing.T) {
	symmetric := primitive.Signal{Amplitudes: []float64{-2, -1, 0, 1, 2}}
	assert.InDelta(t, 0.0, aggregate(t, "statistical.skew", symmetric)[0], 1e-12)

	skewed := primitive.Signal{Amplitudes: []float64{1, 1, 1, 10}}
	assert.Greater(t, aggregate(t, "statistical.skew", skewed)[0], 0.0)

	kurtosis := aggregate(t, "statistical.kurtosis", symmetric)[0]
	assert.False(t, math.IsNaN(kurtosis))
}

func TestStatisticalEmptyInput(t *testing.T) {
	spec, err := primitive.Lookup("statistical.mean")
	require.NoError(t, err)
	agg, err := spec.BuildAggregator(nil)
	require.NoError(t, err)

	_, err = agg.Aggregate(primitive.Signal{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestFirstFrequency(t *testing.T) {
	s := primitive.Signal{
		Amplitudes:  []float64{10, -2, -2, -2},
		Frequencies: []float64{0, 0.25, -0.5, -0.25},
	}
	assert.Equal(t, 0.0, aggregate(t, "frequency.first_frequency", s)[0])
}

func TestFirstFrequencyRequiresFrequencies(t *testing.T) {
	_, err := FirstFrequency{}.Aggregate(primitive.Signal{Amplitudes: []float64{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frequency transformation")
}

func TestDominantFrequency(t *testing.T) {
	s := primitive.Signal{
		Amplitudes:  []float64{0, 4, 0, 4},
		Frequencies: []float64{0, 0.25, -0.5, -0.25},
	}
	// Ties resolve to the earliest bin.
	assert.Equal(t, 0.25, aggregate(t, "frequency.dominant_frequency", s)[0])
}

func TestDominantFrequencyUsesAbsoluteAmplitude(t *testing.T) {
	s := primitive.Signal{
		Amplitudes:  []float64{1, -9, 2},
		Frequencies: []float64{0, 0.1, 0.2},
	}
	assert.Equal(t, 0.1, aggregate(t, "frequency.dominant_frequency", s)[0])
}

func TestPeak(t *testing.T) {
	s := primitive.Signal{
		Amplitudes:  []float64{1, -9, 2},
		Frequencies: []float64{0, 0.1, 0.2},
	}
	values := aggregate(t, "frequency.peak", s)
	assert.Equal(t, 0.1, values[0])
	assert.Equal(t, -9.0, values[1])
}

func TestPeakLengthMismatch(t *testing.T) {
	_, err := Peak{}.Aggregate(primitive.Signal{
		Amplitudes:  []float64{1, 2, 3},
		Frequencies: []float64{0, 0.1},
	})
	assert.Error(t, err)
}

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{
		"statistical.mean", "statistical.std", "statistical.var",
		"statistical.rms", "statistical.crest_factor",
		"statistical.kurtosis", "statistical.skew",
		"frequency.first_frequency", "frequency.dominant_frequency", "frequency.peak",
	} {
		spec, err := primitive.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, primitive.Aggregation, spec.Kind, name)
		assert.NotEmpty(t, spec.Outputs, name)
	}
}
