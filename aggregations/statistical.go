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

// Package aggregations provides the built-in aggregation primitives. Each
// reduces a signal representation to scalar feature values and registers
// itself under a dotted identifier; statistics are computed with gonum/stat.
package aggregations

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sigetl/sigetl/primitive"
)

// value is the single declared output field of the statistical aggregations.
var value = []primitive.Field{{Name: "value"}}

func init() {
	registerStatistical("statistical.mean", func(x []float64) float64 {
		return stat.Mean(x, nil)
	})
	registerStatistical("statistical.std", func(x []float64) float64 {
		return stat.StdDev(x, nil)
	})
	registerStatistical("statistical.var", func(x []float64) float64 {
		return stat.Variance(x, nil)
	})
	registerStatistical("statistical.rms", rms)
	registerStatistical("statistical.crest_factor", func(x []float64) float64 {
		return peakAmplitude(x) / rms(x)
	})
	registerStatistical("statistical.kurtosis", func(x []float64) float64 {
		return stat.ExKurtosis(x, nil)
	})
	registerStatistical("statistical.skew", func(x []float64) float64 {
		return stat.Skew(x, nil)
	})
}

// registerStatistical registers a single-output aggregation over the amplitude
// values.
func registerStatistical(name string, fn func([]float64) float64) {
	primitive.MustRegister(primitive.Spec{
		Name:    name,
		Kind:    primitive.Aggregation,
		Outputs: value,
		BuildAggregator: func(map[string]interface{}) (primitive.Aggregator, error) {
			return statistic{name: name, fn: fn}, nil
		},
	})
}

type statistic struct {
	name string
	fn   func([]float64) float64
}

// Aggregate implements primitive.Aggregator.
func (s statistic) Aggregate(sig primitive.Signal) ([]float64, error) {
	if len(sig.Amplitudes) == 0 {
		return nil, fmt.Errorf("%s: empty amplitude values", s.name)
	}
	return []float64{s.fn(sig.Amplitudes)}, nil
}

// rms is the root mean square of the samples.
func rms(x []float64) float64 {
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// peakAmplitude is the largest absolute sample value.
func peakAmplitude(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
