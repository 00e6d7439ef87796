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

package transformations

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sigetl/sigetl/primitive"
)

func init() {
	primitive.MustRegister(primitive.Spec{
		Name:    "amplitude.identity",
		Kind:    primitive.Transformation,
		Outputs: []primitive.Field{{Name: "amplitude_values"}},
		BuildTransformer: func(map[string]interface{}) (primitive.Transformer, error) {
			return Identity{}, nil
		},
	})
	primitive.MustRegister(primitive.Spec{
		Name:    "amplitude.remove_mean",
		Kind:    primitive.Transformation,
		Outputs: []primitive.Field{{Name: "amplitude_values"}},
		BuildTransformer: func(map[string]interface{}) (primitive.Transformer, error) {
			return RemoveMean{}, nil
		},
	})
}

// Identity passes the signal through unchanged.
type Identity struct{}

// Apply implements primitive.Transformer.
func (Identity) Apply(s primitive.Signal) (primitive.Signal, error) {
	return s, nil
}

// RemoveMean subtracts the mean amplitude from every sample.
type RemoveMean struct{}

// Apply implements primitive.Transformer.
func (RemoveMean) Apply(s primitive.Signal) (primitive.Signal, error) {
	if len(s.Amplitudes) == 0 {
		return s, nil
	}
	mean := stat.Mean(s.Amplitudes, nil)
	out := make([]float64, len(s.Amplitudes))
	for i, v := range s.Amplitudes {
		out[i] = v - mean
	}
	return primitive.Signal{
		Amplitudes:        out,
		Frequencies:       s.Frequencies,
		SamplingFrequency: s.SamplingFrequency,
	}, nil
}
