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
	"fmt"

	"github.com/sigetl/sigetl/primitive"
)

func init() {
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.band",
		Kind:    primitive.Transformation,
		Outputs: []primitive.Field{{Name: "amplitude_values"}, {Name: "frequency_values"}},
		BuildTransformer: func(params map[string]interface{}) (primitive.Transformer, error) {
			low, err := primitive.FloatParam(params, "low")
			if err != nil {
				return nil, fmt.Errorf("frequency.band: %w", err)
			}
			high, err := primitive.FloatParam(params, "high")
			if err != nil {
				return nil, fmt.Errorf("frequency.band: %w", err)
			}
			if high < low {
				return nil, fmt.Errorf("frequency.band: high %v below low %v", high, low)
			}
			return Band{Low: low, High: high}, nil
		},
	})
}

// Band keeps only the bins whose frequency falls inside [Low, High].
// Requires a frequency-domain representation; init params "low" and "high".
type Band struct {
	Low  float64
	High float64
}

// Apply implements primitive.Transformer.
func (b Band) Apply(s primitive.Signal) (primitive.Signal, error) {
	if len(s.Frequencies) == 0 {
		return primitive.Signal{}, fmt.Errorf("band: no frequency values; apply a frequency transformation first")
	}
	if len(s.Frequencies) != len(s.Amplitudes) {
		return primitive.Signal{}, fmt.Errorf("band: %d frequency values for %d amplitude values", len(s.Frequencies), len(s.Amplitudes))
	}
	amplitudes := make([]float64, 0, len(s.Amplitudes))
	frequencies := make([]float64, 0, len(s.Frequencies))
	for i, f := range s.Frequencies {
		if f >= b.Low && f <= b.High {
			amplitudes = append(amplitudes, s.Amplitudes[i])
			frequencies = append(frequencies, f)
		}
	}
	return primitive.Signal{
		Amplitudes:        amplitudes,
		Frequencies:       frequencies,
		SamplingFrequency: s.SamplingFrequency,
	}, nil
}
