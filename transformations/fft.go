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

// Package transformations provides the built-in transformation primitives.
// Each primitive registers itself into the default registry under a dotted
// identifier; the frequency-domain transforms are direct calls into gonum.
package transformations

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/sigetl/sigetl/primitive"
)

func init() {
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.fft_real",
		Kind:    primitive.Transformation,
		Outputs: []primitive.Field{{Name: "amplitude_values"}, {Name: "frequency_values"}},
		BuildTransformer: func(map[string]interface{}) (primitive.Transformer, error) {
			return FFTReal{}, nil
		},
	})
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.power_spectrum",
		Kind:    primitive.Transformation,
		Outputs: []primitive.Field{{Name: "amplitude_values"}, {Name: "frequency_values"}},
		BuildTransformer: func(map[string]interface{}) (primitive.Transformer, error) {
			return PowerSpectrum{}, nil
		},
	})
}

// FFTReal computes the discrete Fourier transform of the amplitude values and
// keeps the real components, discarding the phase. The frequency values are
// the corresponding bins, length equal to the input, spaced by the sampling
// frequency. Pure and stateless.
type FFTReal struct{}

// Apply implements primitive.Transformer.
func (FFTReal) Apply(s primitive.Signal) (primitive.Signal, error) {
	coeffs, err := coefficients(s.Amplitudes)
	if err != nil {
		return primitive.Signal{}, fmt.Errorf("fft_real: %w", err)
	}
	amplitudes := make([]float64, len(coeffs))
	for i, c := range coeffs {
		amplitudes[i] = real(c)
	}
	return primitive.Signal{
		Amplitudes:        amplitudes,
		Frequencies:       frequencyBins(len(coeffs), s.SamplingFrequency),
		SamplingFrequency: s.SamplingFrequency,
	}, nil
}

// PowerSpectrum computes the squared magnitude of each Fourier coefficient of
// the amplitude values, with the same frequency bins as FFTReal.
type PowerSpectrum struct{}

// Apply implements primitive.Transformer.
func (PowerSpectrum) Apply(s primitive.Signal) (primitive.Signal, error) {
	coeffs, err := coefficients(s.Amplitudes)
	if err != nil {
		return primitive.Signal{}, fmt.Errorf("power_spectrum: %w", err)
	}
	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	return primitive.Signal{
		Amplitudes:        power,
		Frequencies:       frequencyBins(len(coeffs), s.SamplingFrequency),
		SamplingFrequency: s.SamplingFrequency,
	}, nil
}

// coefficients computes the full-length unnormalized DFT of the values.
func coefficients(values []float64) ([]complex128, error) {
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("empty amplitude values")
	}
	src := make([]complex128, n)
	for i, v := range values {
		src[i] = complex(v, 0)
	}
	return fourier.NewCmplxFFT(n).Coefficients(nil, src), nil
}

// frequencyBins returns n bins laid out like numpy's fftfreq: zero first, the
// positive frequencies ascending, then the negative frequencies. The sampling
// frequency is used as the spacing parameter, so bin values are spaced by
// 1/(n*fs).
func frequencyBins(n int, spacing float64) []float64 {
	bins := make([]float64, n)
	scale := 1.0 / (float64(n) * spacing)
	half := (n - 1) / 2
	for i := 0; i <= half; i++ {
		bins[i] = float64(i) * scale
	}
	for i := half + 1; i < n; i++ {
		bins[i] = float64(i-n) * scale
	}
	return bins
}
