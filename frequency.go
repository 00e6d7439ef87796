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
	"fmt"

	"github.com/sigetl/sigetl/primitive"
)

// SamplingFrequency specifies how the per-row sampling rate is obtained:
// either a constant value in Hz, or a reference to another column of the row.
type SamplingFrequency struct {
	hz     float64
	column string
}

// ConstantRate returns a sampling frequency fixed at hz for every row.
func ConstantRate(hz float64) SamplingFrequency {
	return SamplingFrequency{hz: hz}
}

// RateColumn returns a sampling frequency read from the named column of each row.
func RateColumn(name string) SamplingFrequency {
	return SamplingFrequency{column: name}
}

// RateFromValue builds a SamplingFrequency from a configuration value:
// numbers become constants, strings become column references.
func RateFromValue(v interface{}) (SamplingFrequency, error) {
	if v == nil {
		return ConstantRate(1), nil
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return SamplingFrequency{}, fmt.Errorf("sampling frequency column name is empty")
		}
		return RateColumn(s), nil
	}
	hz, err := primitive.AsFloat(v)
	if err != nil {
		return SamplingFrequency{}, fmt.Errorf("sampling frequency: %w", err)
	}
	return ConstantRate(hz), nil
}

// IsColumn reports whether the rate is read from a row column.
func (s SamplingFrequency) IsColumn() bool {
	return s.column != ""
}

// Resolve returns the sampling rate for the given row.
func (s SamplingFrequency) Resolve(row Record) (float64, error) {
	if s.column == "" {
		return s.hz, nil
	}
	v, ok := row[s.column]
	if !ok {
		return 0, fmt.Errorf("sampling frequency column %q missing from row", s.column)
	}
	hz, err := primitive.AsFloat(v)
	if err != nil {
		return 0, fmt.Errorf("sampling frequency column %q: %w", s.column, err)
	}
	return hz, nil
}
