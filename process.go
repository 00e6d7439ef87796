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
	"context"
	"fmt"

	"github.com/sigetl/sigetl/dataset"
)

// DefaultValuesColumn is the column holding raw signal values unless overridden.
const DefaultValuesColumn = "values"

// ProcessOptions configures ProcessSignals.
type ProcessOptions struct {
	SamplingFrequency SamplingFrequency
	ValuesColumn      string
	KeepValues        bool
}

// ProcessOption is a functional option for ProcessSignals.
type ProcessOption func(*ProcessOptions)

// WithSamplingFrequency sets the sampling frequency specification.
func WithSamplingFrequency(rate SamplingFrequency) ProcessOption {
	return func(o *ProcessOptions) { o.SamplingFrequency = rate }
}

// WithValuesColumn sets the name of the column holding raw signal values.
func WithValuesColumn(name string) ProcessOption {
	return func(o *ProcessOptions) { o.ValuesColumn = name }
}

// WithKeepValues controls whether the values column is retained in the output.
func WithKeepValues(keep bool) ProcessOption {
	return func(o *ProcessOptions) { o.KeepValues = keep }
}

// ProcessSignals builds a feature pipeline from the given steps and applies it
// to every row of the table, in order, one result row per input row. The
// returned table holds the original columns followed by one column per
// declared pipeline output; the values column is dropped unless KeepValues is
// set. The input table is not modified.
func ProcessSignals(ctx context.Context, data *dataset.Table, transformations, aggregations []Step, opts ...ProcessOption) (*dataset.Table, error) {
	options := ProcessOptions{
		SamplingFrequency: ConstantRate(1),
		ValuesColumn:      DefaultValuesColumn,
	}
	for _, opt := range opts {
		opt(&options)
	}

	pipeline, err := BuildPipeline(transformations, aggregations)
	if err != nil {
		return nil, err
	}

	featureRows := make([]map[string]interface{}, 0, data.Len())
	for i := 0; i < data.Len(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		features, err := ApplyRow(data.Row(i), pipeline, options.ValuesColumn, options.SamplingFrequency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		featureRows = append(featureRows, features)
	}

	output, err := data.Concat(pipeline.OutputNames(), featureRows)
	if err != nil {
		return nil, err
	}
	if !options.KeepValues {
		output = output.Drop(options.ValuesColumn)
	}
	return output, nil
}
