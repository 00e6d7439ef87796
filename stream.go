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
	"io"
)

// RunnerBuilder provides a fluent API for constructing stream runners.
// Use NewRunner() with a built pipeline, then chain From, To, Filter, and
// configuration methods.
type RunnerBuilder struct {
	runner *Runner
}

// NewRunner creates a RunnerBuilder around a built feature pipeline.
func NewRunner(pipeline *FeaturePipeline) *RunnerBuilder {
	return &RunnerBuilder{
		runner: &Runner{
			pipeline:     pipeline,
			valuesColumn: DefaultValuesColumn,
			rate:         ConstantRate(1),
			strategy:     FailFast,
		},
	}
}

// From sets the DataSource for the runner.
func (rb *RunnerBuilder) From(source DataSource) *RunnerBuilder {
	rb.runner.source = source
	return rb
}

// To sets the DataSink for the runner.
func (rb *RunnerBuilder) To(sink DataSink) *RunnerBuilder {
	rb.runner.sink = sink
	return rb
}

// Filter adds a row filter to the runner.
func (rb *RunnerBuilder) Filter(filter Filter) *RunnerBuilder {
	rb.runner.filters = append(rb.runner.filters, filter)
	return rb
}

// Where adds a filtering condition using a function.
func (rb *RunnerBuilder) Where(fn func(ctx context.Context, record Record) (bool, error)) *RunnerBuilder {
	return rb.Filter(FilterFunc(fn))
}

// WithValuesColumn sets the column holding raw signal values.
func (rb *RunnerBuilder) WithValuesColumn(name string) *RunnerBuilder {
	rb.runner.valuesColumn = name
	return rb
}

// WithSamplingFrequency sets the sampling frequency specification.
func (rb *RunnerBuilder) WithSamplingFrequency(rate SamplingFrequency) *RunnerBuilder {
	rb.runner.rate = rate
	return rb
}

// WithKeepValues controls whether the values column is written to the sink.
func (rb *RunnerBuilder) WithKeepValues(keep bool) *RunnerBuilder {
	rb.runner.keepValues = keep
	return rb
}

// WithErrorStrategy sets the error handling strategy for the runner.
func (rb *RunnerBuilder) WithErrorStrategy(strategy ErrorStrategy) *RunnerBuilder {
	rb.runner.strategy = strategy
	return rb
}

// WithErrorHandler sets a custom error handler for the runner.
func (rb *RunnerBuilder) WithErrorHandler(handler ErrorHandler) *RunnerBuilder {
	rb.runner.errorHandler = handler
	return rb
}

// Build validates and constructs the Runner from the builder.
func (rb *RunnerBuilder) Build() (*Runner, error) {
	if rb.runner.pipeline == nil {
		return nil, fmt.Errorf("runner requires a feature pipeline")
	}
	if rb.runner.source == nil {
		return nil, fmt.Errorf("runner requires a data source")
	}
	if rb.runner.sink == nil {
		return nil, fmt.Errorf("runner requires a data sink")
	}
	return rb.runner, nil
}

// Runner streams rows from a source through a feature pipeline into a sink.
//
// Each row is featurized with ApplyRow; the produced feature fields are merged
// onto the row (values column dropped unless configured otherwise) before
// writing. The pipeline is built once and reused; rows are processed strictly
// in input order.
type Runner struct {
	pipeline     *FeaturePipeline
	source       DataSource
	sink         DataSink
	filters      []Filter
	valuesColumn string
	rate         SamplingFrequency
	keepValues   bool
	strategy     ErrorStrategy
	errorHandler ErrorHandler

	rowsRead    int64
	rowsWritten int64
	rowsSkipped int64
}

// RunnerStats summarizes one Execute call.
type RunnerStats struct {
	RowsRead    int64
	RowsWritten int64
	RowsSkipped int64
}

// Execute runs the stream, processing all rows from source to sink.
//
// Error handling is governed by the configured ErrorStrategy and ErrorHandler.
func (r *Runner) Execute(ctx context.Context) error {
	defer func() {
		if r.source != nil {
			r.source.Close()
		}
		if r.sink != nil {
			r.sink.Flush()
			r.sink.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := r.source.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if err := r.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if len(record) == 0 {
			continue
		}
		r.rowsRead++

		include, err := r.applyFilters(ctx, record)
		if err != nil {
			if err := r.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !include {
			r.rowsSkipped++
			continue
		}

		features, err := ApplyRow(record, r.pipeline, r.valuesColumn, r.rate)
		if err != nil {
			if err := r.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		out := make(Record, len(record)+len(features))
		for k, v := range record {
			if k == r.valuesColumn && !r.keepValues {
				continue
			}
			out[k] = v
		}
		for k, v := range features {
			out[k] = v
		}

		if err := r.sink.Write(ctx, out); err != nil {
			if err := r.handleError(ctx, out, err); err != nil {
				return err
			}
			continue
		}
		r.rowsWritten++
	}

	return nil
}

// Stats returns counters from the last Execute call.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		RowsRead:    r.rowsRead,
		RowsWritten: r.rowsWritten,
		RowsSkipped: r.rowsSkipped,
	}
}

// applyFilters applies all configured filters to a record.
func (r *Runner) applyFilters(ctx context.Context, record Record) (bool, error) {
	for _, filter := range r.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

// handleError handles errors according to the runner's error strategy and handler.
func (r *Runner) handleError(ctx context.Context, record Record, err error) error {
	switch r.strategy {
	case FailFast:
		return err
	case SkipErrors, CollectErrors:
		if r.errorHandler != nil {
			return r.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
