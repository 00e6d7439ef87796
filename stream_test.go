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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	rows   []Record
	index  int
	closed bool
}

func (s *sliceSource) Read(ctx context.Context) (Record, error) {
	if s.index >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.index]
	s.index++
	return row, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

type captureSink struct {
	records []Record
	flushed bool
	closed  bool
}

func (c *captureSink) Write(ctx context.Context, record Record) error {
	c.records = append(c.records, record)
	return nil
}

func (c *captureSink) Flush() error {
	c.flushed = true
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func meanPipeline(t *testing.T) *FeaturePipeline {
	t.Helper()
	pipeline, err := BuildPipeline(
		[]Step{{Name: "fft", Primitive: "frequency.fft_real"}},
		[]Step{{Name: "mean", Primitive: "statistical.mean"}},
	)
	require.NoError(t, err)
	return pipeline
}

func TestRunnerExecute(t *testing.T) {
	source := &sliceSource{rows: []Record{
		{"id": 1, "values": []float64{1, 2, 3, 4}},
		{"id": 2, "values": []float64{2, 4, 6, 8}},
	}}
	sink := &captureSink{}

	runner, err := NewRunner(meanPipeline(t)).From(source).To(sink).Build()
	require.NoError(t, err)
	require.NoError(t, runner.Execute(context.Background()))

	require.Len(t, sink.records, 2)
	assert.Equal(t, 1, sink.records[0]["id"])
	assert.InDelta(t, 1.0, sink.records[0]["fft.mean.value"].(float64), 1e-12)
	assert.NotContains(t, sink.records[0], "values")

	assert.True(t, source.closed)
	assert.True(t, sink.flushed)
	assert.True(t, sink.closed)

	stats := runner.Stats()
	assert.Equal(t, int64(2), stats.RowsRead)
	assert.Equal(t, int64(2), stats.RowsWritten)
	assert.Equal(t, int64(0), stats.RowsSkipped)
}

func TestRunnerKeepValues(t *testing.T) {
	source := &sliceSource{rows: []Record{{"values": []float64{1, 2, 3, 4}}}}
	sink := &captureSink{}

	runner, err := NewRunner(meanPipeline(t)).
		From(source).To(sink).WithKeepValues(true).Build()
	require.NoError(t, err)
	require.NoError(t, runner.Execute(context.Background()))

	require.Len(t, sink.records, 1)
	assert.Equal(t, []float64{1, 2, 3, 4}, sink.records[0]["values"])
}

func TestRunnerFilterSkipsRows(t *testing.T) {
	source := &sliceSource{rows: []Record{
		{"keep": true, "values": []float64{1, 2}},
		{"keep": false, "values": []float64{3, 4}},
	}}
	sink := &captureSink{}

	runner, err := NewRunner(meanPipeline(t)).
		From(source).To(sink).
		Where(func(ctx context.Context, record Record) (bool, error) {
			return record["keep"] == true, nil
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, runner.Execute(context.Background()))

	assert.Len(t, sink.records, 1)
	assert.Equal(t, int64(1), runner.Stats().RowsSkipped)
}

func TestRunnerFailFast(t *testing.T) {
	source := &sliceSource{rows: []Record{
		{"values": "garbage"},
		{"values": []float64{1, 2}},
	}}
	sink := &captureSink{}

	runner, err := NewRunner(meanPipeline(t)).From(source).To(sink).Build()
	require.NoError(t, err)

	err = runner.Execute(context.Background())
	require.Error(t, err)
	assert.Empty(t, sink.records)
	assert.True(t, source.closed)
}

func TestRunnerSkipErrors(t *testing.T) {
	source := &sliceSource{rows: []Record{
		{"values": "garbage"},
		{"values": []float64{1, 2, 3, 4}},
	}}
	sink := &captureSink{}

	var handled []error
	runner, err := NewRunner(meanPipeline(t)).
		From(source).To(sink).
		WithErrorStrategy(SkipErrors).
		WithErrorHandler(ErrorHandlerFunc(func(ctx context.Context, record Record, err error) error {
			handled = append(handled, err)
			return nil
		})).
		Build()
	require.NoError(t, err)
	require.NoError(t, runner.Execute(context.Background()))

	assert.Len(t, sink.records, 1)
	assert.Len(t, handled, 1)
	assert.Equal(t, int64(1), runner.Stats().RowsWritten)
}

func TestRunnerBuildValidation(t *testing.T) {
	_, err := NewRunner(nil).From(&sliceSource{}).To(&captureSink{}).Build()
	assert.Error(t, err)

	_, err = NewRunner(meanPipeline(t)).To(&captureSink{}).Build()
	assert.Error(t, err)

	_, err = NewRunner(meanPipeline(t)).From(&sliceSource{}).Build()
	assert.Error(t, err)
}

func TestRunnerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := NewRunner(meanPipeline(t)).
		From(&sliceSource{rows: []Record{{"values": []float64{1}}}}).
		To(&captureSink{}).
		Build()
	require.NoError(t, err)
	assert.ErrorIs(t, runner.Execute(ctx), context.Canceled)
}
