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

package writers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigetl/sigetl"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestCSVWriter(t *testing.T) {
	buf := &bufferCloser{}
	writer := NewCSVWriter(buf, WithCSVWriterColumns("turbine_id", "fft.mean.value"))
	ctx := context.Background()

	require.NoError(t, writer.Write(ctx, sigetl.Record{
		"turbine_id":     "T001",
		"fft.mean.value": 1.25,
	}))
	require.NoError(t, writer.Write(ctx, sigetl.Record{
		"turbine_id":     "T002",
		"fft.mean.value": 2.5,
	}))
	require.NoError(t, writer.Close())
	assert.True(t, buf.closed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "turbine_id,fft.mean.value", lines[0])
	assert.Equal(t, "T001,1.25", lines[1])
	assert.Equal(t, "T002,2.5", lines[2])

	assert.Equal(t, int64(2), writer.Stats().RecordsWritten)
}

func TestCSVWriterInfersSortedColumns(t *testing.T) {
	buf := &bufferCloser{}
	writer := NewCSVWriter(buf)

	require.NoError(t, writer.Write(context.Background(), sigetl.Record{"b": 2, "a": 1}))
	require.NoError(t, writer.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, "1,2", lines[1])
}

func TestCSVWriterEncodesSignalVectors(t *testing.T) {
	buf := &bufferCloser{}
	writer := NewCSVWriter(buf, WithCSVWriterColumns("values"))

	require.NoError(t, writer.Write(context.Background(), sigetl.Record{
		"values": []float64{1, 2.5},
	}))
	require.NoError(t, writer.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"[1,2.5]"`, lines[1])
}

func TestCSVWriterMissingColumnsAreEmpty(t *testing.T) {
	buf := &bufferCloser{}
	writer := NewCSVWriter(buf, WithCSVWriterColumns("a", "b"))

	require.NoError(t, writer.Write(context.Background(), sigetl.Record{"a": 1}))
	require.NoError(t, writer.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1,", lines[1])
}

func TestJSONLWriter(t *testing.T) {
	buf := &bufferCloser{}
	writer := NewJSONLWriter(buf)
	ctx := context.Background()

	require.NoError(t, writer.Write(ctx, sigetl.Record{"id": 1, "mean": 2.5}))
	require.NoError(t, writer.Write(ctx, sigetl.Record{"id": 2, "mean": 3.5}))
	require.NoError(t, writer.Close())
	assert.True(t, buf.closed)
	assert.Equal(t, int64(2), writer.Written())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, 1.0, first["id"])
	assert.Equal(t, 2.5, first["mean"])
}

func TestJSONLWriterCanceledContext(t *testing.T) {
	writer := NewJSONLWriter(&bufferCloser{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, writer.Write(ctx, sigetl.Record{}), context.Canceled)
}
