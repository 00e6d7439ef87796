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

// Package writers provides implementations of sigetl.DataSink for persisting
// feature rows produced by a pipeline.
package writers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/sigetl/sigetl"
)

// JSONLWriterError wraps structured error information for the JSONL writer.
type JSONLWriterError struct {
	Op  string
	Err error
}

func (e *JSONLWriterError) Error() string {
	return fmt.Sprintf("jsonl writer %s: %v", e.Op, e.Err)
}

func (e *JSONLWriterError) Unwrap() error {
	return e.Err
}

// JSONLWriter implements sigetl.DataSink for line-delimited JSON output.
type JSONLWriter struct {
	writer  *bufio.Writer
	closer  io.Closer
	written int64
	mu      sync.Mutex
}

// NewJSONLWriter creates a writer emitting one JSON object per line.
func NewJSONLWriter(w io.WriteCloser) *JSONLWriter {
	return &JSONLWriter{
		writer: bufio.NewWriter(w),
		closer: w,
	}
}

// Write implements the sigetl.DataSink interface.
func (j *JSONLWriter) Write(ctx context.Context, record sigetl.Record) error {
	select {
	case <-ctx.Done():
		return &JSONLWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	encoded, err := json.Marshal(record)
	if err != nil {
		return &JSONLWriterError{Op: "encode", Err: err}
	}
	if _, err := j.writer.Write(encoded); err != nil {
		return &JSONLWriterError{Op: "write_record", Err: err}
	}
	if err := j.writer.WriteByte('\n'); err != nil {
		return &JSONLWriterError{Op: "write_record", Err: err}
	}
	j.written++
	return nil
}

// Flush implements the sigetl.DataSink interface.
func (j *JSONLWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		return &JSONLWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close flushes buffered output and closes the underlying writer.
func (j *JSONLWriter) Close() error {
	if err := j.Flush(); err != nil {
		return err
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// Written returns the number of records written.
func (j *JSONLWriter) Written() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written
}
