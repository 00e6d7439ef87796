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
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/sigetl/sigetl"
)

// CSVWriterError provides structured error information for CSV writer
// operations.
type CSVWriterError struct {
	Op  string
	Err error
}

func (e *CSVWriterError) Error() string {
	return fmt.Sprintf("csv writer %s: %v", e.Op, e.Err)
}

func (e *CSVWriterError) Unwrap() error {
	return e.Err
}

// CSVWriterStats holds statistics about the CSV writer.
type CSVWriterStats struct {
	RecordsWritten int64
	FlushCount     int64
}

// CSVWriterOptions configures the CSV writer.
type CSVWriterOptions struct {
	Comma        rune
	Columns      []string
	WriteHeaders bool
	BatchSize    int
}

// CSVWriterOption represents a configuration function.
type CSVWriterOption func(*CSVWriterOptions)

// WithCSVWriterComma sets the field delimiter.
func WithCSVWriterComma(r rune) CSVWriterOption {
	return func(o *CSVWriterOptions) { o.Comma = r }
}

// WithCSVWriterColumns fixes the column order. When unset, the columns of the
// first record are used in sorted order.
func WithCSVWriterColumns(columns ...string) CSVWriterOption {
	return func(o *CSVWriterOptions) {
		o.Columns = make([]string, len(columns))
		copy(o.Columns, columns)
	}
}

// WithCSVWriterHeaders controls whether a header row is written.
func WithCSVWriterHeaders(write bool) CSVWriterOption {
	return func(o *CSVWriterOptions) { o.WriteHeaders = write }
}

// WithCSVWriterBatchSize sets the number of records buffered between flushes.
func WithCSVWriterBatchSize(size int) CSVWriterOption {
	return func(o *CSVWriterOptions) { o.BatchSize = size }
}

// CSVWriter implements sigetl.DataSink for CSV output. Feature rows are
// written in a fixed column order; signal vectors are encoded as JSON arrays
// so they survive a round trip through ParseValues.
type CSVWriter struct {
	writer      *csv.Writer
	closer      io.Closer
	opts        CSVWriterOptions
	columns     []string
	wroteHeader bool
	pending     int
	stats       CSVWriterStats
	mu          sync.Mutex
}

// NewCSVWriter creates a CSVWriter with default or overridden options.
func NewCSVWriter(w io.WriteCloser, options ...CSVWriterOption) *CSVWriter {
	opts := CSVWriterOptions{
		Comma:        ',',
		WriteHeaders: true,
		BatchSize:    100,
	}
	for _, option := range options {
		option(&opts)
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = opts.Comma

	return &CSVWriter{
		writer:  csvWriter,
		closer:  w,
		opts:    opts,
		columns: opts.Columns,
	}
}

// Write implements the sigetl.DataSink interface.
func (c *CSVWriter) Write(ctx context.Context, record sigetl.Record) error {
	select {
	case <-ctx.Done():
		return &CSVWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.columns == nil {
		c.columns = make([]string, 0, len(record))
		for key := range record {
			c.columns = append(c.columns, key)
		}
		sort.Strings(c.columns)
	}

	if c.opts.WriteHeaders && !c.wroteHeader {
		if err := c.writer.Write(c.columns); err != nil {
			return &CSVWriterError{Op: "write_headers", Err: err}
		}
		c.wroteHeader = true
	}

	row := make([]string, len(c.columns))
	for i, column := range c.columns {
		cell, err := formatCell(record[column])
		if err != nil {
			return &CSVWriterError{Op: "format", Err: fmt.Errorf("column %q: %w", column, err)}
		}
		row[i] = cell
	}
	if err := c.writer.Write(row); err != nil {
		return &CSVWriterError{Op: "write_record", Err: err}
	}

	c.stats.RecordsWritten++
	c.pending++
	if c.pending >= c.opts.BatchSize {
		return c.flushLocked()
	}
	return nil
}

// Flush implements the sigetl.DataSink interface.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

// Close flushes any buffered records and closes the underlying writer.
func (c *CSVWriter) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Stats returns CSV writer statistics.
func (c *CSVWriter) Stats() CSVWriterStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *CSVWriter) flushLocked() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &CSVWriterError{Op: "flush", Err: err}
	}
	if c.pending > 0 {
		c.stats.FlushCount++
		c.pending = 0
	}
	return nil
}

// formatCell renders one record value as a CSV cell.
func formatCell(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case []float64:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
