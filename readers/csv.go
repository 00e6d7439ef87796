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

package readers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sigetl/sigetl"
)

// CSVReaderError wraps structured error information for the CSV reader.
type CSVReaderError struct {
	Op  string
	Err error
}

func (e *CSVReaderError) Error() string {
	return fmt.Sprintf("csv reader %s: %v", e.Op, e.Err)
}

func (e *CSVReaderError) Unwrap() error {
	return e.Err
}

// CSVReaderStats holds statistics about the CSV reader.
type CSVReaderStats struct {
	RecordsRead     int64
	NullValueCounts map[string]int64
}

// CSVReaderOptions configures the CSV reader.
type CSVReaderOptions struct {
	Comma            rune
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	HasHeaders       bool
	ValuesColumn     string
}

// CSVReaderOption allows functional customization of CSVReader.
type CSVReaderOption func(*CSVReaderOptions)

// WithCSVComma sets the field delimiter.
func WithCSVComma(r rune) CSVReaderOption {
	return func(o *CSVReaderOptions) { o.Comma = r }
}

// WithCSVHasHeaders controls whether the first row is treated as headers.
func WithCSVHasHeaders(hasHeaders bool) CSVReaderOption {
	return func(o *CSVReaderOptions) { o.HasHeaders = hasHeaders }
}

// WithCSVValuesColumn names the column whose cells hold encoded signal
// vectors (see ParseValues). Defaults to "values".
func WithCSVValuesColumn(name string) CSVReaderOption {
	return func(o *CSVReaderOptions) { o.ValuesColumn = name }
}

// CSVReader implements sigetl.DataSource for CSV files holding one signal row
// per record, with the values column cell decoded into []float64.
type CSVReader struct {
	reader  *csv.Reader
	headers []string
	closer  io.Closer
	stats   CSVReaderStats
	opts    CSVReaderOptions
}

// NewCSVReader creates a CSVReader with default or overridden options.
func NewCSVReader(r io.ReadCloser, options ...CSVReaderOption) (*CSVReader, error) {
	opts := CSVReaderOptions{
		Comma:            ',',
		HasHeaders:       true,
		TrimLeadingSpace: true,
		ValuesColumn:     sigetl.DefaultValuesColumn,
	}
	for _, opt := range options {
		opt(&opts)
	}

	csvReader := csv.NewReader(r)
	csvReader.Comma = opts.Comma
	csvReader.Comment = opts.Comment
	csvReader.LazyQuotes = opts.LazyQuotes
	csvReader.TrimLeadingSpace = opts.TrimLeadingSpace

	reader := &CSVReader{
		reader: csvReader,
		closer: r,
		opts:   opts,
		stats:  CSVReaderStats{NullValueCounts: make(map[string]int64)},
	}

	if opts.HasHeaders {
		headers, err := csvReader.Read()
		if err != nil {
			return nil, &CSVReaderError{Op: "read_headers", Err: err}
		}
		reader.headers = headers
	}

	return reader, nil
}

// Read implements the sigetl.DataSource interface.
func (c *CSVReader) Read(ctx context.Context) (sigetl.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &CSVReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	row, err := c.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &CSVReaderError{Op: "read_record", Err: err}
	}

	record := make(sigetl.Record, len(row))
	for i, cell := range row {
		key := "col_" + strconv.Itoa(i)
		if i < len(c.headers) {
			key = c.headers[i]
		}
		if strings.TrimSpace(cell) == "" {
			c.stats.NullValueCounts[key]++
			record[key] = nil
			continue
		}
		value, err := c.parseCell(key, cell)
		if err != nil {
			return nil, &CSVReaderError{Op: "parse_values", Err: err}
		}
		record[key] = value
	}

	c.stats.RecordsRead++
	return record, nil
}

// Close implements the sigetl.DataSource interface.
func (c *CSVReader) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Stats returns CSV reader statistics.
func (c *CSVReader) Stats() CSVReaderStats {
	return c.stats
}

// parseCell decodes the values column as a signal vector and infers
// int, float, bool, or string for every other column.
func (c *CSVReader) parseCell(key, cell string) (interface{}, error) {
	if key == c.opts.ValuesColumn {
		return ParseValues(cell)
	}
	cell = strings.TrimSpace(cell)
	if i, err := strconv.Atoi(cell); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f, nil
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		return b, nil
	}
	return cell, nil
}
