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
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/arrow/memory"
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/sigetl/sigetl"
)

// ParquetReaderError provides structured error information for parquet reader
// operations.
type ParquetReaderError struct {
	Op  string
	Err error
}

func (e *ParquetReaderError) Error() string {
	return fmt.Sprintf("parquet reader %s: %v", e.Op, e.Err)
}

func (e *ParquetReaderError) Unwrap() error {
	return e.Err
}

// ParquetReaderOptions configures the Parquet reader.
type ParquetReaderOptions struct {
	BatchSize int64
	Columns   []string
}

// ParquetReaderOption represents a configuration function.
type ParquetReaderOption func(*ParquetReaderOptions)

// WithParquetBatchSize sets the rows per Arrow batch.
func WithParquetBatchSize(size int64) ParquetReaderOption {
	return func(o *ParquetReaderOptions) { o.BatchSize = size }
}

// WithParquetColumns projects the read to the named columns.
func WithParquetColumns(columns ...string) ParquetReaderOption {
	return func(o *ParquetReaderOptions) {
		o.Columns = make([]string, len(columns))
		copy(o.Columns, columns)
	}
}

// ParquetReader implements sigetl.DataSource for Parquet files. Signal vectors
// stored as list<double> columns are returned as []float64.
type ParquetReader struct {
	fileHandle   *os.File
	reader       *file.Reader
	recordReader pqarrow.RecordReader
	batch        arrow.Record
	batchIdx     int
	schema       *arrow.Schema
}

// NewParquetReader opens a Parquet file and prepares an Arrow RecordReader.
func NewParquetReader(filename string, options ...ParquetReaderOption) (*ParquetReader, error) {
	opts := ParquetReaderOptions{BatchSize: 1000}
	for _, option := range options {
		option(&opts)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParquetReaderError{Op: "open_file", Err: err}
	}
	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_reader", Err: err}
	}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{BatchSize: opts.BatchSize}, memory.NewGoAllocator())
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_arrow_reader", Err: err}
	}
	schema, err := arrowReader.Schema()
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "get_schema", Err: err}
	}

	var colIndices []int
	for _, name := range opts.Columns {
		idx := -1
		for i, field := range schema.Fields() {
			if field.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			f.Close()
			return nil, &ParquetReaderError{Op: "column_projection", Err: fmt.Errorf("column %q not found in schema", name)}
		}
		colIndices = append(colIndices, idx)
	}

	recordReader, err := arrowReader.GetRecordReader(context.Background(), colIndices, nil)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_record_reader", Err: err}
	}

	return &ParquetReader{
		fileHandle:   f,
		reader:       parquetReader,
		recordReader: recordReader,
		schema:       schema,
	}, nil
}

// Read implements the sigetl.DataSource interface.
func (p *ParquetReader) Read(ctx context.Context) (sigetl.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &ParquetReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	if p.batch == nil || p.batchIdx >= int(p.batch.NumRows()) {
		if err := p.loadNextBatch(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &ParquetReaderError{Op: "load_batch", Err: err}
		}
	}

	record := make(sigetl.Record, int(p.batch.NumCols()))
	sch := p.batch.Schema()
	for i := 0; i < int(p.batch.NumCols()); i++ {
		record[sch.Field(i).Name] = extractValue(p.batch.Column(i), p.batchIdx)
	}
	p.batchIdx++
	return record, nil
}

// Close releases resources and closes the underlying file.
func (p *ParquetReader) Close() error {
	if p.batch != nil {
		p.batch.Release()
		p.batch = nil
	}
	if p.recordReader != nil {
		p.recordReader.Release()
		p.recordReader = nil
	}
	if p.fileHandle != nil {
		return p.fileHandle.Close()
	}
	return nil
}

// Schema returns the Arrow schema of the Parquet file.
func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

func (p *ParquetReader) loadNextBatch() error {
	if p.batch != nil {
		p.batch.Release()
		p.batch = nil
	}
	rec, err := p.recordReader.Read()
	if err != nil {
		return err
	}
	if rec == nil || rec.NumRows() == 0 {
		return io.EOF
	}
	p.batch = rec
	p.batchIdx = 0
	return nil
}

// extractValue converts one Arrow cell to a Go value.
func extractValue(col arrow.Array, row int) interface{} {
	if col.IsNull(row) {
		return nil
	}
	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(row)
	case *array.Int32:
		return arr.Value(row)
	case *array.Int64:
		return arr.Value(row)
	case *array.Float32:
		return arr.Value(row)
	case *array.Float64:
		return arr.Value(row)
	case *array.String:
		return arr.Value(row)
	case *array.List:
		start := int(arr.Offsets()[row])
		end := int(arr.Offsets()[row+1])
		if values, ok := arr.ListValues().(*array.Float64); ok {
			out := make([]float64, 0, end-start)
			for i := start; i < end; i++ {
				out = append(out, values.Value(i))
			}
			return out
		}
		out := make([]interface{}, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, extractValue(arr.ListValues(), i))
		}
		return out
	default:
		return fmt.Sprintf("%v", col.GetOneForMarshal(row))
	}
}
