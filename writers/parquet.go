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
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/apache/arrow/go/arrow/memory"
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/sigetl/sigetl"
	"github.com/sigetl/sigetl/primitive"
)

// ParquetWriterError provides structured error information for parquet writer
// operations.
type ParquetWriterError struct {
	Op  string
	Err error
}

func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterOptions configures the Parquet writer.
type ParquetWriterOptions struct {
	ChunkSize int
	Columns   []string
}

// ParquetWriterOption represents a configuration function.
type ParquetWriterOption func(*ParquetWriterOptions)

// WithParquetWriterChunkSize sets the rows per written record batch.
func WithParquetWriterChunkSize(size int) ParquetWriterOption {
	return func(o *ParquetWriterOptions) { o.ChunkSize = size }
}

// WithParquetWriterColumns fixes the column order. When unset, the columns of
// the first record are used in sorted order.
func WithParquetWriterColumns(columns ...string) ParquetWriterOption {
	return func(o *ParquetWriterOptions) {
		o.Columns = make([]string, len(columns))
		copy(o.Columns, columns)
	}
}

// ParquetWriter implements sigetl.DataSink for Parquet files. The Arrow
// schema is inferred from the first record; signal vectors become
// list<double> columns.
type ParquetWriter struct {
	fileHandle *os.File
	writer     *pqarrow.FileWriter
	schema     *arrow.Schema
	columns    []string
	buffer     []sigetl.Record
	opts       ParquetWriterOptions
	mu         sync.Mutex
}

// NewParquetWriter creates a Parquet writer targeting the given file.
func NewParquetWriter(filename string, options ...ParquetWriterOption) (*ParquetWriter, error) {
	opts := ParquetWriterOptions{ChunkSize: 1000}
	for _, option := range options {
		option(&opts)
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, &ParquetWriterError{Op: "create_file", Err: err}
	}
	return &ParquetWriter{
		fileHandle: f,
		columns:    opts.Columns,
		opts:       opts,
	}, nil
}

// Write implements the sigetl.DataSink interface. Records are buffered and
// written in chunks.
func (p *ParquetWriter) Write(ctx context.Context, record sigetl.Record) error {
	select {
	case <-ctx.Done():
		return &ParquetWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schema == nil {
		if err := p.initSchema(record); err != nil {
			return err
		}
	}

	p.buffer = append(p.buffer, record)
	if len(p.buffer) >= p.opts.ChunkSize {
		return p.writeChunkLocked()
	}
	return nil
}

// Flush implements the sigetl.DataSink interface.
func (p *ParquetWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeChunkLocked()
}

// Close flushes buffered records, finalizes the file footer, and closes the
// file.
func (p *ParquetWriter) Close() error {
	if err := p.Flush(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			return &ParquetWriterError{Op: "close_writer", Err: err}
		}
		p.writer = nil
		p.fileHandle = nil
		return nil
	}
	if p.fileHandle != nil {
		err := p.fileHandle.Close()
		p.fileHandle = nil
		return err
	}
	return nil
}

func (p *ParquetWriter) initSchema(record sigetl.Record) error {
	if p.columns == nil {
		p.columns = make([]string, 0, len(record))
		for key := range record {
			p.columns = append(p.columns, key)
		}
		sort.Strings(p.columns)
	}

	fields := make([]arrow.Field, len(p.columns))
	for i, column := range p.columns {
		dataType, err := arrowType(record[column])
		if err != nil {
			return &ParquetWriterError{Op: "infer_schema", Err: fmt.Errorf("column %q: %w", column, err)}
		}
		fields[i] = arrow.Field{Name: column, Type: dataType, Nullable: true}
	}
	p.schema = arrow.NewSchema(fields, nil)

	writer, err := pqarrow.NewFileWriter(
		p.schema,
		p.fileHandle,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return &ParquetWriterError{Op: "create_writer", Err: err}
	}
	p.writer = writer
	return nil
}

func (p *ParquetWriter) writeChunkLocked() error {
	if len(p.buffer) == 0 || p.writer == nil {
		return nil
	}

	builder := array.NewRecordBuilder(memory.NewGoAllocator(), p.schema)
	defer builder.Release()

	for _, record := range p.buffer {
		for i, column := range p.columns {
			if err := appendValue(builder.Field(i), record[column]); err != nil {
				return &ParquetWriterError{Op: "build_chunk", Err: fmt.Errorf("column %q: %w", column, err)}
			}
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()
	if err := p.writer.Write(rec); err != nil {
		return &ParquetWriterError{Op: "write_chunk", Err: err}
	}
	p.buffer = p.buffer[:0]
	return nil
}

// arrowType maps a Go record value to its Arrow data type.
func arrowType(value interface{}) (arrow.DataType, error) {
	switch value.(type) {
	case bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case int, int32, int64:
		return arrow.PrimitiveTypes.Int64, nil
	case float32, float64:
		return arrow.PrimitiveTypes.Float64, nil
	case string, nil:
		return arrow.BinaryTypes.String, nil
	case []float64, []interface{}:
		return arrow.ListOf(arrow.PrimitiveTypes.Float64), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func appendValue(fieldBuilder array.Builder, value interface{}) error {
	if value == nil {
		fieldBuilder.AppendNull()
		return nil
	}
	switch b := fieldBuilder.(type) {
	case *array.BooleanBuilder:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		b.Append(v)
	case *array.Int64Builder:
		switch v := value.(type) {
		case int:
			b.Append(int64(v))
		case int32:
			b.Append(int64(v))
		case int64:
			b.Append(v)
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case *array.Float64Builder:
		switch v := value.(type) {
		case float32:
			b.Append(float64(v))
		case float64:
			b.Append(v)
		default:
			return fmt.Errorf("expected float, got %T", value)
		}
	case *array.StringBuilder:
		b.Append(fmt.Sprintf("%v", value))
	case *array.ListBuilder:
		values, err := primitive.AsFloats(value)
		if err != nil {
			return err
		}
		b.Append(true)
		valueBuilder := b.ValueBuilder().(*array.Float64Builder)
		for _, v := range values {
			valueBuilder.Append(v)
		}
	default:
		return fmt.Errorf("unsupported builder type %T", fieldBuilder)
	}
	return nil
}
