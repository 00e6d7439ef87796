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
	"database/sql"
	"fmt"
	"io"

	"github.com/lib/pq"

	"github.com/sigetl/sigetl"
)

// PostgresReaderError provides structured error information for PostgreSQL
// reader operations.
type PostgresReaderError struct {
	Op  string
	Err error
}

func (e *PostgresReaderError) Error() string {
	return fmt.Sprintf("postgres reader %s: %v", e.Op, e.Err)
}

func (e *PostgresReaderError) Unwrap() error {
	return e.Err
}

// PostgresReaderOptions configures the PostgreSQL reader.
type PostgresReaderOptions struct {
	ValuesColumn string
	QueryArgs    []interface{}
}

// PostgresReaderOption represents a configuration function.
type PostgresReaderOption func(*PostgresReaderOptions)

// WithPostgresValuesColumn names the float8[] column holding signal vectors.
// Defaults to "values".
func WithPostgresValuesColumn(name string) PostgresReaderOption {
	return func(o *PostgresReaderOptions) { o.ValuesColumn = name }
}

// WithPostgresQueryArgs supplies positional arguments for the query.
func WithPostgresQueryArgs(args ...interface{}) PostgresReaderOption {
	return func(o *PostgresReaderOptions) { o.QueryArgs = args }
}

// PostgresReader implements sigetl.DataSource for PostgreSQL query results.
// The values column is scanned as a float8[] array into []float64; every
// other column keeps its driver type, with byte slices decoded to strings.
type PostgresReader struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
	query   string
	opts    PostgresReaderOptions
	ownsDB  bool
}

// NewPostgresReader creates a reader over an existing database handle.
func NewPostgresReader(db *sql.DB, query string, options ...PostgresReaderOption) *PostgresReader {
	opts := PostgresReaderOptions{ValuesColumn: sigetl.DefaultValuesColumn}
	for _, option := range options {
		option(&opts)
	}
	return &PostgresReader{db: db, query: query, opts: opts}
}

// NewPostgresReaderFromDSN opens a connection for the given DSN and creates a
// reader that owns and closes it.
func NewPostgresReaderFromDSN(dsn, query string, options ...PostgresReaderOption) (*PostgresReader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &PostgresReaderError{Op: "open", Err: err}
	}
	reader := NewPostgresReader(db, query, options...)
	reader.ownsDB = true
	return reader, nil
}

// Read implements the sigetl.DataSource interface.
func (p *PostgresReader) Read(ctx context.Context) (sigetl.Record, error) {
	if p.rows == nil {
		rows, err := p.db.QueryContext(ctx, p.query, p.opts.QueryArgs...)
		if err != nil {
			return nil, &PostgresReaderError{Op: "query", Err: err}
		}
		columns, err := rows.Columns()
		if err != nil {
			rows.Close()
			return nil, &PostgresReaderError{Op: "columns", Err: err}
		}
		p.rows = rows
		p.columns = columns
	}

	if !p.rows.Next() {
		if err := p.rows.Err(); err != nil {
			return nil, &PostgresReaderError{Op: "next", Err: err}
		}
		return nil, io.EOF
	}

	targets := make([]interface{}, len(p.columns))
	for i, column := range p.columns {
		if column == p.opts.ValuesColumn {
			targets[i] = new(pq.Float64Array)
		} else {
			targets[i] = new(interface{})
		}
	}
	if err := p.rows.Scan(targets...); err != nil {
		return nil, &PostgresReaderError{Op: "scan", Err: err}
	}

	record := make(sigetl.Record, len(p.columns))
	for i, column := range p.columns {
		if arr, ok := targets[i].(*pq.Float64Array); ok {
			record[column] = []float64(*arr)
			continue
		}
		value := *(targets[i].(*interface{}))
		if b, ok := value.([]byte); ok {
			value = string(b)
		}
		record[column] = value
	}
	return record, nil
}

// Close implements the sigetl.DataSource interface.
func (p *PostgresReader) Close() error {
	var err error
	if p.rows != nil {
		err = p.rows.Close()
		p.rows = nil
	}
	if p.ownsDB && p.db != nil {
		if closeErr := p.db.Close(); err == nil {
			err = closeErr
		}
		p.db = nil
	}
	return err
}
