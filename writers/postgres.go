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
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/sigetl/sigetl"
)

// PostgresWriterError provides structured error information for PostgreSQL
// writer operations.
type PostgresWriterError struct {
	Op  string
	Err error
}

func (e *PostgresWriterError) Error() string {
	return fmt.Sprintf("postgres writer %s: %v", e.Op, e.Err)
}

func (e *PostgresWriterError) Unwrap() error {
	return e.Err
}

// PostgresWriterOptions configures the PostgreSQL writer.
type PostgresWriterOptions struct {
	Columns   []string
	BatchSize int
}

// PostgresWriterOption represents a configuration function.
type PostgresWriterOption func(*PostgresWriterOptions)

// WithPostgresWriterColumns fixes the insert column order. When unset, the
// columns of the first record are used in sorted order.
func WithPostgresWriterColumns(columns ...string) PostgresWriterOption {
	return func(o *PostgresWriterOptions) {
		o.Columns = make([]string, len(columns))
		copy(o.Columns, columns)
	}
}

// WithPostgresWriterBatchSize sets the number of records per insert
// transaction.
func WithPostgresWriterBatchSize(size int) PostgresWriterOption {
	return func(o *PostgresWriterOptions) { o.BatchSize = size }
}

// PostgresWriter implements sigetl.DataSink for PostgreSQL tables. Records
// are inserted in batched transactions; signal vectors map to float8[]
// columns through pq.Array.
type PostgresWriter struct {
	db      *sql.DB
	table   string
	columns []string
	buffer  []sigetl.Record
	opts    PostgresWriterOptions
	mu      sync.Mutex
}

// NewPostgresWriter creates a writer inserting into the given table.
func NewPostgresWriter(db *sql.DB, table string, options ...PostgresWriterOption) *PostgresWriter {
	opts := PostgresWriterOptions{BatchSize: 100}
	for _, option := range options {
		option(&opts)
	}
	return &PostgresWriter{
		db:      db,
		table:   table,
		columns: opts.Columns,
		opts:    opts,
	}
}

// Write implements the sigetl.DataSink interface.
func (p *PostgresWriter) Write(ctx context.Context, record sigetl.Record) error {
	select {
	case <-ctx.Done():
		return &PostgresWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.columns == nil {
		p.columns = make([]string, 0, len(record))
		for key := range record {
			p.columns = append(p.columns, key)
		}
		sort.Strings(p.columns)
	}

	p.buffer = append(p.buffer, record)
	if len(p.buffer) >= p.opts.BatchSize {
		return p.insertBatchLocked(ctx)
	}
	return nil
}

// Flush implements the sigetl.DataSink interface.
func (p *PostgresWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertBatchLocked(context.Background())
}

// Close flushes any buffered records. The database handle is owned by the
// caller and stays open.
func (p *PostgresWriter) Close() error {
	return p.Flush()
}

func (p *PostgresWriter) insertBatchLocked(ctx context.Context) error {
	if len(p.buffer) == 0 {
		return nil
	}

	quoted := make([]string, len(p.columns))
	for i, column := range p.columns {
		quoted[i] = pq.QuoteIdentifier(column)
	}
	placeholders := make([]string, len(p.columns))
	for i := range p.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(p.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &PostgresWriterError{Op: "begin", Err: err}
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return &PostgresWriterError{Op: "prepare", Err: err}
	}

	for _, record := range p.buffer {
		args := make([]interface{}, len(p.columns))
		for i, column := range p.columns {
			if values, ok := record[column].([]float64); ok {
				args[i] = pq.Array(values)
			} else {
				args[i] = record[column]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return &PostgresWriterError{Op: "insert", Err: err}
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return &PostgresWriterError{Op: "commit", Err: err}
	}
	p.buffer = p.buffer[:0]
	return nil
}
