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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sigetl/sigetl"
)

// MongoReaderError provides structured error information for MongoDB reader
// operations.
type MongoReaderError struct {
	Op  string
	Err error
}

func (e *MongoReaderError) Error() string {
	return fmt.Sprintf("mongo reader %s: %v", e.Op, e.Err)
}

func (e *MongoReaderError) Unwrap() error {
	return e.Err
}

// MongoReaderOptions configures the MongoDB reader.
type MongoReaderOptions struct {
	Filter     bson.M
	Projection bson.M
	BatchSize  int32
	Limit      int64
}

// MongoReaderOption represents a configuration function.
type MongoReaderOption func(*MongoReaderOptions)

// WithMongoFilter sets the query filter.
func WithMongoFilter(filter bson.M) MongoReaderOption {
	return func(o *MongoReaderOptions) { o.Filter = filter }
}

// WithMongoProjection sets the query projection.
func WithMongoProjection(projection bson.M) MongoReaderOption {
	return func(o *MongoReaderOptions) { o.Projection = projection }
}

// WithMongoBatchSize sets the cursor batch size.
func WithMongoBatchSize(size int32) MongoReaderOption {
	return func(o *MongoReaderOptions) { o.BatchSize = size }
}

// WithMongoLimit caps the number of documents read.
func WithMongoLimit(limit int64) MongoReaderOption {
	return func(o *MongoReaderOptions) { o.Limit = limit }
}

// MongoReader implements sigetl.DataSource for MongoDB collections. Signal
// vectors stored as arrays of doubles arrive as bson.A and are decoded to
// []float64 by the pipeline.
type MongoReader struct {
	collection *mongo.Collection
	cursor     *mongo.Cursor
	opts       MongoReaderOptions
}

// NewMongoReader creates a reader over the given collection.
func NewMongoReader(collection *mongo.Collection, opts ...MongoReaderOption) *MongoReader {
	cfg := MongoReaderOptions{Filter: bson.M{}, BatchSize: 1000}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MongoReader{collection: collection, opts: cfg}
}

// Read implements the sigetl.DataSource interface.
func (m *MongoReader) Read(ctx context.Context) (sigetl.Record, error) {
	if m.cursor == nil {
		findOpts := options.Find().SetBatchSize(m.opts.BatchSize)
		if m.opts.Projection != nil {
			findOpts.SetProjection(m.opts.Projection)
		}
		if m.opts.Limit > 0 {
			findOpts.SetLimit(m.opts.Limit)
		}
		cursor, err := m.collection.Find(ctx, m.opts.Filter, findOpts)
		if err != nil {
			return nil, &MongoReaderError{Op: "find", Err: err}
		}
		m.cursor = cursor
	}

	if !m.cursor.Next(ctx) {
		if err := m.cursor.Err(); err != nil {
			return nil, &MongoReaderError{Op: "next", Err: err}
		}
		return nil, io.EOF
	}

	var doc bson.M
	if err := m.cursor.Decode(&doc); err != nil {
		return nil, &MongoReaderError{Op: "decode", Err: err}
	}

	record := make(sigetl.Record, len(doc))
	for key, value := range doc {
		record[key] = value
	}
	return record, nil
}

// Close implements the sigetl.DataSource interface.
func (m *MongoReader) Close() error {
	if m.cursor != nil {
		err := m.cursor.Close(context.Background())
		m.cursor = nil
		return err
	}
	return nil
}
