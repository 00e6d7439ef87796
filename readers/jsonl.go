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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sigetl/sigetl"
)

// JSONLReaderError wraps structured error information for the JSONL reader.
type JSONLReaderError struct {
	Op  string
	Err error
}

func (e *JSONLReaderError) Error() string {
	return fmt.Sprintf("jsonl reader %s: %v", e.Op, e.Err)
}

func (e *JSONLReaderError) Unwrap() error {
	return e.Err
}

// JSONLReader implements sigetl.DataSource for line-delimited JSON files.
// Signal vectors arrive as JSON arrays and need no cell decoding.
type JSONLReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int64
}

// NewJSONLReader creates a reader for line-delimited JSON.
func NewJSONLReader(r io.ReadCloser) *JSONLReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &JSONLReader{
		scanner: scanner,
		closer:  r,
	}
}

// Read implements the sigetl.DataSource interface.
func (j *JSONLReader) Read(ctx context.Context) (sigetl.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &JSONLReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	for j.scanner.Scan() {
		j.line++
		line := strings.TrimSpace(j.scanner.Text())
		if line == "" {
			continue
		}
		var record sigetl.Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, &JSONLReaderError{Op: fmt.Sprintf("decode_line_%d", j.line), Err: err}
		}
		return record, nil
	}
	if err := j.scanner.Err(); err != nil {
		return nil, &JSONLReaderError{Op: "scan", Err: err}
	}
	return nil, io.EOF
}

// Close implements the sigetl.DataSource interface.
func (j *JSONLReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
