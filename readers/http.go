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
	"net/http"
	"strings"

	"github.com/sigetl/sigetl"
)

// HTTPReaderError provides structured error information for HTTP reader
// operations.
type HTTPReaderError struct {
	Op  string
	Err error
}

func (e *HTTPReaderError) Error() string {
	return fmt.Sprintf("http reader %s: %v", e.Op, e.Err)
}

func (e *HTTPReaderError) Unwrap() error {
	return e.Err
}

// NewHTTPReader fetches a dataset over HTTP GET and decodes the response body
// with a CSV or JSONL reader chosen from the URL path or Content-Type.
func NewHTTPReader(ctx context.Context, client *http.Client, url string, valuesColumn string) (sigetl.DataSource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if valuesColumn == "" {
		valuesColumn = sigetl.DefaultValuesColumn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &HTTPReaderError{Op: "build_request", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &HTTPReaderError{Op: "get", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPReaderError{Op: "get", Err: fmt.Errorf("unexpected status %s for %s", resp.Status, url)}
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.HasSuffix(url, ".jsonl"), strings.HasSuffix(url, ".ndjson"),
		strings.Contains(contentType, "x-ndjson"), strings.Contains(contentType, "jsonlines"):
		return NewJSONLReader(resp.Body), nil
	case strings.HasSuffix(url, ".csv"), strings.Contains(contentType, "text/csv"):
		inner, err := NewCSVReader(resp.Body, WithCSVValuesColumn(valuesColumn))
		if err != nil {
			resp.Body.Close()
			return nil, &HTTPReaderError{Op: "open_csv", Err: err}
		}
		return inner, nil
	default:
		resp.Body.Close()
		return nil, &HTTPReaderError{Op: "detect_format", Err: fmt.Errorf("cannot determine format for %s (content type %q)", url, contentType)}
	}
}
