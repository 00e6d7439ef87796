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

// Package readers provides implementations of sigetl.DataSource for reading
// signal datasets from various sources.
//
// Text-based sources store the signal vector of a row as a single cell;
// ParseValues decodes the supported encodings.
package readers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseValues decodes a signal vector from its textual cell representation:
// a JSON array ("[1.0, 2.0]") or a semicolon/whitespace separated list
// ("1.0;2.0" or "1.0 2.0").
func ParseValues(cell string) ([]float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, fmt.Errorf("empty values cell")
	}
	if strings.HasPrefix(cell, "[") {
		var values []float64
		if err := json.Unmarshal([]byte(cell), &values); err != nil {
			return nil, fmt.Errorf("values cell: %w", err)
		}
		return values, nil
	}
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == ',' || unicode.IsSpace(r)
	})
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("values cell element %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}
