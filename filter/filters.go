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

// Package filter provides reusable row filters for SigETL stream runners.
//
// All functions return sigetl.Filter implementations; rows excluded by a
// filter are skipped, not failed.
package filter

import (
	"context"
	"reflect"

	"github.com/sigetl/sigetl"
	"github.com/sigetl/sigetl/primitive"
)

// HasValues creates a filter that excludes rows whose values column is
// missing, nil, or not a sequence.
func HasValues(column string) sigetl.Filter {
	return sigetl.FilterFunc(func(ctx context.Context, record sigetl.Record) (bool, error) {
		value, exists := record[column]
		if !exists || value == nil {
			return false, nil
		}
		kind := reflect.ValueOf(value).Kind()
		return kind == reflect.Slice || kind == reflect.Array, nil
	})
}

// MinSamples creates a filter that excludes rows whose values column holds
// fewer than n samples.
func MinSamples(column string, n int) sigetl.Filter {
	return sigetl.FilterFunc(func(ctx context.Context, record sigetl.Record) (bool, error) {
		value, exists := record[column]
		if !exists || value == nil {
			return false, nil
		}
		values, err := primitive.AsFloats(value)
		if err != nil {
			return false, nil
		}
		return len(values) >= n, nil
	})
}

// Equals creates a filter that includes rows where the column equals the
// expected value.
func Equals(column string, expected interface{}) sigetl.Filter {
	return sigetl.FilterFunc(func(ctx context.Context, record sigetl.Record) (bool, error) {
		value, exists := record[column]
		if !exists {
			return false, nil
		}
		return reflect.DeepEqual(value, expected), nil
	})
}
