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

package primitive

import (
	"fmt"
	"reflect"
)

// FloatParam extracts a required numeric initialization parameter.
// Config decoders produce different concrete numeric types (yaml: int/float64,
// toml: int64/float64, json: float64), so any numeric kind is accepted.
func FloatParam(params map[string]interface{}, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing init param %q", key)
	}
	f, err := AsFloat(v)
	if err != nil {
		return 0, fmt.Errorf("init param %q: %w", key, err)
	}
	return f, nil
}

// AsFloat converts any numeric value to float64.
func AsFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
}

// AsFloats converts a slice of any numeric element type to []float64.
// Sources produce different shapes for signal vectors: []float64 from parquet
// and postgres, []interface{} from jsonl, bson.A from mongo.
func AsFloats(v interface{}) ([]float64, error) {
	if f, ok := v.([]float64); ok {
		return f, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("value %v (%T) is not a sequence", v, v)
	}
	out := make([]float64, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		f, err := AsFloat(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
