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

// Package primitive defines the primitive model for SigETL.
//
// A primitive is an independently named computation unit (e.g. an FFT transform)
// with declared output fields. Primitives are resolved by identifier string
// through a Registry and instantiated with optional initialization parameters.
package primitive

import (
	"errors"
	"fmt"
	"sync"
)

// Kind distinguishes the two pipeline positions a primitive can occupy.
type Kind int

const (
	// Transformation primitives reshape a signal into an intermediate representation.
	Transformation Kind = iota
	// Aggregation primitives reduce a signal to one or more scalar feature values.
	Aggregation
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Transformation:
		return "transformation"
	case Aggregation:
		return "aggregation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Signal is the working representation threaded between pipeline steps.
// Amplitudes always holds the current sample values; Frequencies is populated
// once a frequency-domain transformation has run.
type Signal struct {
	Amplitudes        []float64
	Frequencies       []float64
	SamplingFrequency float64
}

// Transformer is the executable form of a transformation primitive.
type Transformer interface {
	// Apply derives a new signal representation from the input signal.
	Apply(s Signal) (Signal, error)
}

// Aggregator is the executable form of an aggregation primitive.
type Aggregator interface {
	// Aggregate reduces the signal to scalar values, one per declared output
	// field, in declared-output order.
	Aggregate(s Signal) ([]float64, error)
}

// Field describes one declared output of a primitive.
type Field struct {
	Name string
}

// Spec describes a registered primitive: its identifier, pipeline position,
// declared output fields, and a constructor taking initialization parameters.
// Exactly one of BuildTransformer/BuildAggregator must be set, matching Kind.
type Spec struct {
	Name             string
	Kind             Kind
	Outputs          []Field
	BuildTransformer func(params map[string]interface{}) (Transformer, error)
	BuildAggregator  func(params map[string]interface{}) (Aggregator, error)
}

// ErrNotRegistered is returned by Lookup for unknown primitive identifiers.
var ErrNotRegistered = errors.New("primitive is not registered")

// Registry resolves primitive identifiers to their Specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a primitive spec to the registry.
// Registering an empty name, a malformed spec, or a duplicate name is an error.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("primitive spec requires a name")
	}
	switch spec.Kind {
	case Transformation:
		if spec.BuildTransformer == nil {
			return fmt.Errorf("primitive %q: transformation requires BuildTransformer", spec.Name)
		}
	case Aggregation:
		if spec.BuildAggregator == nil {
			return fmt.Errorf("primitive %q: aggregation requires BuildAggregator", spec.Name)
		}
		if len(spec.Outputs) == 0 {
			return fmt.Errorf("primitive %q: aggregation requires declared outputs", spec.Name)
		}
	default:
		return fmt.Errorf("primitive %q: unknown kind %v", spec.Name, spec.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("primitive %q is already registered", spec.Name)
	}
	r.specs[spec.Name] = spec
	return nil
}

// Lookup resolves a primitive identifier to its Spec.
func (r *Registry) Lookup(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("primitive %q: %w", name, ErrNotRegistered)
	}
	return spec, nil
}

// Outputs resolves the declared output field names of a primitive.
func (r *Registry) Outputs(name string) ([]Field, error) {
	spec, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]Field, len(spec.Outputs))
	copy(out, spec.Outputs)
	return out, nil
}

// Names returns the identifiers of all registered primitives.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}

// Default is the registry the built-in primitives register into.
var Default = NewRegistry()

// Register adds a primitive spec to the default registry.
func Register(spec Spec) error {
	return Default.Register(spec)
}

// MustRegister adds a primitive spec to the default registry and panics on
// error. Intended for package init of built-in primitives.
func MustRegister(spec Spec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

// Lookup resolves a primitive identifier in the default registry.
func Lookup(name string) (Spec, error) {
	return Default.Lookup(name)
}
