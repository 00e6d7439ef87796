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

package sigetl

import (
	"fmt"
	"strings"

	"github.com/sigetl/sigetl/primitive"

	_ "github.com/sigetl/sigetl/aggregations"    // built-in aggregation primitives
	_ "github.com/sigetl/sigetl/transformations" // built-in transformation primitives
)

// Step specifies one transformation or aggregation: a logical name, the
// identifier of the primitive to apply, and optional initialization parameters.
// The same shape is used for both lists; only the pipeline position differs.
type Step struct {
	Name       string                 `json:"name" yaml:"name" toml:"name"`
	Primitive  string                 `json:"primitive" yaml:"primitive" toml:"primitive"`
	InitParams map[string]interface{} `json:"init_params,omitempty" yaml:"init_params,omitempty" toml:"init_params,omitempty"`
}

// Output declares one named pipeline output and the internal variable it is
// sourced from. Names are dotted: {transformation-prefix}.{aggregation}.{field};
// variables are {primitive}#{occurrence}.{field}.
type Output struct {
	Name     string
	Variable string
}

// BuildError wraps pipeline construction failures with step context.
type BuildError struct {
	Step string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build pipeline step %q: %v", e.Step, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

type boundTransformer struct {
	key   string
	block primitive.Transformer
}

type boundAggregator struct {
	key    string
	fields []primitive.Field
	block  primitive.Aggregator
}

// FeaturePipeline is the composed, ordered sequence of primitive invocations
// plus declared outputs. Built once per dataset and treated as read-only
// thereafter; safe to reuse across rows.
type FeaturePipeline struct {
	primitives   []string
	initParams   map[string]map[string]interface{}
	outputs      []Output
	transformers []boundTransformer
	aggregators  []boundAggregator
}

// BuildPipeline assembles the given transformation and aggregation steps into
// a single FeaturePipeline using the default primitive registry.
//
// Each primitive instance is assigned a unique internal key
// {primitive}#{occurrence}; the occurrence counter is global across the whole
// combined transformation+aggregation sequence, so repeated identifiers never
// collide. The pipeline's declared outputs are every output field of every
// aggregation step, named {prefix}.{aggregation-name}.{field} where prefix is
// the transformation names joined with ".".
func BuildPipeline(transformations, aggregations []Step) (*FeaturePipeline, error) {
	return BuildPipelineWith(primitive.Default, transformations, aggregations)
}

// BuildPipelineWith is BuildPipeline against an explicit registry.
func BuildPipelineWith(registry *primitive.Registry, transformations, aggregations []Step) (*FeaturePipeline, error) {
	p := &FeaturePipeline{
		initParams: make(map[string]map[string]interface{}),
	}
	counter := make(map[string]int)
	prefixParts := make([]string, 0, len(transformations))

	for _, step := range transformations {
		prefixParts = append(prefixParts, step.Name)

		counter[step.Primitive]++
		key := fmt.Sprintf("%s#%d", step.Primitive, counter[step.Primitive])
		p.primitives = append(p.primitives, step.Primitive)

		spec, err := registry.Lookup(step.Primitive)
		if err != nil {
			return nil, &BuildError{Step: step.Name, Err: err}
		}
		if spec.Kind != primitive.Transformation {
			return nil, &BuildError{Step: step.Name, Err: fmt.Errorf("primitive %q is an %s, not a transformation", step.Primitive, spec.Kind)}
		}
		block, err := spec.BuildTransformer(step.InitParams)
		if err != nil {
			return nil, &BuildError{Step: step.Name, Err: err}
		}
		p.transformers = append(p.transformers, boundTransformer{key: key, block: block})

		if len(step.InitParams) > 0 {
			p.initParams[key] = step.InitParams
		}
	}

	// An empty transformation list yields an empty prefix and therefore output
	// names with a leading dot. Preserved as observed behavior.
	prefix := strings.Join(prefixParts, ".")

	for _, step := range aggregations {
		aggregationName := prefix + "." + step.Name

		counter[step.Primitive]++
		key := fmt.Sprintf("%s#%d", step.Primitive, counter[step.Primitive])
		p.primitives = append(p.primitives, step.Primitive)

		spec, err := registry.Lookup(step.Primitive)
		if err != nil {
			return nil, &BuildError{Step: step.Name, Err: err}
		}
		if spec.Kind != primitive.Aggregation {
			return nil, &BuildError{Step: step.Name, Err: fmt.Errorf("primitive %q is a %s, not an aggregation", step.Primitive, spec.Kind)}
		}
		block, err := spec.BuildAggregator(step.InitParams)
		if err != nil {
			return nil, &BuildError{Step: step.Name, Err: err}
		}

		for _, field := range spec.Outputs {
			p.outputs = append(p.outputs, Output{
				Name:     aggregationName + "." + field.Name,
				Variable: key + "." + field.Name,
			})
		}
		p.aggregators = append(p.aggregators, boundAggregator{key: key, fields: spec.Outputs, block: block})

		if len(step.InitParams) > 0 {
			p.initParams[key] = step.InitParams
		}
	}

	return p, nil
}

// Run executes the pipeline once: the transformations in order over the input
// signal, then every aggregation over the final representation. The returned
// scalars are aligned with the declared outputs.
func (p *FeaturePipeline) Run(amplitudeValues []float64, samplingFrequency float64) ([]float64, error) {
	sig := primitive.Signal{
		Amplitudes:        amplitudeValues,
		SamplingFrequency: samplingFrequency,
	}

	var err error
	for _, t := range p.transformers {
		sig, err = t.block.Apply(sig)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.key, err)
		}
	}

	variables := make(map[string]float64, len(p.outputs))
	for _, a := range p.aggregators {
		values, err := a.block.Aggregate(sig)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.key, err)
		}
		if len(values) != len(a.fields) {
			return nil, fmt.Errorf("%s: produced %d values for %d declared outputs", a.key, len(values), len(a.fields))
		}
		for i, field := range a.fields {
			variables[a.key+"."+field.Name] = values[i]
		}
	}

	results := make([]float64, len(p.outputs))
	for i, out := range p.outputs {
		v, ok := variables[out.Variable]
		if !ok {
			return nil, fmt.Errorf("output %s: variable %s was not produced", out.Name, out.Variable)
		}
		results[i] = v
	}
	return results, nil
}

// Outputs returns the declared pipeline outputs in order.
func (p *FeaturePipeline) Outputs() []Output {
	out := make([]Output, len(p.outputs))
	copy(out, p.outputs)
	return out
}

// OutputNames returns the declared output names in order.
func (p *FeaturePipeline) OutputNames() []string {
	names := make([]string, len(p.outputs))
	for i, out := range p.outputs {
		names[i] = out.Name
	}
	return names
}

// Primitives returns the ordered primitive identifier sequence.
func (p *FeaturePipeline) Primitives() []string {
	out := make([]string, len(p.primitives))
	copy(out, p.primitives)
	return out
}

// InitParams returns the initialization parameters keyed by disambiguated
// primitive occurrence.
func (p *FeaturePipeline) InitParams() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(p.initParams))
	for k, v := range p.initParams {
		out[k] = v
	}
	return out
}

// ApplyRow executes a built pipeline against one data row: the sampling
// frequency is resolved (constant or per-row column), the amplitude values are
// extracted from the row's values column, and the pipeline's outputs are
// collected into a record keyed by the declared dotted names.
//
// Failures from the underlying primitives propagate unmodified.
func ApplyRow(row Record, p *FeaturePipeline, valuesColumn string, rate SamplingFrequency) (Record, error) {
	hz, err := rate.Resolve(row)
	if err != nil {
		return nil, err
	}

	raw, ok := row[valuesColumn]
	if !ok {
		return nil, fmt.Errorf("values column %q missing from row", valuesColumn)
	}
	amplitudeValues, err := primitive.AsFloats(raw)
	if err != nil {
		return nil, fmt.Errorf("values column %q: %w", valuesColumn, err)
	}

	results, err := p.Run(amplitudeValues, hz)
	if err != nil {
		return nil, err
	}

	record := make(Record, len(results))
	for i, out := range p.outputs {
		record[out.Name] = results[i]
	}
	return record, nil
}
