// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batteries

import (
	"context"

	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/tools/benchmark/runtime"
	"github.com/google/rdfsinfer/triple"
)

// RemoveHierarchyBenchmark meters removing half of a class hierarchy.
func RemoveHierarchyBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
	bFactors := []int{2, 20}
	gs, err := getTreeGenerators(bFactors)
	if err != nil {
		return nil, err
	}
	ds, err := generate(gs, bFactors, []int{10, 1000}, "tg branch_factor")
	if err != nil {
		return nil, err
	}
	var bes []*runtime.BenchEntry
	for _, d := range ds {
		d := d
		half := d.triples[len(d.triples)/2:]
		bes = append(bes, entry(ctx, f, "Remove hierarchy", d.id, len(half), 5, d.triples, func(inf *inference.Inferencer) error {
			return commit(ctx, inf, nil, half)
		}))
	}
	return bes, nil
}

// RemoveDataBenchmark meters removing half of the stored data statements.
func RemoveDataBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
	return removeData(ctx, f, "Remove data", true)
}

// RemoveMissingDataBenchmark meters removing data statements never stored.
func RemoveMissingDataBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
	return removeData(ctx, f, "Remove missing data", false)
}

func removeData(ctx context.Context, f Factory, battery string, existing bool) ([]*runtime.BenchEntry, error) {
	nodes := []int{100, 1000}
	gs, err := getGraphGenerators(nodes)
	if err != nil {
		return nil, err
	}
	ds, err := generate(gs, nodes, []int{10, 1000, 10000}, "rg nodes")
	if err != nil {
		return nil, err
	}
	schema, err := graphSchema()
	if err != nil {
		return nil, err
	}
	var bes []*runtime.BenchEntry
	for _, d := range ds {
		d := d
		half := d.triples[len(d.triples)/2:]
		setup := schema
		if existing {
			setup = append(append([]*triple.Triple{}, schema...), d.triples...)
		}
		bes = append(bes, entry(ctx, f, battery, d.id, len(half), 5, setup, func(inf *inference.Inferencer) error {
			return commit(ctx, inf, nil, half)
		}))
	}
	return bes, nil
}
