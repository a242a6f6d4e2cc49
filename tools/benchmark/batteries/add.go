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
	"fmt"

	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/tools/benchmark/runtime"
	"github.com/google/rdfsinfer/triple"
)

// entry returns a benchmark entry running f against a new inferencer
// prepared by running setup statements.
func entry(ctx context.Context, f Factory, battery, id string, size, reps int, setup []*triple.Triple, run func(inf *inference.Inferencer) error) *runtime.BenchEntry {
	var inf *inference.Inferencer
	return &runtime.BenchEntry{
		BatteryID: battery,
		ID:        fmt.Sprintf("%s, reps=%02d", id, reps),
		Triples:   size,
		Reps:      reps,
		Setup: func() error {
			var err error
			if inf, err = f(ctx); err != nil {
				return err
			}
			if len(setup) == 0 {
				return nil
			}
			return commit(ctx, inf, setup, nil)
		},
		F: func() error {
			return run(inf)
		},
		TearDown: func() error {
			return inf.Store().Close(ctx)
		},
	}
}

// AddHierarchyBenchmark meters adding class hierarchies. Every commit
// recomputes the closure and derives every inferred statement again.
func AddHierarchyBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
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
		bes = append(bes, entry(ctx, f, "Add hierarchy", d.id, len(d.triples), 5, nil, func(inf *inference.Inferencer) error {
			return commit(ctx, inf, d.triples, nil)
		}))
	}
	return bes, nil
}

// AddDataBenchmark meters adding data statements that are forward chained
// as they are added.
func AddDataBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
	return addData(ctx, f, "Add data", false)
}

// AddExistingDataBenchmark meters adding data statements already stored.
func AddExistingDataBenchmark(ctx context.Context, f Factory) ([]*runtime.BenchEntry, error) {
	return addData(ctx, f, "Add existing data", true)
}

func addData(ctx context.Context, f Factory, battery string, existing bool) ([]*runtime.BenchEntry, error) {
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
		setup := schema
		if existing {
			setup = append(append([]*triple.Triple{}, schema...), d.triples...)
		}
		bes = append(bes, entry(ctx, f, battery, d.id, len(d.triples), 5, setup, func(inf *inference.Inferencer) error {
			// The schema is already known so the closure is never recomputed.
			return commit(ctx, inf, d.triples, nil)
		}))
	}
	return bes, nil
}
