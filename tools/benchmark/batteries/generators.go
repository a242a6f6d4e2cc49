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

// Package batteries generates the benchmarks used to meter the inferencer.
package batteries

import (
	"context"
	"fmt"

	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/tools/benchmark/generator"
	"github.com/google/rdfsinfer/tools/benchmark/generator/graph"
	"github.com/google/rdfsinfer/tools/benchmark/generator/tree"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	"github.com/google/rdfsinfer/vocabulary"
)

// Factory returns a new initialized inferencer over an empty store.
type Factory func(ctx context.Context) (*inference.Inferencer, error)

// getTreeGenerators returns the set of tree generators to use while creating
// benchmarks.
func getTreeGenerators(bFactors []int) ([]generator.Generator, error) {
	var gens []generator.Generator
	for _, b := range bFactors {
		t, err := tree.New(b)
		if err != nil {
			return nil, err
		}
		gens = append(gens, t)
	}
	return gens, nil
}

// getGraphGenerators returns the set of random graph generators to use while
// creating benchmarks.
func getGraphGenerators(nodes []int) ([]generator.Generator, error) {
	var gens []generator.Generator
	for _, b := range nodes {
		t, err := graph.NewRandomGraph(b)
		if err != nil {
			return nil, err
		}
		gens = append(gens, t)
	}
	return gens, nil
}

// graphSchema types both ends of the random graph statements.
func graphSchema() ([]*triple.Triple, error) {
	var (
		person = node.MustIRI("http://example.org/Person")
		agent  = node.MustIRI("http://example.org/Agent")
	)
	follows, err := predicate.New(graph.Follows)
	if err != nil {
		return nil, err
	}
	fn := follows.Node()
	var ts []*triple.Triple
	for _, s := range []struct {
		s *node.Node
		p *predicate.Predicate
		o *node.Node
	}{
		{fn, vocabulary.RDFSDomain, person},
		{fn, vocabulary.RDFSRange, person},
		{person, vocabulary.RDFSSubClassOf, agent},
	} {
		t, err := triple.New(s.s, s.p, triple.NewNodeObject(s.o))
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// dataSet is one generated set of statements.
type dataSet struct {
	id      string
	triples []*triple.Triple
}

func generate(gs []generator.Generator, params, sizes []int, label string) ([]dataSet, error) {
	var ds []dataSet
	for idx, g := range gs {
		for _, s := range sizes {
			ts, err := g.Generate(s)
			if err != nil {
				return nil, err
			}
			ds = append(ds, dataSet{
				id:      fmt.Sprintf("%s=%04d, size=%07d", label, params[idx], s),
				triples: ts,
			})
		}
	}
	return ds, nil
}

// commit runs one transaction adding and removing the provided statements.
func commit(ctx context.Context, inf *inference.Inferencer, add, remove []*triple.Triple) error {
	c, err := inf.Begin(ctx, storage.ReadCommitted)
	if err != nil {
		return err
	}
	defer c.Close(ctx)
	if len(add) > 0 {
		if err := c.AddTriples(ctx, add); err != nil {
			return err
		}
	}
	if len(remove) > 0 {
		if err := c.RemoveTriples(ctx, remove); err != nil {
			return err
		}
	}
	return c.Commit(ctx)
}
