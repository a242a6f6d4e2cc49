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

// Package graph contains the generator of random data graphs.
package graph

import (
	"fmt"
	"math/rand"

	"github.com/google/rdfsinfer/tools/benchmark/generator"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
)

const (
	// Base is the namespace of the generated resources.
	Base = "http://example.org/graph/"
	// Follows is the predicate every generated statement uses.
	Follows = "http://example.org/follows"
)

// randomGraph generates a random graph using the number of provided nodes.
type randomGraph struct {
	nodes     int
	predicate *predicate.Predicate
}

// NewRandomGraph creates a new random graph generator.
func NewRandomGraph(n int) (generator.Generator, error) {
	if n < 1 {
		return nil, fmt.Errorf("graph.NewRandomGraph: invalid number of nodes %d<1", n)
	}
	p, err := predicate.New(Follows)
	if err != nil {
		return nil, err
	}
	return &randomGraph{
		nodes:     n,
		predicate: p,
	}, nil
}

func (r *randomGraph) newNode(i int) (*node.Node, error) {
	return node.NewIRI(fmt.Sprintf("%s%d", Base, i))
}

// newTriple creates new triple using the provided node IDs.
func (r *randomGraph) newTriple(i, j int) (*triple.Triple, error) {
	s, err := r.newNode(i)
	if err != nil {
		return nil, err
	}
	o, err := r.newNode(j)
	if err != nil {
		return nil, err
	}
	return triple.New(s, r.predicate, triple.NewNodeObject(o))
}

// Generate creates the required number of triples.
func (r *randomGraph) Generate(n int) ([]*triple.Triple, error) {
	maxEdges := r.nodes * r.nodes
	if n > maxEdges {
		return nil, fmt.Errorf("graph.Generate: current configuration only allows a max of %d triples (%d requested)", maxEdges, n)
	}
	var trpls []*triple.Triple
	for _, idx := range rand.Perm(maxEdges)[:n] {
		i, j := idx/r.nodes, idx%r.nodes
		t, err := r.newTriple(i, j)
		if err != nil {
			return nil, err
		}
		trpls = append(trpls, t)
	}
	return trpls, nil
}
