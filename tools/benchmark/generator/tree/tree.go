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

// Package tree contains the generator of class hierarchies shaped as trees.
package tree

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/rdfsinfer/tools/benchmark/generator"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/vocabulary"
)

// Base is the namespace of the generated classes.
const Base = "http://example.org/tree/"

// treeGenerator generates rdfs:subClassOf statements modeled after a tree.
type treeGenerator struct {
	branch int
}

// New creates a new tree generator. The statements are generated breadth
// first; every statement makes a child class a subclass of its parent.
func New(branch int) (generator.Generator, error) {
	if branch < 1 {
		return nil, fmt.Errorf("tree.New: invalid branch factor %d", branch)
	}
	return &treeGenerator{branch: branch}, nil
}

// newNode returns the class for the given branch below the parent path.
func (t *treeGenerator) newNode(branch int, parentPath string) (*node.Node, error) {
	p := fmt.Sprintf("%d/%s", branch, parentPath)
	if parentPath == "" {
		p = fmt.Sprintf("%d", branch)
	}
	return node.NewIRI(Base + p)
}

func path(n *node.Node) string {
	return strings.TrimPrefix(string(n.ID()), Base)
}

// newTriple makes the descendant a subclass of the parent.
func (t *treeGenerator) newTriple(parent, descendant *node.Node) (*triple.Triple, error) {
	return triple.New(descendant, vocabulary.RDFSSubClassOf, triple.NewNodeObject(parent))
}

// recurse generates statements while there are still statements left to
// generate.
func (t *treeGenerator) recurse(parent *node.Node, left *int, currentDepth, maxDepth int, trpls []*triple.Triple) ([]*triple.Triple, error) {
	if *left < 1 {
		return trpls, nil
	}
	for i, last := 0, *left <= t.branch; i < t.branch; i++ {
		offspring, err := t.newNode(i, path(parent))
		if err != nil {
			return trpls, err
		}
		trpl, err := t.newTriple(parent, offspring)
		if err != nil {
			return trpls, err
		}
		trpls = append(trpls, trpl)
		(*left)--
		if *left < 1 {
			break
		}
		if currentDepth < maxDepth && !last {
			ntrpls, err := t.recurse(offspring, left, currentDepth+1, maxDepth, trpls)
			if err != nil {
				return ntrpls, err
			}
			trpls = ntrpls
		}
		if *left < 1 {
			break
		}
	}
	return trpls, nil
}

// Generate returns the requested number of statements.
func (t *treeGenerator) Generate(n int) ([]*triple.Triple, error) {
	var trpls []*triple.Triple
	if n <= 0 {
		return trpls, nil
	}
	root, err := t.newNode(0, "")
	if err != nil {
		return nil, err
	}
	// A branch factor of one generates a chain.
	depth := n
	if t.branch > 1 {
		depth = int(math.Log(float64(n)) / math.Log(float64(t.branch)))
	}
	return t.recurse(root, &n, 0, depth, trpls)
}
