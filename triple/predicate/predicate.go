// Copyright 2015 Google Inc. All rights reserved.
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

// Package predicate contains the abstraction for RDF predicates. A predicate
// is always identified by an IRI.
package predicate

import (
	"fmt"
	"strings"

	"github.com/google/rdfsinfer/triple/node"
	"github.com/pborman/uuid"
)

// ID represents a predicate IRI.
type ID string

// String converts an ID to its string form.
func (i ID) String() string {
	return string(i)
}

// Predicate represents the relationship between a subject and an object.
type Predicate struct {
	id ID
}

// New returns a new predicate for the provided IRI.
func New(iri string) (*Predicate, error) {
	if err := node.ValidIRI(iri); err != nil {
		return nil, fmt.Errorf("predicate.New(%q): %v", iri, err)
	}
	return &Predicate{id: ID(iri)}, nil
}

// MustNew returns a new predicate or panics.
func MustNew(iri string) *Predicate {
	p, err := New(iri)
	if err != nil {
		panic(err)
	}
	return p
}

// FromNode returns the predicate named by the provided node. Blank nodes
// cannot be used as predicates.
func FromNode(n *node.Node) (*Predicate, error) {
	if n.IsBlank() {
		return nil, fmt.Errorf("predicate.FromNode(%s): blank nodes cannot be used as predicates", n)
	}
	return New(string(n.ID()))
}

// Parse returns a predicate given its pretty printed form.
func Parse(s string) (*Predicate, error) {
	raw := strings.TrimSpace(s)
	if len(raw) < 2 || raw[0] != '<' || raw[len(raw)-1] != '>' {
		return nil, fmt.Errorf("predicate.Parse: invalid format %q, expected <iri>", raw)
	}
	return New(raw[1 : len(raw)-1])
}

// ID returns the IRI of the predicate.
func (p *Predicate) ID() ID {
	return p.id
}

// String returns the pretty printed predicate.
func (p *Predicate) String() string {
	return "<" + string(p.id) + ">"
}

// Node returns the resource named by the predicate. Predicates are
// resources themselves and can appear as subjects or objects.
func (p *Predicate) Node() *node.Node {
	return node.MustIRI(string(p.id))
}

// Equal returns true if both predicates have the same IRI.
func (p *Predicate) Equal(op *Predicate) bool {
	if p == nil || op == nil {
		return p == op
	}
	return p.id == op.id
}

// UUID returns a global unique identifier for the given predicate. It shares
// the same value as the UUID of the node it names.
func (p *Predicate) UUID() uuid.UUID {
	return uuid.NewSHA1(uuid.NIL, []byte(p.String()))
}
