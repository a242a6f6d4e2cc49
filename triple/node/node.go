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

// Package node provides the abstraction to build and use RDF resources: IRIs
// and blank nodes. Nodes are used as subjects, resource objects and graph
// names of a triple.
package node

import (
	"fmt"
	"strings"

	"github.com/pborman/uuid"
)

// Kind of a node.
type Kind uint8

const (
	// IRI nodes are identified by an absolute IRI.
	IRI Kind = iota
	// Blank nodes are identified by a label local to the store.
	Blank
)

// String returns a pretty printed kind.
func (k Kind) String() string {
	switch k {
	case IRI:
		return "IRI"
	case Blank:
		return "BLANK"
	default:
		return "UNKNOWN"
	}
}

// ID represents a node ID: the IRI or the blank node label.
type ID string

// String converts a ID to its string form.
func (i ID) String() string {
	return string(i)
}

// Node describes a resource in an RDF graph.
type Node struct {
	k  Kind
	id ID
}

// Kind returns the kind of the node.
func (n *Node) Kind() Kind {
	return n.k
}

// ID returns the ID of the node.
func (n *Node) ID() ID {
	return n.id
}

// IsBlank returns true if the node is a blank node.
func (n *Node) IsBlank() bool {
	return n.k == Blank
}

// String returns a pretty printing representation of Node.
func (n *Node) String() string {
	if n.k == Blank {
		return "_:" + string(n.id)
	}
	return "<" + string(n.id) + ">"
}

// Equal returns true if both nodes identify the same resource.
func (n *Node) Equal(on *Node) bool {
	if n == nil || on == nil {
		return n == on
	}
	return n.k == on.k && n.id == on.id
}

// UUID returns a global unique identifier for the given node. It is
// implemented as the SHA1 UUID of the pretty printed node.
func (n *Node) UUID() uuid.UUID {
	return uuid.NewSHA1(uuid.NIL, []byte(n.String()))
}

// Parse returns a node given a pretty printed representation of Node.
func Parse(s string) (*Node, error) {
	raw := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(raw, "_:"):
		return NewBlank(raw[2:])
	case strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") && len(raw) > 1:
		return NewIRI(raw[1 : len(raw)-1])
	}
	return nil, fmt.Errorf("node.Parse: invalid format %q, expected <iri> or _:label", raw)
}

// NewIRI returns a new IRI node.
func NewIRI(iri string) (*Node, error) {
	if err := ValidIRI(iri); err != nil {
		return nil, fmt.Errorf("node.NewIRI(%q): %v", iri, err)
	}
	return &Node{k: IRI, id: ID(iri)}, nil
}

// NewBlank returns a blank node with the provided label.
func NewBlank(label string) (*Node, error) {
	if label == "" {
		return nil, fmt.Errorf("node.NewBlank: empty label")
	}
	if strings.ContainsAny(label, " \t\n\r<>\"") {
		return nil, fmt.Errorf("node.NewBlank(%q) does not allow spaces, '<', '>' or '\"'", label)
	}
	return &Node{k: Blank, id: ID(label)}, nil
}

// NewBlankNode creates a new blank node. The blank node label is a random
// UUID.
func NewBlankNode() *Node {
	return &Node{k: Blank, id: ID(uuid.NewRandom().String())}
}

// MustIRI returns a new IRI node or panics. It is intended for package level
// vocabulary tables.
func MustIRI(iri string) *Node {
	n, err := NewIRI(iri)
	if err != nil {
		panic(err)
	}
	return n
}

// ValidIRI returns an error if the string cannot be used as an IRI.
func ValidIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("empty IRI")
	}
	if strings.ContainsAny(iri, " \t\n\r<>\"{}|^`\\") {
		return fmt.Errorf("IRI contains forbidden characters")
	}
	return nil
}
