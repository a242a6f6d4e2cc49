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

// Package triple implements and allows to manipulate RDF statements. A
// triple is a subject, a predicate and an object, optionally placed in a
// named graph (its context).
package triple

import (
	"fmt"
	"strings"

	"github.com/google/rdfsinfer/triple/literal"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	"github.com/pborman/uuid"
)

// Object is the box that either contains a resource or a literal.
type Object struct {
	n *node.Node
	l *literal.Literal
}

// String pretty prints the object.
func (o *Object) String() string {
	if o.n != nil {
		return o.n.String()
	}
	if o.l != nil {
		return o.l.String()
	}
	return "@@@INVALID_OBJECT@@@"
}

// UUID returns a global unique identifier for the given object.
func (o *Object) UUID() uuid.UUID {
	if o.n != nil {
		return o.n.UUID()
	}
	return o.l.UUID()
}

// IsResource returns true if the object is an IRI or a blank node.
func (o *Object) IsResource() bool {
	return o.n != nil
}

// Node attempts to return the boxed resource.
func (o *Object) Node() (*node.Node, error) {
	if o.n == nil {
		return nil, fmt.Errorf("triple.Object(%s).Node(): the object is not a resource", o)
	}
	return o.n, nil
}

// Literal attempts to return the boxed literal.
func (o *Object) Literal() (*literal.Literal, error) {
	if o.l == nil {
		return nil, fmt.Errorf("triple.Object(%s).Literal(): the object is not a literal", o)
	}
	return o.l, nil
}

// Equal returns true if both objects box the same value.
func (o *Object) Equal(oo *Object) bool {
	if o == nil || oo == nil {
		return o == oo
	}
	if o.n != nil {
		return o.n.Equal(oo.n)
	}
	return oo.n == nil && o.l.Equal(oo.l)
}

// ParseObject attempts to parse an object.
func ParseObject(s string, b literal.Builder) (*Object, error) {
	raw := strings.TrimSpace(s)
	if strings.HasPrefix(raw, "\"") {
		l, err := b.Parse(raw)
		if err != nil {
			return nil, err
		}
		return NewLiteralObject(l), nil
	}
	n, err := node.Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewNodeObject(n), nil
}

// NewNodeObject returns a new object that boxes a resource.
func NewNodeObject(n *node.Node) *Object {
	return &Object{n: n}
}

// NewPredicateObject returns a new object that boxes the resource named by a
// predicate.
func NewPredicateObject(p *predicate.Predicate) *Object {
	return &Object{n: p.Node()}
}

// NewLiteralObject returns a new object that boxes a literal.
func NewLiteralObject(l *literal.Literal) *Object {
	return &Object{l: l}
}

// Triple describes an RDF statement. Triples are immutable.
type Triple struct {
	s *node.Node
	p *predicate.Predicate
	o *Object
	c *node.Node
}

// New creates a new triple in the default graph.
func New(s *node.Node, p *predicate.Predicate, o *Object) (*Triple, error) {
	return NewInContext(s, p, o, nil)
}

// NewInContext creates a new triple placed in the named graph c. A nil c
// places the triple in the default graph.
func NewInContext(s *node.Node, p *predicate.Predicate, o *Object, c *node.Node) (*Triple, error) {
	if s == nil || p == nil || o == nil {
		return nil, fmt.Errorf("triple.New cannot create triples from nil components in <%v %v %v>", s, p, o)
	}
	if o.n == nil && o.l == nil {
		return nil, fmt.Errorf("triple.New cannot create triples with an empty object")
	}
	return &Triple{s: s, p: p, o: o, c: c}, nil
}

// S returns the subject of the triple.
func (t *Triple) S() *node.Node {
	return t.s
}

// P returns the predicate of the triple.
func (t *Triple) P() *predicate.Predicate {
	return t.p
}

// O returns the object of the triple.
func (t *Triple) O() *Object {
	return t.o
}

// C returns the context of the triple, or nil for the default graph.
func (t *Triple) C() *node.Node {
	return t.c
}

// WithContext returns a copy of the triple placed in the named graph c.
func (t *Triple) WithContext(c *node.Node) *Triple {
	return &Triple{s: t.s, p: t.p, o: t.o, c: c}
}

// Equal checks if two triples are identical, context included.
func (t *Triple) Equal(t2 *Triple) bool {
	return t.s.Equal(t2.s) && t.p.Equal(t2.p) && t.o.Equal(t2.o) && t.c.Equal(t2.c)
}

// String marshals the triple into pretty string. Components are tab
// separated; the context, if any, is the fourth field.
func (t *Triple) String() string {
	if t.c != nil {
		return fmt.Sprintf("%s\t%s\t%s\t%s", t.s, t.p, t.o, t.c)
	}
	return fmt.Sprintf("%s\t%s\t%s", t.s, t.p, t.o)
}

// UUID returns a global unique identifier for the given triple. It is
// implemented as the SHA1 UUID of the concatenated UUIDs of the subject,
// predicate, object and context.
func (t *Triple) UUID() uuid.UUID {
	var buffer []byte
	buffer = append(buffer, t.s.UUID()...)
	buffer = append(buffer, t.p.UUID()...)
	buffer = append(buffer, t.o.UUID()...)
	if t.c != nil {
		buffer = append(buffer, t.c.UUID()...)
	}
	return uuid.NewSHA1(uuid.NIL, buffer)
}

// Parse process the provided text and tries to create a triple. It assumes
// that the provided text contains only one triple.
func Parse(line string, b literal.Builder) (*Triple, error) {
	raw := strings.Split(strings.TrimSpace(line), "\t")
	if len(raw) != 3 && len(raw) != 4 {
		return nil, fmt.Errorf("triple.Parse expected 3 or 4 tab separated fields in %q, got %d", line, len(raw))
	}
	s, err := node.Parse(raw[0])
	if err != nil {
		return nil, fmt.Errorf("triple.Parse failed to parse subject %q with error %v", raw[0], err)
	}
	p, err := predicate.Parse(raw[1])
	if err != nil {
		return nil, fmt.Errorf("triple.Parse failed to parse predicate %q with error %v", raw[1], err)
	}
	o, err := ParseObject(raw[2], b)
	if err != nil {
		return nil, fmt.Errorf("triple.Parse failed to parse object %q with error %v", raw[2], err)
	}
	var c *node.Node
	if len(raw) == 4 {
		if c, err = node.Parse(raw[3]); err != nil {
			return nil, fmt.Errorf("triple.Parse failed to parse context %q with error %v", raw[3], err)
		}
	}
	return NewInContext(s, p, o, c)
}
