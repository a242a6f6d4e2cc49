// Copyright 2020 Google Inc. All rights reserved.
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

// Package schema holds the schema statements (TBox) the inference engine
// reasons with: the known classes and properties plus the raw subClassOf,
// subPropertyOf, range and domain edges.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/vocabulary"
)

// ErrInvalidSchema is returned when a schema statement has a literal where a
// resource is required.
var ErrInvalidSchema = errors.New("invalid schema statement")

// Edge is a schema relation between two resources, e.g. a subclass and its
// superclass, or a property and its range.
type Edge struct {
	Sub   *node.Node
	Super *node.Node
}

func (e Edge) key() string {
	return e.Sub.String() + " " + e.Super.String()
}

type bucket uint8

const (
	properties bucket = iota
	types
	subClassOf
	subPropertyOf
	ranges
	domains
	numBuckets
)

// change is one insertion implied by a statement: either a resource for the
// properties and types buckets or an edge for the others.
type change struct {
	b bucket
	n *node.Node
	e Edge
}

func (c change) key() string {
	if c.n != nil {
		return c.n.String()
	}
	return c.e.key()
}

// Cache accumulates schema statements. It is safe for concurrent use; the
// inference engine still serializes writers through its guard.
type Cache struct {
	mu      sync.RWMutex
	buckets [numBuckets]map[string]change
}

// New returns an empty cache.
func New() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	for i := range c.buckets {
		c.buckets[i] = make(map[string]change)
	}
}

func resource(t *triple.Triple) (*node.Node, error) {
	n, err := t.O().Node()
	if err != nil {
		return nil, fmt.Errorf("%w: object of %s should be a resource", ErrInvalidSchema, t.P())
	}
	return n, nil
}

func subClass(sub, super *node.Node) []change {
	return []change{
		{b: subClassOf, e: Edge{Sub: sub, Super: super}},
		{b: types, n: sub},
		{b: types, n: super},
	}
}

func subProperty(sub, super *node.Node) []change {
	return []change{
		{b: subPropertyOf, e: Edge{Sub: sub, Super: super}},
		{b: properties, n: sub},
		{b: properties, n: super},
	}
}

// route returns the insertions a statement implies. Statements that are not
// schema statements only make their predicate a known property.
func route(t *triple.Triple) ([]change, error) {
	var (
		cs []change
		s  = t.S()
		p  = t.P()
	)
	switch p.ID() {
	case vocabulary.RDFSSubClassOf.ID():
		o, err := resource(t)
		if err != nil {
			return nil, err
		}
		cs = subClass(s, o)
	case vocabulary.RDFSSubPropertyOf.ID():
		o, err := resource(t)
		if err != nil {
			return nil, err
		}
		cs = subProperty(s, o)
	case vocabulary.RDFSRange.ID(), vocabulary.RDFSDomain.ID():
		o, err := resource(t)
		if err != nil {
			return nil, err
		}
		b := ranges
		if p.ID() == vocabulary.RDFSDomain.ID() {
			b = domains
		}
		cs = []change{
			{b: b, e: Edge{Sub: s, Super: o}},
			{b: properties, n: s},
			{b: types, n: o},
		}
	case vocabulary.RDFType.ID():
		o, err := resource(t)
		if err != nil {
			return nil, err
		}
		switch {
		case o.Equal(vocabulary.RDFProperty):
			cs = []change{{b: properties, n: s}}
		case o.Equal(vocabulary.RDFSClass):
			cs = subClass(s, vocabulary.RDFSResource)
		case o.Equal(vocabulary.RDFSDatatype):
			cs = subClass(s, vocabulary.RDFSLiteral)
		case o.Equal(vocabulary.RDFSContainerMembershipProperty):
			cs = subProperty(s, vocabulary.RDFSMember.Node())
		default:
			cs = []change{{b: types, n: o}}
		}
	}
	return append(cs, change{b: properties, n: p.Node()}), nil
}

// Changes reports whether processing the statement would grow the cache. It
// never mutates the cache.
func (c *Cache) Changes(t *triple.Triple) (bool, error) {
	cs, err := route(t)
	if err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range cs {
		if _, ok := c.buckets[ch.b][ch.key()]; !ok {
			return true, nil
		}
	}
	return false, nil
}

// Process routes the statement into the cache and reports whether the cache
// grew. Invalid statements leave the cache untouched.
func (c *Cache) Process(t *triple.Triple) (bool, error) {
	cs, err := route(t)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, ch := range cs {
		k := ch.key()
		if _, ok := c.buckets[ch.b][k]; ok {
			continue
		}
		c.buckets[ch.b][k] = ch
		changed = true
	}
	return changed, nil
}

// Size returns the sum of the cardinalities of all buckets.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, b := range c.buckets {
		n += len(b)
	}
	return n
}

// HasType returns true if r is a known class.
func (c *Cache) HasType(r *node.Node) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.buckets[types][r.String()]
	return ok
}

// HasProperty returns true if r is a known property.
func (c *Cache) HasProperty(r *node.Node) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.buckets[properties][r.String()]
	return ok
}

// Clone returns a deep copy of the cache.
func (c *Cache) Clone() *Cache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o := &Cache{}
	for i, b := range c.buckets {
		o.buckets[i] = make(map[string]change, len(b))
		for k, v := range b {
			o.buckets[i][k] = v
		}
	}
	return o
}

// Restore replaces the content of the cache with the content of from.
func (c *Cache) Restore(from *Cache) {
	cp := from.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = cp.buckets
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Snapshot is an immutable copy of the cache content. Slices are sorted by
// their pretty printed form.
type Snapshot struct {
	Properties    []*node.Node
	Types         []*node.Node
	SubClassOf    []Edge
	SubPropertyOf []Edge
	Range         []Edge
	Domain        []Edge
}

// Snapshot returns an immutable copy of the cache content.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Snapshot{
		Properties:    c.nodes(properties),
		Types:         c.nodes(types),
		SubClassOf:    c.edges(subClassOf),
		SubPropertyOf: c.edges(subPropertyOf),
		Range:         c.edges(ranges),
		Domain:        c.edges(domains),
	}
}

func (c *Cache) nodes(b bucket) []*node.Node {
	ks := sortedKeys(c.buckets[b])
	ns := make([]*node.Node, 0, len(ks))
	for _, k := range ks {
		ns = append(ns, c.buckets[b][k].n)
	}
	return ns
}

func (c *Cache) edges(b bucket) []Edge {
	ks := sortedKeys(c.buckets[b])
	es := make([]Edge, 0, len(ks))
	for _, k := range ks {
		es = append(es, c.buckets[b][k].e)
	}
	return es
}

func sortedKeys(m map[string]change) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
