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

// Package closure computes the lookup tables used to forward chain
// statements: the reflexive transitive closures of rdfs:subClassOf and
// rdfs:subPropertyOf, and the inherited ranges and domains of every property.
//
// Tables are built from an immutable schema snapshot and never modified once
// returned.
package closure

import (
	"sort"

	"github.com/google/rdfsinfer/inference/schema"
	"github.com/google/rdfsinfer/triple/node"
	"golang.org/x/sync/errgroup"
)

type set map[string]*node.Node

type entry struct {
	n    *node.Node
	set  set
	list []*node.Node
}

// table maps a resource, by its pretty printed form, to a set of resources.
type table map[string]*entry

func (t table) ensure(n *node.Node) *entry {
	k := n.String()
	e, ok := t[k]
	if !ok {
		e = &entry{n: n, set: make(set)}
		t[k] = e
	}
	return e
}

func (t table) size() int {
	n := 0
	for _, e := range t {
		n += len(e.set)
	}
	return n
}

func (t table) keys() []string {
	ks := make([]string, 0, len(t))
	for k := range t {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// round computes one fixed point step. Every entry is grown into its own
// buffer from the previous round values; buffers replace the sets once all
// keys are processed. It returns true if any set grew.
func (t table) round(grow func(k string, prev set, buf set)) bool {
	before := t.size()
	next := make(map[string]set, len(t))
	for _, k := range t.keys() {
		prev := t[k].set
		buf := make(set, len(prev))
		for kk, v := range prev {
			buf[kk] = v
		}
		grow(k, prev, buf)
		next[k] = buf
	}
	for k, buf := range next {
		t[k].set = buf
	}
	return t.size() > before
}

func union(dst set, src *entry) {
	if src == nil {
		return
	}
	for k, v := range src.set {
		dst[k] = v
	}
}

func (t table) freeze() {
	for _, e := range t {
		ks := make([]string, 0, len(e.set))
		for k := range e.set {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		e.list = make([]*node.Node, 0, len(ks))
		for _, k := range ks {
			e.list = append(e.list, e.set[k])
		}
	}
}

func (t table) lookup(n *node.Node) []*node.Node {
	if e, ok := t[n.String()]; ok {
		return e.list
	}
	return nil
}

func (t table) nodes() []*node.Node {
	ns := make([]*node.Node, 0, len(t))
	for _, k := range t.keys() {
		ns = append(ns, t[k].n)
	}
	return ns
}

// transitive computes the reflexive transitive closure of the edges over the
// provided seeds.
func transitive(seeds []*node.Node, edges []schema.Edge) table {
	t := make(table)
	for _, n := range seeds {
		e := t.ensure(n)
		e.set[n.String()] = n
	}
	for _, ed := range edges {
		sub := t.ensure(ed.Sub)
		sub.set[ed.Sub.String()] = ed.Sub
		sub.set[ed.Super.String()] = ed.Super
		sup := t.ensure(ed.Super)
		sup.set[ed.Super.String()] = ed.Super
	}
	for t.round(func(k string, prev, buf set) {
		for sk := range prev {
			union(buf, t[sk])
		}
	}) {
	}
	return t
}

// inherited computes the range or domain closure: the direct types of every
// property, the types inherited from its superproperties, and all their
// superclasses.
func inherited(edges []schema.Edge, props, types table) table {
	t := make(table)
	for _, e := range props {
		t.ensure(e.n)
	}
	for _, ed := range edges {
		t.ensure(ed.Sub).set[ed.Super.String()] = ed.Super
	}
	for t.round(func(k string, prev, buf set) {
		if pe, ok := props[k]; ok {
			for sk := range pe.set {
				if re, ok := t[sk]; ok && sk != k {
					for kk, v := range re.set {
						buf[kk] = v
					}
				}
			}
		}
		for tk := range prev {
			union(buf, types[tk])
		}
	}) {
	}
	return t
}

// Tables holds the four closure tables.
type Tables struct {
	types      table
	properties table
	ranges     table
	domains    table
}

// Empty returns tables that know about no class nor property.
func Empty() *Tables {
	return &Tables{
		types:      make(table),
		properties: make(table),
		ranges:     make(table),
		domains:    make(table),
	}
}

// Compute builds the closure tables for the schema snapshot. It is total
// over any finite schema, cyclic hierarchies included.
func Compute(s *schema.Snapshot) *Tables {
	t := &Tables{
		types:      transitive(s.Types, s.SubClassOf),
		properties: transitive(s.Properties, s.SubPropertyOf),
	}
	// Range and domain only read the type and property tables.
	var g errgroup.Group
	g.Go(func() error {
		t.ranges = inherited(s.Range, t.properties, t.types)
		return nil
	})
	g.Go(func() error {
		t.domains = inherited(s.Domain, t.properties, t.types)
		return nil
	})
	g.Wait()
	for _, tb := range []table{t.types, t.properties, t.ranges, t.domains} {
		tb.freeze()
	}
	return t
}

// Types returns the superclasses of c, c included. The result is sorted and
// must not be modified.
func (t *Tables) Types(c *node.Node) []*node.Node {
	return t.types.lookup(c)
}

// Properties returns the superproperties of p, p included.
func (t *Tables) Properties(p *node.Node) []*node.Node {
	return t.properties.lookup(p)
}

// Range returns the types every object of p belongs to.
func (t *Tables) Range(p *node.Node) []*node.Node {
	return t.ranges.lookup(p)
}

// Domain returns the types every subject of p belongs to.
func (t *Tables) Domain(p *node.Node) []*node.Node {
	return t.domains.lookup(p)
}

// Classes returns every known class, sorted.
func (t *Tables) Classes() []*node.Node {
	return t.types.nodes()
}

// KnownProperties returns every known property, sorted.
func (t *Tables) KnownProperties() []*node.Node {
	return t.properties.nodes()
}

// Stats returns the number of elements held by each table.
func (t *Tables) Stats() (types, properties, ranges, domains int) {
	return t.types.size(), t.properties.size(), t.ranges.size(), t.domains.size()
}
