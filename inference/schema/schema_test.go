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

package schema

import (
	"errors"
	"testing"

	"github.com/google/rdfsinfer/tools/testutil"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ns []*node.Node) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.String())
	}
	return out
}

func edges(es []Edge) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.Sub.String()+" "+e.Super.String())
	}
	return out
}

const (
	ex   = "<http://example.org/"
	rdf  = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfs = "<http://www.w3.org/2000/01/rdf-schema#"
)

func TestRouting(t *testing.T) {
	tests := []struct {
		name       string
		stmt       string
		properties []string
		types      []string
		subClass   []string
		subProp    []string
		rng        []string
		dom        []string
	}{
		{
			name:       "subClassOf",
			stmt:       "Dog rdfs:subClassOf Animal",
			properties: []string{rdfs + "subClassOf>"},
			types:      []string{ex + "Animal>", ex + "Dog>"},
			subClass:   []string{ex + "Dog> " + ex + "Animal>"},
		},
		{
			name:       "type property",
			stmt:       "age rdf:type rdf:Property",
			properties: []string{ex + "age>", rdf + "type>"},
		},
		{
			name:       "subPropertyOf",
			stmt:       "mother rdfs:subPropertyOf parent",
			properties: []string{ex + "mother>", ex + "parent>", rdfs + "subPropertyOf>"},
			subProp:    []string{ex + "mother> " + ex + "parent>"},
		},
		{
			name:       "range",
			stmt:       "worksAt rdfs:range Company",
			properties: []string{ex + "worksAt>", rdfs + "range>"},
			types:      []string{ex + "Company>"},
			rng:        []string{ex + "worksAt> " + ex + "Company>"},
		},
		{
			name:       "domain",
			stmt:       "age rdfs:domain Person",
			properties: []string{ex + "age>", rdfs + "domain>"},
			types:      []string{ex + "Person>"},
			dom:        []string{ex + "age> " + ex + "Person>"},
		},
		{
			name:       "type class",
			stmt:       "Dog rdf:type rdfs:Class",
			properties: []string{rdf + "type>"},
			types:      []string{ex + "Dog>", rdfs + "Resource>"},
			subClass:   []string{ex + "Dog> " + rdfs + "Resource>"},
		},
		{
			name:       "type datatype",
			stmt:       "Age rdf:type rdfs:Datatype",
			properties: []string{rdf + "type>"},
			types:      []string{ex + "Age>", rdfs + "Literal>"},
			subClass:   []string{ex + "Age> " + rdfs + "Literal>"},
		},
		{
			name:       "type container membership property",
			stmt:       "item rdf:type rdfs:ContainerMembershipProperty",
			properties: []string{ex + "item>", rdf + "type>", rdfs + "member>"},
			subProp:    []string{ex + "item> " + rdfs + "member>"},
		},
		{
			name:       "type other",
			stmt:       "fido rdf:type Dog",
			properties: []string{rdf + "type>"},
			types:      []string{ex + "Dog>"},
		},
		{
			name:       "data statement",
			stmt:       "alice knows bob",
			properties: []string{ex + "knows>"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			changed, err := c.Process(testutil.MustBuildTriple(t, tc.stmt))
			require.NoError(t, err)
			assert.True(t, changed)
			s := c.Snapshot()
			assert.Equal(t, tc.properties, names(s.Properties), "properties")
			assert.Equal(t, tc.types, names(s.Types), "types")
			assert.Equal(t, tc.subClass, edges(s.SubClassOf), "subClassOf")
			assert.Equal(t, tc.subProp, edges(s.SubPropertyOf), "subPropertyOf")
			assert.Equal(t, tc.rng, edges(s.Range), "range")
			assert.Equal(t, tc.dom, edges(s.Domain), "domain")
		})
	}
}

func TestInvalidSchema(t *testing.T) {
	for _, stmt := range []string{
		"Dog rdfs:subClassOf \"Animal\"",
		"p rdfs:subPropertyOf \"q\"",
		"p rdfs:range \"T\"",
		"p rdfs:domain \"T\"",
		"fido rdf:type \"Dog\"",
	} {
		c := New()
		trpl := testutil.MustBuildTriple(t, stmt)
		_, err := c.Changes(trpl)
		assert.True(t, errors.Is(err, ErrInvalidSchema), "Changes(%s) returned %v", stmt, err)
		_, err = c.Process(trpl)
		assert.True(t, errors.Is(err, ErrInvalidSchema), "Process(%s) returned %v", stmt, err)
		assert.Equal(t, 0, c.Size(), "invalid statements should leave the cache untouched")
	}
}

func TestChangesDoesNotMutate(t *testing.T) {
	c := New()
	trpl := testutil.MustBuildTriple(t, "Dog rdfs:subClassOf Animal")
	changed, err := c.Changes(trpl)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, c.Size())

	_, err = c.Process(trpl)
	require.NoError(t, err)
	size := c.Size()
	changed, err = c.Changes(trpl)
	require.NoError(t, err)
	assert.False(t, changed, "a processed statement should not change the cache again")
	changed, err = c.Process(trpl)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, size, c.Size(), "processing twice should deduplicate")
}

func TestCloneAndRestore(t *testing.T) {
	c := New()
	_, err := c.Process(testutil.MustBuildTriple(t, "Dog rdfs:subClassOf Animal"))
	require.NoError(t, err)
	undo := c.Clone()

	_, err = c.Process(testutil.MustBuildTriple(t, "Cat rdfs:subClassOf Animal"))
	require.NoError(t, err)
	assert.True(t, c.HasType(testutil.MustBuildNode(t, "<http://example.org/Cat>")))
	assert.False(t, undo.HasType(testutil.MustBuildNode(t, "<http://example.org/Cat>")), "clones should not share state")

	c.Restore(undo)
	assert.False(t, c.HasType(testutil.MustBuildNode(t, "<http://example.org/Cat>")))
	assert.Equal(t, undo.Size(), c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	assert.False(t, c.HasProperty(testutil.MustBuildNode(t, "<http://www.w3.org/2000/01/rdf-schema#subClassOf>")))
}
