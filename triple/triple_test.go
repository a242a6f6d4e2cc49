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

package triple

import (
	"testing"

	"github.com/google/rdfsinfer/triple/literal"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	"github.com/pborman/uuid"
)

func getTestData(t *testing.T) (*node.Node, *predicate.Predicate, *Object) {
	s, err := node.Parse("<http://example.org/fido>")
	if err != nil {
		t.Fatalf("Failed to create test node")
	}
	p, err := predicate.Parse("<http://example.org/knows>")
	if err != nil {
		t.Fatalf("Failed to create test predicate")
	}
	o := NewNodeObject(s)
	return s, p, o
}

func TestEmptyTripleFail(t *testing.T) {
	s, p, o := getTestData(t)
	table := []struct {
		s *node.Node
		p *predicate.Predicate
		o *Object
	}{
		{nil, nil, nil},
		{s, nil, nil},
		{nil, p, nil},
		{nil, nil, o},
		{s, p, nil},
		{s, nil, o},
		{nil, p, o},
		{s, p, &Object{}},
	}
	for _, tc := range table {
		if tr, err := New(tc.s, tc.p, tc.o); err == nil {
			t.Errorf("triple.New should have never created a partial triple as %s", tr)
		}
	}
}

func TestPrettyTriple(t *testing.T) {
	s, p, o := getTestData(t)
	tr, err := New(s, p, o)
	if err != nil {
		t.Fatalf("triple.New should not fail to create triple with error %v", err)
	}
	if got, want := tr.String(), "<http://example.org/fido>\t<http://example.org/knows>\t<http://example.org/fido>"; got != want {
		t.Errorf("triple.String failed to return a valid pretty printed string; got %s, want %s", got, want)
	}
	g := node.MustIRI("http://example.org/g")
	if got, want := tr.WithContext(g).String(), "<http://example.org/fido>\t<http://example.org/knows>\t<http://example.org/fido>\t<http://example.org/g>"; got != want {
		t.Errorf("triple.String failed to print the context; got %s, want %s", got, want)
	}
}

func TestParseTriple(t *testing.T) {
	ss := []string{
		"<urn:a>\t<urn:p>\t<urn:b>",
		"_:b0\t<urn:p>\t\"bar\"",
		"<urn:a>\t<urn:p>\t\"30\"^^<http://www.w3.org/2001/XMLSchema#integer>\t<urn:g>",
		"<urn:a>\t<urn:p>\t\"tab\\there\"@en",
	}
	for _, s := range ss {
		tr, err := Parse(s, literal.DefaultBuilder())
		if err != nil {
			t.Errorf("triple.Parse failed to parse valid triple %s with error %v", s, err)
			continue
		}
		if got, want := tr.String(), s; got != want {
			t.Errorf("triple.Parse did not round trip; got %q, want %q", got, want)
		}
	}
	bad := []string{
		"<urn:a>\t<urn:p>",
		"<urn:a> <urn:p> <urn:b>",
		"\"lit\"\t<urn:p>\t<urn:b>",
		"<urn:a>\t_:p\t<urn:b>",
		"<urn:a>\t<urn:p>\t<urn:b>\t\"g\"",
	}
	for _, s := range bad {
		if tr, err := Parse(s, literal.DefaultBuilder()); err == nil {
			t.Errorf("triple.Parse should have rejected %q, got %v", s, tr)
		}
	}
}

func TestObject(t *testing.T) {
	s, p, o := getTestData(t)
	if !o.IsResource() {
		t.Errorf("triple.NewNodeObject(%v) should be a resource", s)
	}
	if _, err := o.Literal(); err == nil {
		t.Errorf("triple.Object(%v).Literal() should fail for resources", o)
	}
	l, err := literal.DefaultBuilder().Build("x", "", "")
	if err != nil {
		t.Fatal(err)
	}
	lo := NewLiteralObject(l)
	if lo.IsResource() {
		t.Errorf("triple.NewLiteralObject(%v) should not be a resource", l)
	}
	if _, err := lo.Node(); err == nil {
		t.Errorf("triple.Object(%v).Node() should fail for literals", lo)
	}
	if got, want := NewPredicateObject(p).String(), p.String(); got != want {
		t.Errorf("triple.NewPredicateObject boxed the wrong resource; got %s, want %s", got, want)
	}
	if lo.Equal(o) || o.Equal(lo) {
		t.Errorf("triple.Object.Equal should never match literals and resources")
	}
}

func TestEqualAndUUID(t *testing.T) {
	s, p, o := getTestData(t)
	a, _ := New(s, p, o)
	b, _ := New(node.MustIRI("http://example.org/fido"), predicate.MustNew("http://example.org/knows"), NewNodeObject(s))
	if !a.Equal(b) {
		t.Errorf("triple.Equal(%v, %v) should be true", a, b)
	}
	if got, want := a.UUID(), b.UUID(); !uuid.Equal(got, want) {
		t.Errorf("triple.UUID should be structural; got %v, want %v", got, want)
	}
	c := a.WithContext(node.MustIRI("urn:g"))
	if a.Equal(c) {
		t.Errorf("triple.Equal should take the context into account for %v and %v", a, c)
	}
	if uuid.Equal(a.UUID(), c.UUID()) {
		t.Errorf("triple.UUID should take the context into account for %v and %v", a, c)
	}
}
