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

package node

import (
	"testing"

	"github.com/pborman/uuid"
)

func TestNewIRI(t *testing.T) {
	table := []struct {
		v   string
		msg string
	}{
		{"", "node.NewIRI should have never created an IRI out of an empty string"},
		{"http://example.org/a b", "node.NewIRI should have never created an IRI containing ' '"},
		{"http://example.org/<a>", "node.NewIRI should have never created an IRI containing '<' or '>'"},
		{"http://example.org/\"a\"", "node.NewIRI should have never created an IRI containing '\"'"},
		{"http://example.org/a\n", "node.NewIRI should have never created an IRI containing '\\n'"},
	}
	for _, c := range table {
		if _, err := NewIRI(c.v); err == nil {
			t.Error(c.msg)
		}
	}
	n, err := NewIRI("http://example.org/fido")
	if err != nil {
		t.Fatalf("node.NewIRI(\"http://example.org/fido\") failed with error %v", err)
	}
	if got, want := n.Kind(), IRI; got != want {
		t.Errorf("node.NewIRI returned the wrong kind; got %v, want %v", got, want)
	}
	if got, want := n.String(), "<http://example.org/fido>"; got != want {
		t.Errorf("node.String returned the wrong value; got %q, want %q", got, want)
	}
}

func TestNewBlank(t *testing.T) {
	if _, err := NewBlank(""); err == nil {
		t.Errorf("node.NewBlank(\"\") should have never created a blank node with an empty label")
	}
	if _, err := NewBlank("a b"); err == nil {
		t.Errorf("node.NewBlank(\"a b\") should have never created a blank node containing spaces")
	}
	b, err := NewBlank("b0")
	if err != nil {
		t.Fatalf("node.NewBlank(\"b0\") failed with error %v", err)
	}
	if !b.IsBlank() {
		t.Errorf("node.NewBlank(\"b0\") should be a blank node, got kind %v", b.Kind())
	}
	if got, want := b.String(), "_:b0"; got != want {
		t.Errorf("node.String returned the wrong value; got %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	table := []struct {
		s    string
		kind Kind
		id   ID
		err  bool
	}{
		{s: "<http://example.org/a>", kind: IRI, id: "http://example.org/a"},
		{s: "  <urn:x>  ", kind: IRI, id: "urn:x"},
		{s: "_:b1", kind: Blank, id: "b1"},
		{s: "http://example.org/a", err: true},
		{s: "<>", err: true},
		{s: "_:", err: true},
		{s: "<", err: true},
	}
	for _, entry := range table {
		n, err := Parse(entry.s)
		if entry.err {
			if err == nil {
				t.Errorf("node.Parse(%q) should have failed, got %v", entry.s, n)
			}
			continue
		}
		if err != nil {
			t.Errorf("node.Parse(%q) failed with error %v", entry.s, err)
			continue
		}
		if got, want := n.Kind(), entry.kind; got != want {
			t.Errorf("node.Parse(%q) returned the wrong kind; got %v, want %v", entry.s, got, want)
		}
		if got, want := n.ID(), entry.id; got != want {
			t.Errorf("node.Parse(%q) returned the wrong ID; got %q, want %q", entry.s, got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	a, b := MustIRI("urn:a"), MustIRI("urn:a")
	if !a.Equal(b) {
		t.Errorf("node.Equal(%v, %v) should be equal", a, b)
	}
	bl, _ := NewBlank("urn:a")
	if a.Equal(bl) {
		t.Errorf("node.Equal(%v, %v) should not be equal; IRIs and blank nodes never match", a, bl)
	}
	var nilNode *Node
	if a.Equal(nilNode) {
		t.Errorf("node.Equal(%v, nil) should not be equal", a)
	}
}

func TestBlankNodesAreUnique(t *testing.T) {
	ids := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		n := NewBlankNode()
		if ids[n.ID()] {
			t.Fatalf("node.NewBlankNode returned a duplicated ID %v", n.ID())
		}
		ids[n.ID()] = true
		if uuid.Parse(string(n.ID())) == nil {
			t.Errorf("node.NewBlankNode should label blank nodes with UUIDs, got %q", n.ID())
		}
	}
}

func TestUUID(t *testing.T) {
	a, b, c := MustIRI("urn:a"), MustIRI("urn:a"), MustIRI("urn:b")
	if got, want := a.UUID(), b.UUID(); !uuid.Equal(got, want) {
		t.Errorf("node.UUID should be stable; got %v, want %v", got, want)
	}
	if uuid.Equal(a.UUID(), c.UUID()) {
		t.Errorf("node.UUID should differ for %v and %v", a, c)
	}
}
