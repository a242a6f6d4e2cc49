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

// Package testutil implements utility functions used in testing.
package testutil

import (
	"strings"
	"testing"

	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/literal"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
)

// Example namespace used by tests.
const EX = "http://example.org/"

// MustBuildLiteral builds a Literal out of textLiteral or makes the given test to fail.
func MustBuildLiteral(t *testing.T, textLiteral string) *literal.Literal {
	t.Helper()
	lit, err := literal.DefaultBuilder().Parse(textLiteral)
	if err != nil {
		t.Fatalf("could not parse text literal %q, got error: %v", textLiteral, err)
	}
	return lit
}

// MustBuildNode builds a Node out of its pretty printed form or makes the
// given test to fail. Bare names are expanded into the example namespace.
func MustBuildNode(t *testing.T, text string) *node.Node {
	t.Helper()
	n, err := node.Parse(expand(text))
	if err != nil {
		t.Fatalf("could not parse node %q, got error: %v", text, err)
	}
	return n
}

// MustBuildPredicate builds a Predicate out of predicateLiteral or makes the
// given test to fail. Bare names are expanded into the example namespace.
func MustBuildPredicate(t *testing.T, predicateLiteral string) *predicate.Predicate {
	t.Helper()
	p, err := predicate.Parse(expand(predicateLiteral))
	if err != nil {
		t.Fatalf("could not parse predicate literal %q, got error: %v", predicateLiteral, err)
	}
	return p
}

// MustBuildTriple builds a triple out of space separated components or makes
// the given test to fail. Components are a subject, a predicate, an object and
// an optional context. Bare names are expanded into the example namespace and
// the rdf: and rdfs: prefixes are honored.
func MustBuildTriple(t *testing.T, text string) *triple.Triple {
	t.Helper()
	fs := strings.Fields(text)
	if len(fs) != 3 && len(fs) != 4 {
		t.Fatalf("could not build triple %q: expected 3 or 4 fields, got %d", text, len(fs))
	}
	for i, f := range fs {
		fs[i] = expand(f)
	}
	trpl, err := triple.Parse(strings.Join(fs, "\t"), literal.DefaultBuilder())
	if err != nil {
		t.Fatalf("could not build triple %q, got error: %v", text, err)
	}
	return trpl
}

// MustBuildTriples builds one triple per text or makes the given test to
// fail.
func MustBuildTriples(t *testing.T, texts ...string) []*triple.Triple {
	t.Helper()
	var ts []*triple.Triple
	for _, s := range texts {
		ts = append(ts, MustBuildTriple(t, s))
	}
	return ts
}

var prefixes = map[string]string{
	"rdf:":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs:": "http://www.w3.org/2000/01/rdf-schema#",
	"xsd:":  "http://www.w3.org/2001/XMLSchema#",
	"ex:":   EX,
}

func expand(s string) string {
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:") || strings.HasPrefix(s, "\"") {
		return s
	}
	for p, ns := range prefixes {
		if strings.HasPrefix(s, p) {
			return "<" + ns + s[len(p):] + ">"
		}
	}
	return "<" + EX + s + ">"
}
