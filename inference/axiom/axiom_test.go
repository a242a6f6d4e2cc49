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

package axiom

import (
	"testing"

	"github.com/google/rdfsinfer/tools/testutil"
)

func TestTriplesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, trpl := range Triples() {
		if seen[trpl.String()] {
			t.Errorf("Triples() returned %v more than once", trpl)
		}
		seen[trpl.String()] = true
		if trpl.C() != nil {
			t.Errorf("axiom %v should be in the default graph", trpl)
		}
	}
	if got, want := len(seen), 141; got != want {
		t.Errorf("Triples() returned %d axioms; want %d", got, want)
	}
}

func TestTriplesContent(t *testing.T) {
	all := make(map[string]bool)
	for _, trpl := range Triples() {
		all[trpl.String()] = true
	}
	for _, s := range []string{
		"rdfs:Class rdfs:subClassOf rdfs:Resource",
		"rdfs:Resource rdfs:subClassOf rdfs:Resource",
		"rdf:Alt rdfs:subClassOf rdfs:Container",
		"rdf:XMLLiteral rdf:type rdfs:Datatype",
		"rdf:nil rdf:type rdf:List",
		"rdf:type rdfs:range rdfs:Class",
		"rdfs:subPropertyOf rdfs:domain rdf:Property",
		"rdfs:isDefinedBy rdfs:subPropertyOf rdfs:seeAlso",
		"rdfs:ContainerMembershipProperty rdfs:subClassOf rdf:Property",
		"rdfs:label rdf:type rdf:Property",
	} {
		if trpl := testutil.MustBuildTriple(t, s); !all[trpl.String()] {
			t.Errorf("Triples() is missing %v", trpl)
		}
	}
}

func TestTriplesReturnsCopy(t *testing.T) {
	ts := Triples()
	ts[0] = nil
	if Triples()[0] == nil {
		t.Errorf("Triples() should return a fresh slice on every call")
	}
}
