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

// Package axiom contains the RDF and RDFS axiomatic statements. They hold
// independently of any data and are stored when the inference engine starts.
package axiom

import (
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	v "github.com/google/rdfsinfer/vocabulary"
)

var (
	classes = []*node.Node{
		v.RDFAlt, v.RDFBag, v.RDFList, v.RDFProperty, v.RDFSeq, v.RDFStatement, v.RDFXMLLiteral,
		v.RDFSClass, v.RDFSContainer, v.RDFSContainerMembershipProperty, v.RDFSDatatype,
		v.RDFSLiteral, v.RDFSResource,
	}

	// signature holds the domain and range of every RDF and RDFS property.
	signature = []struct {
		p             *predicate.Predicate
		domain, rangE *node.Node
	}{
		{v.RDFFirst, v.RDFList, v.RDFSResource},
		{v.RDFObject, v.RDFStatement, v.RDFSResource},
		{v.RDFPredicate, v.RDFStatement, v.RDFSResource},
		{v.RDFRest, v.RDFList, v.RDFList},
		{v.RDFSubject, v.RDFStatement, v.RDFSResource},
		{v.RDFType, v.RDFSResource, v.RDFSClass},
		{v.RDFValue, v.RDFSResource, v.RDFSResource},
		{v.RDFSComment, v.RDFSResource, v.RDFSLiteral},
		{v.RDFSDomain, v.RDFProperty, v.RDFSClass},
		{v.RDFSIsDefinedBy, v.RDFSResource, v.RDFSResource},
		{v.RDFSLabel, v.RDFSResource, v.RDFSLiteral},
		{v.RDFSMember, v.RDFSResource, v.RDFSResource},
		{v.RDFSRange, v.RDFProperty, v.RDFSClass},
		{v.RDFSSeeAlso, v.RDFSResource, v.RDFSResource},
		{v.RDFSSubClassOf, v.RDFSClass, v.RDFSClass},
		{v.RDFSSubPropertyOf, v.RDFProperty, v.RDFProperty},
	}

	subClasses = [][2]*node.Node{
		{v.RDFAlt, v.RDFSContainer},
		{v.RDFBag, v.RDFSContainer},
		{v.RDFSeq, v.RDFSContainer},
		{v.RDFXMLLiteral, v.RDFSLiteral},
		{v.RDFSContainerMembershipProperty, v.RDFProperty},
		{v.RDFSDatatype, v.RDFSClass},
	}
)

func must(s *node.Node, p *predicate.Predicate, o *node.Node) *triple.Triple {
	t, err := triple.New(s, p, triple.NewNodeObject(o))
	if err != nil {
		panic(err)
	}
	return t
}

func build() []*triple.Triple {
	var ts []*triple.Triple
	for _, c := range classes {
		ts = append(ts,
			must(c, v.RDFType, v.RDFSResource),
			must(c, v.RDFType, v.RDFSClass),
			must(c, v.RDFSSubClassOf, v.RDFSResource),
		)
		if !c.Equal(v.RDFSResource) {
			ts = append(ts, must(c, v.RDFSSubClassOf, c))
		}
	}
	for _, sc := range subClasses {
		ts = append(ts, must(sc[0], v.RDFSSubClassOf, sc[1]))
	}
	ts = append(ts,
		must(v.RDFXMLLiteral, v.RDFType, v.RDFSDatatype),
		must(v.RDFNil, v.RDFType, v.RDFSResource),
		must(v.RDFNil, v.RDFType, v.RDFList),
	)
	for _, s := range signature {
		p := s.p.Node()
		ts = append(ts,
			must(p, v.RDFType, v.RDFSResource),
			must(p, v.RDFType, v.RDFProperty),
			must(p, v.RDFSSubPropertyOf, p),
			must(p, v.RDFSDomain, s.domain),
			must(p, v.RDFSRange, s.rangE),
		)
	}
	return append(ts, must(v.RDFSIsDefinedBy.Node(), v.RDFSSubPropertyOf, v.RDFSSeeAlso.Node()))
}

var axioms = build()

// Triples returns the axiomatic statements, all in the default graph. The
// returned slice is a fresh copy; the triples are shared and immutable.
func Triples() []*triple.Triple {
	return append([]*triple.Triple(nil), axioms...)
}
