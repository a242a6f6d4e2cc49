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

// Package vocabulary contains the RDF, RDFS and XSD terms the inference
// engine reasons about.
package vocabulary

import (
	"strings"

	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
)

const (
	// RDF is the RDF namespace.
	RDF = rdf.NS
	// RDFS is the RDF Schema namespace.
	RDFS = rdfs.NS
	// XSD is the XML Schema datatypes namespace.
	XSD = "http://www.w3.org/2001/XMLSchema#"
)

// Classes.
var (
	RDFAlt        = node.MustIRI(RDF + "Alt")
	RDFBag        = node.MustIRI(RDF + "Bag")
	RDFList       = node.MustIRI(RDF + "List")
	RDFProperty   = node.MustIRI(RDF + "Property")
	RDFSeq        = node.MustIRI(RDF + "Seq")
	RDFStatement  = node.MustIRI(RDF + "Statement")
	RDFXMLLiteral = node.MustIRI(RDF + "XMLLiteral")
	RDFNil        = node.MustIRI(RDF + "nil")

	RDFSClass                       = node.MustIRI(RDFS + "Class")
	RDFSContainer                   = node.MustIRI(RDFS + "Container")
	RDFSContainerMembershipProperty = node.MustIRI(RDFS + "ContainerMembershipProperty")
	RDFSDatatype                    = node.MustIRI(RDFS + "Datatype")
	RDFSLiteral                     = node.MustIRI(RDFS + "Literal")
	RDFSResource                    = node.MustIRI(RDFS + "Resource")

	XSDInteger = node.MustIRI(XSD + "integer")
	XSDString  = node.MustIRI(XSD + "string")
)

// Properties.
var (
	RDFFirst     = predicate.MustNew(RDF + "first")
	RDFObject    = predicate.MustNew(RDF + "object")
	RDFPredicate = predicate.MustNew(RDF + "predicate")
	RDFRest      = predicate.MustNew(RDF + "rest")
	RDFSubject   = predicate.MustNew(RDF + "subject")
	RDFType      = predicate.MustNew(RDF + "type")
	RDFValue     = predicate.MustNew(RDF + "value")

	RDFSComment       = predicate.MustNew(RDFS + "comment")
	RDFSDomain        = predicate.MustNew(RDFS + "domain")
	RDFSIsDefinedBy   = predicate.MustNew(RDFS + "isDefinedBy")
	RDFSLabel         = predicate.MustNew(RDFS + "label")
	RDFSMember        = predicate.MustNew(RDFS + "member")
	RDFSRange         = predicate.MustNew(RDFS + "range")
	RDFSSeeAlso       = predicate.MustNew(RDFS + "seeAlso")
	RDFSSubClassOf    = predicate.MustNew(RDFS + "subClassOf")
	RDFSSubPropertyOf = predicate.MustNew(RDFS + "subPropertyOf")
)

// IsContainerMembership returns true if p is one of rdf:_1, rdf:_2, ... The
// local name must be a strictly positive decimal with no leading zero.
func IsContainerMembership(p *predicate.Predicate) bool {
	iri := string(p.ID())
	if !strings.HasPrefix(iri, RDF+"_") {
		return false
	}
	n := iri[len(RDF)+1:]
	if n == "" || n[0] == '0' {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsSchemaPredicate returns true for the predicates whose statements can
// change the schema: rdf:type, rdfs:subClassOf, rdfs:subPropertyOf,
// rdfs:range and rdfs:domain.
func IsSchemaPredicate(p *predicate.Predicate) bool {
	switch p.ID() {
	case RDFType.ID(), RDFSSubClassOf.ID(), RDFSSubPropertyOf.ID(), RDFSRange.ID(), RDFSDomain.ID():
		return true
	}
	return false
}
