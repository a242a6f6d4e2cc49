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

// Package literal provides an abstraction to manipulate RDF literals. A
// literal is a lexical form plus a datatype IRI and an optional language tag.
package literal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/rdfsinfer/triple/node"
	"github.com/pborman/uuid"
)

const (
	// XSDString is the datatype of literals with no explicit datatype.
	XSDString = "http://www.w3.org/2001/XMLSchema#string"
	// LangString is the datatype of language tagged literals.
	LangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Literal represents an immutable RDF literal.
type Literal struct {
	lexical  string
	datatype string
	lang     string
}

// Lexical returns the lexical form of the literal.
func (l *Literal) Lexical() string {
	return l.lexical
}

// Datatype returns the datatype IRI of the literal.
func (l *Literal) Datatype() string {
	return l.datatype
}

// Lang returns the language tag of the literal, if any.
func (l *Literal) Lang() string {
	return l.lang
}

// String returns a pretty printed representation of the literal.
func (l *Literal) String() string {
	q := strconv.Quote(l.lexical)
	switch {
	case l.lang != "":
		return q + "@" + l.lang
	case l.datatype == XSDString:
		return q
	default:
		return q + "^^<" + l.datatype + ">"
	}
}

// Equal returns true if both literals have the same lexical form, datatype
// and language.
func (l *Literal) Equal(ol *Literal) bool {
	if l == nil || ol == nil {
		return l == ol
	}
	return *l == *ol
}

// UUID returns a global unique identifier for the given literal. It is
// implemented as the SHA1 UUID of the pretty printed literal.
func (l *Literal) UUID() uuid.UUID {
	return uuid.NewSHA1(uuid.NIL, []byte(l.String()))
}

// Builder interface provides a standard way to build literals given a
// lexical form, a datatype and a language tag.
type Builder interface {
	// Build creates a new literal. An empty datatype defaults to xsd:string,
	// or rdf:langString if a language is provided.
	Build(lexical, datatype, lang string) (*Literal, error)

	// Parse creates a new literal from its pretty printed form.
	Parse(s string) (*Literal, error)
}

// A singleton used to build all literals.
var defaultBuilder Builder

func init() {
	defaultBuilder = &unboundBuilder{}
}

// DefaultBuilder returns a builder with no constraints on the size of the
// lexical form.
func DefaultBuilder() Builder {
	return defaultBuilder
}

var langTag = regexp.MustCompile(`^[a-zA-Z]+(-[a-zA-Z0-9]+)*$`)

type unboundBuilder struct{}

// Build creates a new unbounded literal.
func (b *unboundBuilder) Build(lexical, datatype, lang string) (*Literal, error) {
	if lang != "" {
		if !langTag.MatchString(lang) {
			return nil, fmt.Errorf("literal.Build: invalid language tag %q", lang)
		}
		if datatype != "" && datatype != LangString {
			return nil, fmt.Errorf("literal.Build: language tagged literals cannot have datatype %q", datatype)
		}
		return &Literal{lexical: lexical, datatype: LangString, lang: strings.ToLower(lang)}, nil
	}
	if datatype == "" {
		datatype = XSDString
	}
	if datatype == LangString {
		return nil, fmt.Errorf("literal.Build: %q requires a language tag", LangString)
	}
	if err := node.ValidIRI(datatype); err != nil {
		return nil, fmt.Errorf("literal.Build: invalid datatype %q: %v", datatype, err)
	}
	return &Literal{lexical: lexical, datatype: datatype}, nil
}

// Parse creates a literal from its pretty printed form: "lex", "lex"@lang or
// "lex"^^<datatype>.
func (b *unboundBuilder) Parse(s string) (*Literal, error) {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "\"") {
		return nil, fmt.Errorf("literal.Parse: literal %q should start with '\"'", raw)
	}
	q, err := strconv.QuotedPrefix(raw)
	if err != nil {
		return nil, fmt.Errorf("literal.Parse: unterminated lexical form in %q", raw)
	}
	lexical, err := strconv.Unquote(q)
	if err != nil {
		return nil, fmt.Errorf("literal.Parse: %v", err)
	}
	rest := raw[len(q):]
	switch {
	case rest == "":
		return b.Build(lexical, "", "")
	case strings.HasPrefix(rest, "@"):
		return b.Build(lexical, "", rest[1:])
	case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
		return b.Build(lexical, rest[3:len(rest)-1], "")
	}
	return nil, fmt.Errorf("literal.Parse: invalid suffix %q in %q", rest, raw)
}

type boundedBuilder struct {
	max int
}

// Build creates a new literal if the lexical form does not exceed the bound.
func (b *boundedBuilder) Build(lexical, datatype, lang string) (*Literal, error) {
	if len(lexical) > b.max {
		return nil, fmt.Errorf("literal.Build: cannot create a literal of %d bytes; maximum allowed %d", len(lexical), b.max)
	}
	return defaultBuilder.Build(lexical, datatype, lang)
}

// Parse creates a bounded literal from its pretty printed form.
func (b *boundedBuilder) Parse(s string) (*Literal, error) {
	l, err := defaultBuilder.Parse(s)
	if err != nil {
		return nil, err
	}
	if len(l.lexical) > b.max {
		return nil, fmt.Errorf("literal.Parse: cannot create a literal of %d bytes; maximum allowed %d", len(l.lexical), b.max)
	}
	return l, nil
}

// NewBoundedBuilder creates a builder that rejects lexical forms longer than
// max bytes.
func NewBoundedBuilder(max int) Builder {
	return &boundedBuilder{max: max}
}
