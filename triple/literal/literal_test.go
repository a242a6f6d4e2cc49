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

package literal

import (
	"strings"
	"testing"
)

const xsdInteger = "http://www.w3.org/2001/XMLSchema#integer"

func TestDefaultBuilder(t *testing.T) {
	table := []struct {
		lex, dt, lang string
		wantDT        string
		wantLang      string
		err           bool
	}{
		{lex: "hi", wantDT: XSDString},
		{lex: "30", dt: xsdInteger, wantDT: xsdInteger},
		{lex: "hola", lang: "ES", wantDT: LangString, wantLang: "es"},
		{lex: "hola", lang: "es", dt: LangString, wantDT: LangString, wantLang: "es"},
		{lex: "x", lang: "not a tag", err: true},
		{lex: "x", lang: "en", dt: xsdInteger, err: true},
		{lex: "x", dt: LangString, err: true},
		{lex: "x", dt: "bad iri", err: true},
	}
	for _, tc := range table {
		got, err := DefaultBuilder().Build(tc.lex, tc.dt, tc.lang)
		if tc.err {
			if err == nil {
				t.Errorf("literal.Build(%q, %q, %q) should have failed, got %v", tc.lex, tc.dt, tc.lang, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("literal.Build(%q, %q, %q) failed with error %v", tc.lex, tc.dt, tc.lang, err)
			continue
		}
		if got.Datatype() != tc.wantDT || got.Lang() != tc.wantLang || got.Lexical() != tc.lex {
			t.Errorf("literal.Build(%q, %q, %q) = %v; want datatype %q and language %q", tc.lex, tc.dt, tc.lang, got, tc.wantDT, tc.wantLang)
		}
	}
}

func TestBoundedBuilder(t *testing.T) {
	b := NewBoundedBuilder(5)
	if _, err := b.Build("12345", "", ""); err != nil {
		t.Errorf("boundedBuilder.Build should accept 5 bytes, failed with %v", err)
	}
	if _, err := b.Build("123456", "", ""); err == nil {
		t.Errorf("boundedBuilder.Build should have rejected 6 bytes")
	}
	if _, err := b.Parse(`"` + strings.Repeat("a", 6) + `"`); err == nil {
		t.Errorf("boundedBuilder.Parse should have rejected 6 bytes")
	}
}

func TestPrettyPrinting(t *testing.T) {
	table := []struct {
		lex, dt, lang string
		want          string
	}{
		{"hi", "", "", `"hi"`},
		{"a\tb", "", "", `"a\tb"`},
		{"30", xsdInteger, "", `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"hola", "", "es", `"hola"@es`},
	}
	for _, tc := range table {
		l, err := DefaultBuilder().Build(tc.lex, tc.dt, tc.lang)
		if err != nil {
			t.Fatal(err)
		}
		if got := l.String(); got != tc.want {
			t.Errorf("literal.String failed to pretty print; got %s, want %s", got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	table := []struct {
		s   string
		err bool
	}{
		{s: `"hi"`},
		{s: `"a \"quoted\" word"`},
		{s: `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{s: `"hola"@es`},
		{s: `hi`, err: true},
		{s: `"unterminated`, err: true},
		{s: `"x"^^http://example.org/dt`, err: true},
		{s: `"x"junk`, err: true},
	}
	for _, tc := range table {
		got, err := DefaultBuilder().Parse(tc.s)
		if tc.err {
			if err == nil {
				t.Errorf("literal.Parse(%s) should have failed, got %v", tc.s, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("literal.Parse(%s) failed with error %v", tc.s, err)
			continue
		}
		if got.String() != tc.s {
			t.Errorf("literal.Parse did not round trip; got %s, want %s", got, tc.s)
		}
	}
}
