// Copyright 2016 Google Inc. All rights reserved.
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

package tree

import (
	"reflect"
	"testing"

	"github.com/google/rdfsinfer/tools/benchmark/generator"
)

const sub = "\t<http://www.w3.org/2000/01/rdf-schema#subClassOf>\t"

func class(p string) string {
	return "<" + Base + p + ">"
}

func TestNewNode(t *testing.T) {
	tg, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	n, err := tg.(*treeGenerator).newNode(1, "0")
	if err != nil {
		t.Error(err)
	}
	if got, want := n.String(), class("1/0"); got != want {
		t.Errorf("treeGenerator.newNode(1, 0) returned wrong node; got %q, want %q", got, want)
	}
	if _, err := New(0); err == nil {
		t.Errorf("tree.New(0) should have failed")
	}
}

func TestGenerate(t *testing.T) {
	tg2, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	testData := []struct {
		g    generator.Generator
		n    int
		want []string
	}{
		{
			g:    tg2,
			n:    0,
			want: nil,
		},
		{
			g: tg2,
			n: 1,
			want: []string{
				class("0/0") + sub + class("0"),
			},
		},
		{
			g: tg2,
			n: 2,
			want: []string{
				class("0/0") + sub + class("0"),
				class("1/0") + sub + class("0"),
			},
		},
		{
			g: tg2,
			n: 3,
			want: []string{
				class("0/0") + sub + class("0"),
				class("0/0/0") + sub + class("0/0"),
				class("1/0/0") + sub + class("0/0"),
			},
		},
	}
	for _, entry := range testData {
		ts, err := entry.g.Generate(entry.n)
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, trpl := range ts {
			got = append(got, trpl.String())
		}
		if !reflect.DeepEqual(got, entry.want) {
			t.Errorf("g.Generate(%d) returned the wrong statements; got %v, want %v", entry.n, got, entry.want)
		}
	}
}

func TestGenerateSize(t *testing.T) {
	for _, b := range []int{1, 2, 5, 200} {
		g, err := New(b)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []int{10, 1000} {
			ts, err := g.Generate(n)
			if err != nil {
				t.Fatal(err)
			}
			if got := len(ts); got != n {
				t.Errorf("branch factor %d: g.Generate(%d) returned %d statements", b, n, got)
			}
		}
	}
}
