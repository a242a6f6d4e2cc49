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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("rdfs %s failed: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := run(t, "version"); !strings.HasPrefix(got, "rdfs vCli (") {
		t.Errorf("rdfs version = %q; want the version banner", got)
	}
}

func TestLoadAndExport(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.nq")
	err := os.WriteFile(data, []byte(`<http://example.org/Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Animal> .
<http://example.org/fido> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Dog> .
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(dir, "db")
	if got := run(t, "load", "--driver", "badger", "--path", db, data); !strings.Contains(got, "loaded 2 statements") {
		t.Errorf("rdfs load = %q; want 2 statements loaded", got)
	}

	out := filepath.Join(dir, "out.nq")
	run(t, "export", "--driver", "badger", "--path", db, "--inferred", out)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := `<http://example.org/fido> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Animal> .`
	if !strings.Contains(string(b), want) {
		t.Errorf("rdfs export --inferred should contain %q; got\n%s", want, b)
	}

	got := run(t, "closure", "--driver", "badger", "--path", db)
	if !strings.Contains(got, "<http://example.org/Dog>\tsubClassOf\t") || !strings.Contains(got, "<http://example.org/Animal>") {
		t.Errorf("rdfs closure should list the loaded classes; got\n%s", got)
	}
}

func TestInvalidDriver(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"closure", "--driver", "nope"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Errorf("rdfs closure --driver nope should fail")
	}
}
