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

// Package storagetest contains the behavior every storage.Store driver is
// expected to show. Driver tests run it against a fresh store.
package storagetest

import (
	"context"
	"testing"

	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/tools/testutil"
	"github.com/google/rdfsinfer/triple"
)

// Factory returns a new empty store.
type Factory func(t *testing.T) storage.Store

// Run executes the driver contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("ExplicitAndInferred", func(t *testing.T) { testExplicitAndInferred(t, newStore(t)) })
	t.Run("Promotion", func(t *testing.T) { testPromotion(t, newStore(t)) })
	t.Run("ClearInferred", func(t *testing.T) { testClearInferred(t, newStore(t)) })
	t.Run("CommitAndRollback", func(t *testing.T) { testCommitAndRollback(t, newStore(t)) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, newStore(t)) })
	t.Run("Lookups", func(t *testing.T) { testLookups(t, newStore(t)) })
}

func begin(t *testing.T, s storage.Store) storage.Txn {
	t.Helper()
	lvl, ok := storage.CompatibleLevel(storage.ReadCommitted, s.SupportedIsolationLevels())
	if !ok {
		t.Fatalf("%s does not support any level compatible with %v", s.Name(context.Background()), storage.ReadCommitted)
	}
	tx, err := s.Begin(context.Background(), lvl)
	if err != nil {
		t.Fatalf("%s.Begin(%v) failed with error %v", s.Name(context.Background()), lvl, err)
	}
	return tx
}

func exist(t *testing.T, tx storage.Txn, trpl *triple.Triple, lo *storage.LookupOptions) bool {
	t.Helper()
	ok, err := tx.Exist(context.Background(), trpl, lo)
	if err != nil {
		t.Fatalf("Exist(%v) failed with error %v", trpl, err)
	}
	return ok
}

func count(t *testing.T, tx storage.Txn, lo *storage.LookupOptions) int {
	t.Helper()
	ts, err := storage.ReadAll(context.Background(), tx, lo)
	if err != nil {
		t.Fatalf("Triples failed with error %v", err)
	}
	return len(ts)
}

func testExplicitAndInferred(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tx := begin(t, s)
	defer tx.Rollback(ctx)
	e, i := testutil.MustBuildTriple(t, "fido rdf:type Dog"), testutil.MustBuildTriple(t, "fido rdf:type Animal")

	if err := tx.AddTriples(ctx, []*triple.Triple{e, e}); err != nil {
		t.Fatalf("AddTriples should not fail adding duplicates, got %v", err)
	}
	added, err := tx.AddInferred(ctx, i)
	if err != nil || !added {
		t.Errorf("AddInferred(%v) = %v, %v; want true, nil", i, added, err)
	}
	if added, _ := tx.AddInferred(ctx, i); added {
		t.Errorf("AddInferred(%v) should return false the second time", i)
	}
	if added, _ := tx.AddInferred(ctx, e); added {
		t.Errorf("AddInferred(%v) should return false for an explicit statement", e)
	}
	if got, want := exist(t, tx, e, storage.ExplicitLookup), true; got != want {
		t.Errorf("Exist(%v, explicit) = %v; want %v", e, got, want)
	}
	if got, want := exist(t, tx, e, storage.InferredLookup), false; got != want {
		t.Errorf("Exist(%v, inferred) = %v; want %v", e, got, want)
	}
	if got, want := exist(t, tx, i, storage.InferredLookup), true; got != want {
		t.Errorf("Exist(%v, inferred) = %v; want %v", i, got, want)
	}
	if removed, _ := tx.RemoveInferred(ctx, e); removed {
		t.Errorf("RemoveInferred(%v) should never remove explicit statements", e)
	}
	if err := tx.RemoveTriples(ctx, []*triple.Triple{i}); err != nil {
		t.Fatal(err)
	}
	if !exist(t, tx, i, storage.DefaultLookup) {
		t.Errorf("RemoveTriples(%v) should never remove inferred statements", i)
	}
	if removed, _ := tx.RemoveInferred(ctx, i); !removed {
		t.Errorf("RemoveInferred(%v) should have removed the inferred statement", i)
	}
	if err := tx.RemoveTriples(ctx, []*triple.Triple{e}); err != nil {
		t.Fatal(err)
	}
	if got := count(t, tx, storage.DefaultLookup); got != 0 {
		t.Errorf("store should be empty, got %d statements", got)
	}
}

func testPromotion(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tx := begin(t, s)
	defer tx.Rollback(ctx)
	trpl := testutil.MustBuildTriple(t, "fido rdf:type Animal")
	if _, err := tx.AddInferred(ctx, trpl); err != nil {
		t.Fatal(err)
	}
	if err := tx.AddTriples(ctx, []*triple.Triple{trpl}); err != nil {
		t.Fatal(err)
	}
	if !exist(t, tx, trpl, storage.ExplicitLookup) {
		t.Errorf("AddTriples(%v) should have promoted the inferred statement", trpl)
	}
	if got, want := count(t, tx, storage.DefaultLookup), 1; got != want {
		t.Errorf("promotion should not duplicate statements; got %d, want %d", got, want)
	}
	if err := tx.ClearInferred(ctx); err != nil {
		t.Fatal(err)
	}
	if !exist(t, tx, trpl, storage.ExplicitLookup) {
		t.Errorf("ClearInferred should not remove the promoted statement %v", trpl)
	}
}

func testClearInferred(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tx := begin(t, s)
	defer tx.Rollback(ctx)
	g := testutil.MustBuildNode(t, "<urn:g>")
	ts := testutil.MustBuildTriples(t,
		"a p b",
		"a p c <urn:g>",
		"a p d <urn:h>",
	)
	for _, trpl := range ts {
		if _, err := tx.AddInferred(ctx, trpl); err != nil {
			t.Fatal(err)
		}
	}
	explicit := testutil.MustBuildTriple(t, "a q b <urn:g>")
	if err := tx.AddTriples(ctx, []*triple.Triple{explicit}); err != nil {
		t.Fatal(err)
	}
	if err := tx.ClearInferred(ctx, g, nil); err != nil {
		t.Fatal(err)
	}
	if exist(t, tx, ts[0], storage.DefaultLookup) || exist(t, tx, ts[1], storage.DefaultLookup) {
		t.Errorf("ClearInferred(<urn:g>, default) should have removed %v and %v", ts[0], ts[1])
	}
	if !exist(t, tx, ts[2], storage.DefaultLookup) {
		t.Errorf("ClearInferred(<urn:g>, default) should have kept %v", ts[2])
	}
	if err := tx.ClearInferred(ctx); err != nil {
		t.Fatal(err)
	}
	if got, want := count(t, tx, storage.DefaultLookup), 1; got != want {
		t.Errorf("ClearInferred() left %d statements; want %d", got, want)
	}
}

func testCommitAndRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	a, b := testutil.MustBuildTriple(t, "a p b"), testutil.MustBuildTriple(t, "a p c")

	tx := begin(t, s)
	if err := tx.AddTriples(ctx, []*triple.Triple{a}); err != nil {
		t.Fatal(err)
	}
	if _, err := tx.AddInferred(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed with error %v", err)
	}

	tx = begin(t, s)
	if err := tx.RemoveTriples(ctx, []*triple.Triple{a}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed with error %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("a second Rollback should be a no-op, got %v", err)
	}

	tx = begin(t, s)
	defer tx.Rollback(ctx)
	if !exist(t, tx, a, storage.ExplicitLookup) {
		t.Errorf("rolled back removal should have kept %v", a)
	}
	if !exist(t, tx, b, storage.InferredLookup) {
		t.Errorf("committed inferred statement %v should be present", b)
	}
}

func testIsolation(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trpl := testutil.MustBuildTriple(t, "a p b")
	writer := begin(t, s)
	reader := begin(t, s)
	defer reader.Rollback(ctx)
	if err := writer.AddTriples(ctx, []*triple.Triple{trpl}); err != nil {
		t.Fatal(err)
	}
	if exist(t, reader, trpl, storage.DefaultLookup) {
		t.Errorf("uncommitted statement %v should not be visible to other transactions", trpl)
	}
	if err := writer.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	after := begin(t, s)
	defer after.Rollback(ctx)
	if !exist(t, after, trpl, storage.DefaultLookup) {
		t.Errorf("committed statement %v should be visible to new transactions", trpl)
	}
}

func testLookups(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tx := begin(t, s)
	defer tx.Rollback(ctx)
	if err := tx.AddTriples(ctx, testutil.MustBuildTriples(t, "a p b", "a p c", "a p d")); err != nil {
		t.Fatal(err)
	}
	if _, err := tx.AddInferred(ctx, testutil.MustBuildTriple(t, "a q b")); err != nil {
		t.Fatal(err)
	}
	table := []struct {
		lo   *storage.LookupOptions
		want int
	}{
		{storage.DefaultLookup, 4},
		{storage.ExplicitLookup, 3},
		{storage.InferredLookup, 1},
		{&storage.LookupOptions{Explicit: true, Inferred: true, MaxElements: 2}, 2},
		{&storage.LookupOptions{}, 0},
	}
	for _, tc := range table {
		if got := count(t, tx, tc.lo); got != tc.want {
			t.Errorf("Triples(%+v) returned %d statements; want %d", tc.lo, got, tc.want)
		}
	}
}
