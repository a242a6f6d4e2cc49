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

// Package storage provides the abstraction to build statement stores the
// inference engine can be layered on.
package storage

import (
	"context"

	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"golang.org/x/sync/errgroup"
)

// LookupOptions allows to specify the behavior of the lookup operations.
type LookupOptions struct {
	// MaxElements list the maximum number of elements to return. If not
	// set it returns all the lookup results.
	MaxElements int

	// Explicit includes the statements asserted by users.
	Explicit bool

	// Inferred includes the statements synthesized by an inferencer.
	Inferred bool
}

var (
	// DefaultLookup returns both explicit and inferred statements.
	DefaultLookup = &LookupOptions{Explicit: true, Inferred: true}

	// ExplicitLookup returns only explicit statements.
	ExplicitLookup = &LookupOptions{Explicit: true}

	// InferredLookup returns only inferred statements.
	InferredLookup = &LookupOptions{Inferred: true}
)

// Matches returns true if a statement with the provided explicit flag should
// be returned by a lookup with these options.
func (lo *LookupOptions) Matches(explicit bool) bool {
	if explicit {
		return lo.Explicit
	}
	return lo.Inferred
}

// Store interface describes the low level API that statement stores need to
// implement.
type Store interface {
	// Name returns the ID of the backend being used.
	Name(ctx context.Context) string

	// Version returns the version of the driver implementation.
	Version(ctx context.Context) string

	// SupportedIsolationLevels returns the isolation levels the store can
	// honor, weakest first.
	SupportedIsolationLevels() []IsolationLevel

	// Begin starts a new transaction with the provided isolation level. The
	// level must be one of the supported ones.
	Begin(ctx context.Context, level IsolationLevel) (Txn, error)

	// Close releases the resources held by the store.
	Close(ctx context.Context) error
}

// Txn interface describes a transaction against a store. A statement is
// stored at most once and is either explicit or inferred. Adding explicitly
// a statement that is present as inferred turns it into an explicit one.
// Txn values are not safe for concurrent use.
type Txn interface {
	// AddTriples adds the triples as explicit statements. Adding a triple
	// that already exists should not fail.
	AddTriples(ctx context.Context, ts []*triple.Triple) error

	// RemoveTriples removes the explicit statements. Removing triples that
	// are not present on the store should not fail.
	RemoveTriples(ctx context.Context, ts []*triple.Triple) error

	// AddInferred adds an inferred statement. It returns false if the
	// statement was already present, either explicit or inferred.
	AddInferred(ctx context.Context, t *triple.Triple) (bool, error)

	// RemoveInferred removes an inferred statement. It returns false if no
	// such inferred statement was present.
	RemoveInferred(ctx context.Context, t *triple.Triple) (bool, error)

	// ClearInferred removes all inferred statements in the provided contexts,
	// or in every context if none is provided.
	ClearInferred(ctx context.Context, contexts ...*node.Node) error

	// Triples pushes the statements selected by the lookup options into the
	// provided channel. The channel is closed when done, errors included.
	Triples(ctx context.Context, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// Exist checks if the provided triple exists and matches the options.
	Exist(ctx context.Context, t *triple.Triple, lo *LookupOptions) (bool, error)

	// Commit makes the changes durable and visible to later transactions.
	Commit(ctx context.Context) error

	// Rollback discards the changes.
	Rollback(ctx context.Context) error
}

// StatementListener gets notified synchronously of every raw statement added
// or removed through a transaction, before the transaction commits. The
// explicit flag tells user statements apart from inferred ones.
type StatementListener interface {
	StatementAdded(t *triple.Triple, explicit bool)
	StatementRemoved(t *triple.Triple, explicit bool)
}

// Notifier is implemented by transactions that accept statement listeners.
type Notifier interface {
	AddListener(l StatementListener)
}

// ReadAll drains the statements selected by the lookup options into a slice.
func ReadAll(ctx context.Context, tx Txn, lo *LookupOptions) ([]*triple.Triple, error) {
	var ts []*triple.Triple
	ch := make(chan *triple.Triple)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tx.Triples(gctx, lo, ch)
	})
	for t := range ch {
		ts = append(ts, t)
	}
	return ts, g.Wait()
}
