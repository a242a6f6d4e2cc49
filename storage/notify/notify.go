// Copyright 2018 Google Inc. All rights reserved.
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

// Package notify implements a passthrough driver that synchronously notifies
// statement listeners of every raw add and remove issued through its
// transactions.
package notify

import (
	"context"
	"sync"

	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
)

// storeNotifier wraps a store.
type storeNotifier struct {
	s storage.Store
}

// New returns a new notifying driver. Wrapping an already notifying store
// returns it unchanged.
func New(s storage.Store) storage.Store {
	if n, ok := s.(*storeNotifier); ok {
		return n
	}
	return &storeNotifier{s: s}
}

// Name returns the ID of the backend being used.
func (s *storeNotifier) Name(ctx context.Context) string {
	return s.s.Name(ctx)
}

// Version returns the version of the driver implementation.
func (s *storeNotifier) Version(ctx context.Context) string {
	return s.s.Version(ctx)
}

// SupportedIsolationLevels returns the levels of the wrapped store.
func (s *storeNotifier) SupportedIsolationLevels() []storage.IsolationLevel {
	return s.s.SupportedIsolationLevels()
}

// Begin starts a transaction on the wrapped store.
func (s *storeNotifier) Begin(ctx context.Context, level storage.IsolationLevel) (storage.Txn, error) {
	tx, err := s.s.Begin(ctx, level)
	if err != nil {
		return nil, err
	}
	return &txnNotifier{tx: tx}, nil
}

// Close closes the wrapped store.
func (s *storeNotifier) Close(ctx context.Context) error {
	return s.s.Close(ctx)
}

// txnNotifier forwards every call to the wrapped transaction and invokes the
// listeners, in registration order, after each successful raw add or remove.
type txnNotifier struct {
	tx storage.Txn

	mu        sync.RWMutex
	listeners []storage.StatementListener
}

// AddListener registers a listener for the lifetime of the transaction.
func (t *txnNotifier) AddListener(l storage.StatementListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *txnNotifier) added(explicit bool, ts ...*triple.Triple) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, trpl := range ts {
		for _, l := range t.listeners {
			l.StatementAdded(trpl, explicit)
		}
	}
}

func (t *txnNotifier) removed(explicit bool, ts ...*triple.Triple) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, trpl := range ts {
		for _, l := range t.listeners {
			l.StatementRemoved(trpl, explicit)
		}
	}
}

// AddTriples adds the explicit statements and notifies the listeners.
func (t *txnNotifier) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	if err := t.tx.AddTriples(ctx, ts); err != nil {
		return err
	}
	t.added(true, ts...)
	return nil
}

// RemoveTriples removes the explicit statements and notifies the listeners.
func (t *txnNotifier) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	if err := t.tx.RemoveTriples(ctx, ts); err != nil {
		return err
	}
	t.removed(true, ts...)
	return nil
}

// AddInferred adds an inferred statement and notifies the listeners if it
// was not present.
func (t *txnNotifier) AddInferred(ctx context.Context, trpl *triple.Triple) (bool, error) {
	ok, err := t.tx.AddInferred(ctx, trpl)
	if ok {
		t.added(false, trpl)
	}
	return ok, err
}

// RemoveInferred removes an inferred statement and notifies the listeners if
// it was present.
func (t *txnNotifier) RemoveInferred(ctx context.Context, trpl *triple.Triple) (bool, error) {
	ok, err := t.tx.RemoveInferred(ctx, trpl)
	if ok {
		t.removed(false, trpl)
	}
	return ok, err
}

// ClearInferred forwards the call. Bulk clears are not reported one by one.
func (t *txnNotifier) ClearInferred(ctx context.Context, contexts ...*node.Node) error {
	return t.tx.ClearInferred(ctx, contexts...)
}

// Triples forwards the call.
func (t *txnNotifier) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return t.tx.Triples(ctx, lo, trpls)
}

// Exist forwards the call.
func (t *txnNotifier) Exist(ctx context.Context, trpl *triple.Triple, lo *storage.LookupOptions) (bool, error) {
	return t.tx.Exist(ctx, trpl, lo)
}

// Commit commits the wrapped transaction and drops the listeners.
func (t *txnNotifier) Commit(ctx context.Context) error {
	defer t.reset()
	return t.tx.Commit(ctx)
}

// Rollback rolls back the wrapped transaction and drops the listeners.
func (t *txnNotifier) Rollback(ctx context.Context) error {
	defer t.reset()
	return t.tx.Rollback(ctx)
}

func (t *txnNotifier) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = nil
}
