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

// Package memory provide a volatile memory-based implementation of the
// storage.Store and storage.Txn interfaces.
//
// Statements are kept in a B-tree ordered by their pretty printed form.
// Every transaction works on a copy-on-write clone of the tree taken at
// begin and records its operations; commit replays them against the shared
// tree.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memory: store is closed")

// ErrTxnDone is returned by operations on a committed or rolled back
// transaction.
var ErrTxnDone = errors.New("memory: transaction already finished")

const degree = 32

type memoryStore struct {
	rwmu    sync.RWMutex
	idx     *btree.BTree
	version uint64
	closed  bool
}

// NewStore creates a new memory store.
func NewStore() storage.Store {
	return &memoryStore{
		idx: btree.New(degree),
	}
}

// Name returns the ID of the backend being used.
func (s *memoryStore) Name(ctx context.Context) string {
	return "MEMORY_STORE"
}

// Version returns the version of the driver implementation.
func (s *memoryStore) Version(ctx context.Context) string {
	return "0.2.rdfs"
}

// SupportedIsolationLevels returns the levels the memory store honors.
// SnapshotRead transactions read from a snapshot taken at begin; ReadCommitted
// ones also see every transaction committed since.
func (s *memoryStore) SupportedIsolationLevels() []storage.IsolationLevel {
	return []storage.IsolationLevel{storage.ReadCommitted, storage.SnapshotRead}
}

// Begin starts a new transaction.
func (s *memoryStore) Begin(ctx context.Context, level storage.IsolationLevel) (storage.Txn, error) {
	supported := false
	for _, l := range s.SupportedIsolationLevels() {
		supported = supported || l == level
	}
	if !supported {
		return nil, fmt.Errorf("memory.Begin(%v): unsupported isolation level", level)
	}
	// Clone updates the copy-on-write context of the source tree.
	s.rwmu.Lock()
	defer s.rwmu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return &memoryTxn{
		s:       s,
		level:   level,
		view:    s.idx.Clone(),
		version: s.version,
	}, nil
}

// Close drops all the statements held by the store.
func (s *memoryStore) Close(ctx context.Context) error {
	s.rwmu.Lock()
	defer s.rwmu.Unlock()
	s.closed = true
	s.idx = btree.New(degree)
	return nil
}

// item is the B-tree entry for a statement. Items are shared between clones
// and never mutated once inserted.
type item struct {
	key      string
	t        *triple.Triple
	explicit bool
}

// Less orders items by key.
func (i *item) Less(than btree.Item) bool {
	return i.key < than.(*item).key
}

func probe(t *triple.Triple) *item {
	return &item{key: t.String()}
}

func get(idx *btree.BTree, t *triple.Triple) *item {
	if it := idx.Get(probe(t)); it != nil {
		return it.(*item)
	}
	return nil
}

type opKind uint8

const (
	opAddExplicit opKind = iota
	opRemoveExplicit
	opAddInferred
	opRemoveInferred
	opClearInferred
)

// op is a recorded transaction operation.
type op struct {
	kind     opKind
	t        *triple.Triple
	contexts []*node.Node
}

// apply runs the operation against the index and reports if it changed it.
func (o op) apply(idx *btree.BTree) bool {
	switch o.kind {
	case opAddExplicit:
		if it := get(idx, o.t); it != nil && it.explicit {
			return false
		}
		idx.ReplaceOrInsert(&item{key: o.t.String(), t: o.t, explicit: true})
		return true
	case opRemoveExplicit:
		if it := get(idx, o.t); it != nil && it.explicit {
			idx.Delete(it)
			return true
		}
	case opAddInferred:
		if get(idx, o.t) == nil {
			idx.ReplaceOrInsert(&item{key: o.t.String(), t: o.t})
			return true
		}
	case opRemoveInferred:
		if it := get(idx, o.t); it != nil && !it.explicit {
			idx.Delete(it)
			return true
		}
	case opClearInferred:
		var del []btree.Item
		idx.Ascend(func(i btree.Item) bool {
			it := i.(*item)
			if !it.explicit && inContexts(it.t.C(), o.contexts) {
				del = append(del, it)
			}
			return true
		})
		for _, it := range del {
			idx.Delete(it)
		}
		return len(del) > 0
	}
	return false
}

// inContexts returns true if c is one of the contexts. A nil entry stands for
// the default graph; no contexts at all matches every context.
func inContexts(c *node.Node, cs []*node.Node) bool {
	if len(cs) == 0 {
		return true
	}
	for _, o := range cs {
		if c.Equal(o) {
			return true
		}
	}
	return false
}

// memoryTxn provides a transaction over a private clone of the index.
type memoryTxn struct {
	s     *memoryStore
	level storage.IsolationLevel

	mu      sync.Mutex
	view    *btree.BTree
	version uint64
	ops     []op
	done    bool
}

// refresh rebuilds the view from the latest committed index plus the
// recorded operations when running at ReadCommitted and another transaction
// committed since the view was built. Must be called with mu held.
func (m *memoryTxn) refresh() {
	if m.level != storage.ReadCommitted {
		return
	}
	m.s.rwmu.Lock()
	if m.s.version == m.version || m.s.closed {
		m.s.rwmu.Unlock()
		return
	}
	view, version := m.s.idx.Clone(), m.s.version
	m.s.rwmu.Unlock()
	for _, o := range m.ops {
		o.apply(view)
	}
	m.view, m.version = view, version
}

func (m *memoryTxn) run(o op) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return false, ErrTxnDone
	}
	m.refresh()
	m.ops = append(m.ops, o)
	return o.apply(m.view), nil
}

// AddTriples adds the triples as explicit statements.
func (m *memoryTxn) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	for _, t := range ts {
		if _, err := m.run(op{kind: opAddExplicit, t: t}); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTriples removes the explicit statements.
func (m *memoryTxn) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	for _, t := range ts {
		if _, err := m.run(op{kind: opRemoveExplicit, t: t}); err != nil {
			return err
		}
	}
	return nil
}

// AddInferred adds an inferred statement if not present.
func (m *memoryTxn) AddInferred(ctx context.Context, t *triple.Triple) (bool, error) {
	return m.run(op{kind: opAddInferred, t: t})
}

// RemoveInferred removes an inferred statement.
func (m *memoryTxn) RemoveInferred(ctx context.Context, t *triple.Triple) (bool, error) {
	return m.run(op{kind: opRemoveInferred, t: t})
}

// ClearInferred removes the inferred statements in the provided contexts.
func (m *memoryTxn) ClearInferred(ctx context.Context, contexts ...*node.Node) error {
	_, err := m.run(op{kind: opClearInferred, contexts: contexts})
	return err
}

// Triples pushes the selected statements into the channel, in key order.
func (m *memoryTxn) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	defer close(trpls)
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return ErrTxnDone
	}
	m.refresh()
	snap := m.view.Clone()
	m.mu.Unlock()

	var (
		err error
		cnt int
	)
	snap.Ascend(func(i btree.Item) bool {
		it := i.(*item)
		if !lo.Matches(it.explicit) {
			return true
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return false
		case trpls <- it.t:
		}
		cnt++
		return lo.MaxElements <= 0 || cnt < lo.MaxElements
	})
	return err
}

// Exist checks if the provided triple exists and matches the options.
func (m *memoryTxn) Exist(ctx context.Context, t *triple.Triple, lo *storage.LookupOptions) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return false, ErrTxnDone
	}
	m.refresh()
	it := get(m.view, t)
	return it != nil && lo.Matches(it.explicit), nil
}

// Commit replays the recorded operations against the store.
func (m *memoryTxn) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return ErrTxnDone
	}
	m.done = true
	m.s.rwmu.Lock()
	defer m.s.rwmu.Unlock()
	if m.s.closed {
		return ErrClosed
	}
	for _, o := range m.ops {
		o.apply(m.s.idx)
	}
	m.s.version++
	m.view, m.ops = nil, nil
	return nil
}

// Rollback discards the recorded operations. Rolling back a finished
// transaction is a no-op.
func (m *memoryTxn) Rollback(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = true
	m.view, m.ops = nil, nil
	return nil
}
