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

// Package badgerdb provides a persistent implementation of the storage.Store
// and storage.Txn interfaces on top of badger.
//
// Every statement is one key: a prefix followed by the pretty printed triple.
// The value is a single byte telling explicit and inferred statements apart.
//
// Transactions that outgrow what badger accepts in a single transaction keep
// their remaining writes in memory and flush them with a write batch right
// after the badger transaction commits. Such commits are not atomic: a crash
// between the two steps loses the batched writes, and concurrent conflicts
// are only detected on the writes badger took.
package badgerdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/btree"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/literal"
	"github.com/google/rdfsinfer/triple/node"
)

var prefix = []byte("t:")

const (
	inferred byte = 0
	explicit byte = 1
)

// ErrTxnDone is returned by operations on a committed or rolled back
// transaction.
var ErrTxnDone = errors.New("badgerdb: transaction already finished")

// Options configures the store.
type Options struct {
	// Path is the directory holding the database files.
	Path string
	// InMemory keeps everything in memory; Path is ignored.
	InMemory bool
	// MaxTxnWrites moves the writes of a transaction to the in-memory batch
	// after that many. Zero only does so when badger reports the
	// transaction as too big.
	MaxTxnWrites int
}

type badgerStore struct {
	db        *badger.DB
	maxWrites int
}

// Open opens, or creates, a badger backed store.
func Open(opts Options) (storage.Store, error) {
	bo := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("badgerdb.Open(%q): %w", opts.Path, err)
	}
	return &badgerStore{db: db, maxWrites: opts.MaxTxnWrites}, nil
}

// Name returns the ID of the backend being used.
func (s *badgerStore) Name(ctx context.Context) string {
	return "BADGER_STORE"
}

// Version returns the version of the driver implementation.
func (s *badgerStore) Version(ctx context.Context) string {
	return "0.2.rdfs"
}

// SupportedIsolationLevels returns the levels badger honors. Badger
// transactions read from a snapshot and abort on conflicting commits.
func (s *badgerStore) SupportedIsolationLevels() []storage.IsolationLevel {
	return []storage.IsolationLevel{storage.Snapshot, storage.Serializable}
}

// Begin starts a new read-write badger transaction.
func (s *badgerStore) Begin(ctx context.Context, level storage.IsolationLevel) (storage.Txn, error) {
	if level != storage.Snapshot && level != storage.Serializable {
		return nil, fmt.Errorf("badgerdb.Begin(%v): unsupported isolation level", level)
	}
	return &badgerTxn{
		db:        s.db,
		tx:        s.db.NewTransaction(true),
		maxWrites: s.maxWrites,
	}, nil
}

// Close closes the underlying database.
func (s *badgerStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func key(t *triple.Triple) []byte {
	return append(append([]byte{}, prefix...), t.String()...)
}

func decode(k []byte) (*triple.Triple, error) {
	t, err := triple.Parse(string(bytes.TrimPrefix(k, prefix)), literal.DefaultBuilder())
	if err != nil {
		return nil, fmt.Errorf("badgerdb: corrupted key %q: %v", k, err)
	}
	return t, nil
}

type entry struct {
	t        *triple.Triple
	explicit bool
}

// pending is a write kept out of the badger transaction.
type pending struct {
	key     string
	flag    byte
	deleted bool
}

// Less orders pending writes by key.
func (p *pending) Less(than btree.Item) bool {
	return p.key < than.(*pending).key
}

// badgerTxn wraps a badger transaction. Badger transactions are not safe
// for concurrent use, so every call holds mu.
type badgerTxn struct {
	mu   sync.Mutex
	db   *badger.DB
	tx   *badger.Txn
	done bool

	writes    int
	maxWrites int
	// spill holds the writes badger could not take; nil until then.
	spill *btree.BTree
}

func (b *badgerTxn) set(k []byte, flag byte) error {
	return b.write(k, &pending{key: string(k), flag: flag})
}

func (b *badgerTxn) delete(k []byte) error {
	return b.write(k, &pending{key: string(k), deleted: true})
}

func (b *badgerTxn) write(k []byte, p *pending) error {
	if b.spill == nil && (b.maxWrites <= 0 || b.writes < b.maxWrites) {
		var err error
		if p.deleted {
			err = b.tx.Delete(k)
		} else {
			err = b.tx.Set(k, []byte{p.flag})
		}
		if !errors.Is(err, badger.ErrTxnTooBig) {
			if err == nil {
				b.writes++
			}
			return err
		}
	}
	if b.spill == nil {
		b.spill = btree.New(32)
	}
	b.spill.ReplaceOrInsert(p)
	return nil
}

// lookup returns the stored flag for t, and false if t is not stored.
func (b *badgerTxn) lookup(t *triple.Triple) (byte, bool, error) {
	if b.spill != nil {
		if it := b.spill.Get(&pending{key: string(key(t))}); it != nil {
			p := it.(*pending)
			return p.flag, !p.deleted, nil
		}
	}
	item, err := b.tx.Get(key(t))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var flag byte
	err = item.Value(func(v []byte) error {
		if len(v) > 0 {
			flag = v[0]
		}
		return nil
	})
	return flag, err == nil, err
}

func (b *badgerTxn) check() error {
	if b.done {
		return ErrTxnDone
	}
	return nil
}

// AddTriples adds the triples as explicit statements.
func (b *badgerTxn) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	for _, t := range ts {
		if err := b.set(key(t), explicit); err != nil {
			return fmt.Errorf("badgerdb.AddTriples(%s): %w", t, err)
		}
	}
	return nil
}

// RemoveTriples removes the explicit statements.
func (b *badgerTxn) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	for _, t := range ts {
		flag, ok, err := b.lookup(t)
		if err != nil {
			return fmt.Errorf("badgerdb.RemoveTriples(%s): %w", t, err)
		}
		if !ok || flag != explicit {
			continue
		}
		if err := b.delete(key(t)); err != nil {
			return fmt.Errorf("badgerdb.RemoveTriples(%s): %w", t, err)
		}
	}
	return nil
}

// AddInferred adds an inferred statement if not present.
func (b *badgerTxn) AddInferred(ctx context.Context, t *triple.Triple) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return false, err
	}
	_, ok, err := b.lookup(t)
	if err != nil || ok {
		return false, err
	}
	if err := b.set(key(t), inferred); err != nil {
		return false, fmt.Errorf("badgerdb.AddInferred(%s): %w", t, err)
	}
	return true, nil
}

// RemoveInferred removes an inferred statement.
func (b *badgerTxn) RemoveInferred(ctx context.Context, t *triple.Triple) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return false, err
	}
	flag, ok, err := b.lookup(t)
	if err != nil || !ok || flag != inferred {
		return false, err
	}
	if err := b.delete(key(t)); err != nil {
		return false, fmt.Errorf("badgerdb.RemoveInferred(%s): %w", t, err)
	}
	return true, nil
}

// scan returns the stored statements accepted by keep, in key order, with
// the pending writes merged in. The iterator is closed before returning so
// the caller may write to the transaction.
func (b *badgerTxn) scan(ctx context.Context, keep func(e entry) bool, max int) ([]entry, error) {
	var over []*pending
	if b.spill != nil {
		b.spill.Ascend(func(i btree.Item) bool {
			over = append(over, i.(*pending))
			return true
		})
	}
	var es []entry
	full := func() bool { return max > 0 && len(es) >= max }
	add := func(k []byte, flag byte) error {
		t, err := decode(k)
		if err != nil {
			return err
		}
		if e := (entry{t: t, explicit: flag == explicit}); keep(e) {
			es = append(es, e)
		}
		return nil
	}
	addPending := func(p *pending) error {
		if p.deleted {
			return nil
		}
		return add([]byte(p.key), p.flag)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := b.tx.NewIterator(opts)
	defer it.Close()
	j := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix) && !full(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := it.Item()
		k := item.KeyCopy(nil)
		for ; j < len(over) && over[j].key < string(k) && !full(); j++ {
			if err := addPending(over[j]); err != nil {
				return nil, err
			}
		}
		if full() {
			break
		}
		if j < len(over) && over[j].key == string(k) {
			if err := addPending(over[j]); err != nil {
				return nil, err
			}
			j++
			continue
		}
		var flag byte
		if err := item.Value(func(v []byte) error {
			if len(v) > 0 {
				flag = v[0]
			}
			return nil
		}); err != nil {
			return nil, err
		}
		if err := add(k, flag); err != nil {
			return nil, err
		}
	}
	for ; j < len(over) && !full(); j++ {
		if err := addPending(over[j]); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// ClearInferred removes the inferred statements in the provided contexts.
func (b *badgerTxn) ClearInferred(ctx context.Context, contexts ...*node.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	es, err := b.scan(ctx, func(e entry) bool {
		return !e.explicit && inContexts(e.t.C(), contexts)
	}, 0)
	if err != nil {
		return fmt.Errorf("badgerdb.ClearInferred: %w", err)
	}
	for _, e := range es {
		if err := b.delete(key(e.t)); err != nil {
			return fmt.Errorf("badgerdb.ClearInferred: %w", err)
		}
	}
	return nil
}

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

// Triples pushes the selected statements into the channel. The statements
// are read before the first one is pushed.
func (b *badgerTxn) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	defer close(trpls)
	b.mu.Lock()
	if err := b.check(); err != nil {
		b.mu.Unlock()
		return err
	}
	es, err := b.scan(ctx, func(e entry) bool { return lo.Matches(e.explicit) }, lo.MaxElements)
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("badgerdb.Triples: %w", err)
	}
	for _, e := range es {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case trpls <- e.t:
		}
	}
	return nil
}

// Exist checks if the provided triple exists and matches the options.
func (b *badgerTxn) Exist(ctx context.Context, t *triple.Triple, lo *storage.LookupOptions) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return false, err
	}
	flag, ok, err := b.lookup(t)
	if err != nil || !ok {
		return false, err
	}
	return lo.Matches(flag == explicit), nil
}

// Commit commits the badger transaction, then flushes the pending writes.
// Conflicting concurrent commits surface as badger.ErrConflict.
func (b *badgerTxn) Commit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	b.done = true
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("badgerdb.Commit: %w", err)
	}
	if b.spill == nil {
		return nil
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	var err error
	b.spill.Ascend(func(i btree.Item) bool {
		p := i.(*pending)
		if p.deleted {
			err = wb.Delete([]byte(p.key))
		} else {
			err = wb.Set([]byte(p.key), []byte{p.flag})
		}
		return err == nil
	})
	if err == nil {
		err = wb.Flush()
	}
	b.spill = nil
	if err != nil {
		return fmt.Errorf("badgerdb.Commit: flushing pending writes: %w", err)
	}
	return nil
}

// Rollback discards the badger transaction. Rolling back a finished
// transaction is a no-op.
func (b *badgerTxn) Rollback(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.done {
		b.done = true
		b.tx.Discard()
		b.spill = nil
	}
	return nil
}
