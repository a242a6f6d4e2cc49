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

package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/rdfsinfer/inference/closure"
	"github.com/google/rdfsinfer/inference/guard"
	"github.com/google/rdfsinfer/inference/schema"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/vocabulary"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// Conn is a transaction against the store that forward chains the
// statements it adds. A Conn is not safe for concurrent use; every Conn
// must end with Commit, Rollback or Close.
type Conn struct {
	inf    *Inferencer
	tx     storage.Txn
	level  storage.IsolationLevel
	ticket *guard.Ticket
	tables *closure.Tables

	// commits and rebuilds seen before the store transaction began.
	commits  uint64
	rebuilds uint64

	// staged receives the schema statements of the transaction once write
	// access is granted. Other transactions never see it.
	staged *schema.Cache

	ops           []op
	added         []*triple.Triple
	schemaChanged bool
	removed       bool
	cleared       bool
	active        bool
}

type opKind uint8

const (
	opAdd opKind = iota
	opRemove
	opClear
)

// op is a change requested on the connection, kept to replay it on a newer
// store snapshot.
type op struct {
	kind     opKind
	ts       []*triple.Triple
	contexts []*node.Node
}

func (o op) apply(ctx context.Context, tx storage.Txn) error {
	switch o.kind {
	case opAdd:
		return tx.AddTriples(ctx, o.ts)
	case opRemove:
		return tx.RemoveTriples(ctx, o.ts)
	}
	return tx.ClearInferred(ctx, o.contexts...)
}

// Begin starts a transaction using the weakest isolation level supported by
// the store that is at least as strong as the requested one.
func (i *Inferencer) Begin(ctx context.Context, level storage.IsolationLevel) (*Conn, error) {
	if !i.initialized.Load() {
		return nil, ErrNotInitialized
	}
	lvl, ok := storage.CompatibleLevel(level, i.store.SupportedIsolationLevels())
	if !ok {
		return nil, fmt.Errorf("inference.Begin(%v): %w", level, ErrUnsupportedIsolation)
	}
	tk, err := i.guard.AcquireRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("inference.Begin(%v): %w", level, err)
	}
	c := &Conn{
		inf:      i,
		level:    lvl,
		ticket:   tk,
		tables:   i.current.Load().tables,
		commits:  i.commits.Load(),
		rebuilds: i.rebuilds.Load(),
		active:   true,
	}
	if c.tx, err = i.store.Begin(ctx, lvl); err != nil {
		tk.Release()
		return nil, fmt.Errorf("inference.Begin(%v): %w", level, err)
	}
	if n, ok := c.tx.(storage.Notifier); ok {
		n.AddListener(c)
	}
	return c, nil
}

// Level returns the isolation level of the store transaction.
func (c *Conn) Level() storage.IsolationLevel {
	return c.level
}

// Active returns true until the connection commits or rolls back.
func (c *Conn) Active() bool {
	return c.active
}

// rebuildPending is true when every inferred statement will be derived again
// at commit time.
func (c *Conn) rebuildPending() bool {
	return c.schemaChanged || c.removed || c.cleared
}

// schemaCache returns the cache schema changes are checked against.
func (c *Conn) schemaCache() *schema.Cache {
	if c.staged != nil {
		return c.staged
	}
	return c.inf.current.Load().cache
}

// upgrade gets write access to the schema. The connection is rolled back if
// the access is lost to a concurrent transaction. Read-only schemas keep
// read access.
func (c *Conn) upgrade(ctx context.Context) error {
	if c.inf.fixed || c.ticket.Writable() {
		return nil
	}
	if err := c.ticket.Upgrade(ctx); err != nil {
		if errors.Is(err, guard.ErrConcurrentModification) {
			metrics.conflicts.Inc()
			log.WithFields(log.Fields{
				"readers":    c.inf.guard.Readers(),
				"generation": c.inf.Generation(),
			}).Info("Rolling back transaction on concurrent schema modification")
			c.abort(ctx)
		}
		return fmt.Errorf("inference: schema write access: %w", err)
	}
	c.staged = c.inf.current.Load().cache.Clone()
	return nil
}

// AddTriples adds the triples as explicit statements and forward chains
// them. Schema statements first get write access to the schema.
func (c *Conn) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	if !c.active {
		return ErrNotActive
	}
	for _, t := range ts {
		changes, err := c.schemaCache().Changes(t)
		if err != nil {
			return fmt.Errorf("inference.AddTriples(%s): %w", t, err)
		}
		if changes {
			if err := c.upgrade(ctx); err != nil {
				return err
			}
		}
		if err := c.tx.AddTriples(ctx, []*triple.Triple{t}); err != nil {
			return fmt.Errorf("inference.AddTriples(%s): %w", t, err)
		}
		c.ops = append(c.ops, op{kind: opAdd, ts: []*triple.Triple{t}})
		if c.rebuildPending() {
			continue
		}
		ch := c.inf.chainer(c.tx, c.tables)
		err = ch.chain(ctx, t)
		metrics.inferredAdded.Add(float64(ch.added))
		if err != nil {
			return fmt.Errorf("inference.AddTriples(%s): %w", t, err)
		}
	}
	return nil
}

// RemoveTriples removes the explicit statements. Every inferred statement
// is derived again at commit time, so write access is required.
func (c *Conn) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	if !c.active {
		return ErrNotActive
	}
	if err := c.upgrade(ctx); err != nil {
		return err
	}
	if err := c.tx.RemoveTriples(ctx, ts); err != nil {
		return fmt.Errorf("inference.RemoveTriples: %w", err)
	}
	c.ops = append(c.ops, op{kind: opRemove, ts: append([]*triple.Triple(nil), ts...)})
	return nil
}

// ClearInferred removes the inferred statements of the provided contexts.
// They are derived again at commit time, so write access is required.
func (c *Conn) ClearInferred(ctx context.Context, contexts ...*node.Node) error {
	if !c.active {
		return ErrNotActive
	}
	if err := c.upgrade(ctx); err != nil {
		return err
	}
	if err := c.tx.ClearInferred(ctx, contexts...); err != nil {
		return fmt.Errorf("inference.ClearInferred: %w", err)
	}
	c.ops = append(c.ops, op{kind: opClear, contexts: append([]*node.Node(nil), contexts...)})
	c.cleared = true
	return nil
}

// Triples pushes the selected statements into the channel, which is closed
// when done.
func (c *Conn) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	if !c.active {
		close(trpls)
		return ErrNotActive
	}
	return c.tx.Triples(ctx, lo, trpls)
}

// Exist checks if the provided triple exists and matches the options.
func (c *Conn) Exist(ctx context.Context, t *triple.Triple, lo *storage.LookupOptions) (bool, error) {
	if !c.active {
		return false, ErrNotActive
	}
	return c.tx.Exist(ctx, t, lo)
}

// StatementAdded routes explicit statements into the staged schema while
// holding write access. Inferred statements are ignored.
func (c *Conn) StatementAdded(t *triple.Triple, explicit bool) {
	if !explicit || !c.active {
		return
	}
	c.added = append(c.added, t)
	if c.staged == nil {
		return
	}
	changed, err := c.staged.Process(t)
	if err != nil {
		log.WithFields(log.Fields{"statement": t.String()}).Warnf("Statement not added to the schema: %v", err)
		return
	}
	c.schemaChanged = c.schemaChanged || changed
}

// StatementRemoved records that explicit statements were removed.
func (c *Conn) StatementRemoved(t *triple.Triple, explicit bool) {
	if !explicit || !c.active {
		return
	}
	c.removed = true
	if !c.inf.fixed && vocabulary.IsSchemaPredicate(t.P()) {
		c.schemaChanged = true
	}
}

// Commit brings the inferred statements up to date, commits the store
// transaction and publishes the new schema and closure tables if the schema
// changed. On error the transaction is rolled back.
func (c *Conn) Commit(ctx context.Context) (err error) {
	if !c.active {
		return ErrNotActive
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "inference.Commit")
	defer span.Finish()
	start := time.Now()
	defer func() {
		if err != nil {
			span.SetTag("error", true)
			c.abort(ctx)
			return
		}
		metrics.commitsTotal.Inc()
		metrics.commitLatency.Observe(time.Since(start).Seconds())
	}()

	done := false
	if !c.rebuildPending() {
		if done, err = c.commitChained(ctx); err != nil {
			return fmt.Errorf("inference.Commit: %w", err)
		}
	}
	if !done {
		if err := c.commitRebuilt(ctx); err != nil {
			return fmt.Errorf("inference.Commit: %w", err)
		}
	}
	c.finish()
	return nil
}

// commitChained commits the statements chained so far. It commits nothing
// and returns false if a rebuild committed since the connection began: the
// statements were chained with outdated tables, or some of their
// consequences were found already stored and then cleared.
func (c *Conn) commitChained(ctx context.Context) (bool, error) {
	c.inf.commitMu.RLock()
	defer c.inf.commitMu.RUnlock()
	if c.inf.rebuilds.Load() != c.rebuilds {
		return false, nil
	}
	if err := c.tx.Commit(ctx); err != nil {
		return false, err
	}
	c.inf.commits.Add(1)
	return true, nil
}

// commitRebuilt derives every inferred statement again from the latest
// explicit statements and commits. No other commit runs meanwhile.
func (c *Conn) commitRebuilt(ctx context.Context) error {
	c.inf.commitMu.Lock()
	defer c.inf.commitMu.Unlock()
	if err := c.refresh(ctx); err != nil {
		return err
	}
	var (
		cache  *schema.Cache
		tables = c.inf.current.Load().tables
		err    error
	)
	if c.needsRecompute() {
		if cache, tables, err = c.inf.recompute(ctx, c.tx); err != nil {
			return err
		}
	}
	ch := c.inf.chainer(c.tx, tables)
	err = ch.rebuild(ctx)
	metrics.inferredAdded.Add(float64(ch.added))
	if err != nil {
		return err
	}
	if err := c.tx.Commit(ctx); err != nil {
		return err
	}
	c.inf.commits.Add(1)
	c.inf.rebuilds.Add(1)
	if cache != nil {
		c.inf.publish(cache, tables)
		c.inf.generation.Add(1)
		if c.ticket.Writable() {
			c.ticket.MarkModified()
		}
		log.WithFields(log.Fields{
			"schema":   cache.Size(),
			"inferred": ch.added,
		}).Debug("Committed schema change")
	}
	return nil
}

// needsRecompute is true if the schema changed in the transaction, or if it
// added statements the committed schema does not know about. The latter
// happens when a concurrent commit retracted a schema statement this
// transaction added again without write access.
func (c *Conn) needsRecompute() bool {
	if c.inf.fixed {
		return false
	}
	if c.schemaChanged {
		return true
	}
	cur := c.inf.current.Load().cache
	for _, t := range c.added {
		if changes, err := cur.Changes(t); err == nil && changes {
			return true
		}
	}
	return false
}

// refresh moves the connection to a new store transaction replaying its
// changes when the store transaction reads from a snapshot older than the
// latest commit. Must be called with commitMu held.
func (c *Conn) refresh(ctx context.Context) error {
	if c.level <= storage.ReadCommitted || c.inf.commits.Load() == c.commits {
		return nil
	}
	tx, err := c.inf.store.Begin(ctx, c.level)
	if err != nil {
		return fmt.Errorf("inference.refresh: %w", err)
	}
	for _, o := range c.ops {
		if err := o.apply(ctx, tx); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("inference.refresh: %w", err)
		}
	}
	if err := c.tx.Rollback(ctx); err != nil {
		log.WithFields(log.Fields{"store": c.inf.store.Name(ctx)}).Warnf("Store rollback failed: %v", err)
	}
	c.tx, c.commits = tx, c.inf.commits.Load()
	metrics.refreshes.Inc()
	log.WithFields(log.Fields{"ops": len(c.ops), "level": c.level.String()}).Debug("Replayed transaction on the latest snapshot")
	return nil
}

// Rollback discards the changes of the transaction and any schema change it
// made.
func (c *Conn) Rollback(ctx context.Context) error {
	if !c.active {
		return ErrNotActive
	}
	err := c.tx.Rollback(ctx)
	metrics.rollbacksTotal.Inc()
	c.finish()
	if err != nil {
		return fmt.Errorf("inference.Rollback: %w", err)
	}
	return nil
}

// Close rolls back the connection if it is still active.
func (c *Conn) Close(ctx context.Context) error {
	if !c.active {
		return nil
	}
	return c.Rollback(ctx)
}

// abort rolls back after a failure, logging store errors.
func (c *Conn) abort(ctx context.Context) {
	if !c.active {
		return
	}
	if err := c.tx.Rollback(ctx); err != nil {
		log.WithFields(log.Fields{"store": c.inf.store.Name(ctx)}).Warnf("Store rollback failed: %v", err)
	}
	metrics.rollbacksTotal.Inc()
	c.finish()
}

func (c *Conn) finish() {
	c.active = false
	c.ticket.Release()
	c.staged, c.added, c.ops = nil, nil, nil
}
