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

// Package inference implements an RDFS forward chaining inferencer layered
// on a storage.Store.
//
// The inferencer caches the schema statements it sees and keeps the closure
// of the subclass, subproperty, range and domain relations in memory. Every
// explicit statement added through a Conn is forward chained through these
// tables, and the consequences are stored as inferred statements. When a
// transaction changes the schema or removes statements, every inferred
// statement is derived again from scratch when it commits.
//
// Schema changes stay private to their transaction until it commits; the
// schema cache and its closure tables are then published together. Commits
// deriving everything again run one at a time, and transactions that
// overlapped one of them derive everything again too.
package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/rdfsinfer/inference/axiom"
	"github.com/google/rdfsinfer/inference/closure"
	"github.com/google/rdfsinfer/inference/guard"
	"github.com/google/rdfsinfer/inference/schema"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/storage/notify"
	"github.com/google/rdfsinfer/triple"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrUnsupportedIsolation is returned when no isolation level supported
	// by the store is compatible with the requested one.
	ErrUnsupportedIsolation = errors.New("unsupported isolation level")

	// ErrNotActive is returned by operations on a committed, rolled back or
	// aborted connection.
	ErrNotActive = errors.New("inference: connection is not active")

	// ErrNotInitialized is returned when beginning a transaction before Init.
	ErrNotInitialized = errors.New("inference: inferencer is not initialized")

	// ErrConcurrentModification is returned when a transaction could not get
	// write access to the schema. The transaction has been rolled back and
	// may be retried.
	ErrConcurrentModification = guard.ErrConcurrentModification

	// ErrInvalidSchema is returned when a statement has a literal where the
	// RDFS vocabulary requires a resource.
	ErrInvalidSchema = schema.ErrInvalidSchema
)

type options struct {
	allRules       bool
	defaultContext bool
	guard          guard.Config
	level          storage.IsolationLevel
	predefined     storage.Store
	shared         *Snapshot
}

// Option configures an Inferencer.
type Option func(*options)

// WithAllRules enables or disables the rules typing every subject and
// resource object as rdfs:Resource. Enabled by default.
func WithAllRules(b bool) Option {
	return func(o *options) { o.allRules = b }
}

// WithInferredInDefaultContext stores inferred statements in the default
// graph instead of the graph of the statement they were derived from.
func WithInferredInDefaultContext(b bool) Option {
	return func(o *options) { o.defaultContext = b }
}

// WithGuard sets the configuration of the concurrency guard.
func WithGuard(cfg guard.Config) Option {
	return func(o *options) { o.guard = cfg }
}

// WithIsolationLevel sets the isolation level used by Init.
func WithIsolationLevel(l storage.IsolationLevel) Option {
	return func(o *options) { o.level = l }
}

// WithPredefinedSchema reads the schema once from the explicit statements of
// another store. Transactions never change the schema afterwards.
func WithPredefinedSchema(s storage.Store) Option {
	return func(o *options) { o.predefined = s }
}

// published is a committed schema cache and its closure tables. Neither is
// modified once published.
type published struct {
	cache  *schema.Cache
	tables *closure.Tables
}

// Inferencer owns the schema cache and the closure tables shared by every
// connection opened on a store.
type Inferencer struct {
	store storage.Store
	opts  options
	fixed bool
	guard *guard.Guard

	current atomic.Pointer[published]

	// commitMu is held exclusively by commits deriving every inferred
	// statement again, and shared by the others.
	commitMu   sync.RWMutex
	commits    atomic.Uint64
	rebuilds   atomic.Uint64
	generation atomic.Uint64

	initMu      sync.Mutex
	initialized atomic.Bool
}

// New returns an inferencer over the provided store. Init must be called
// before beginning transactions.
func New(s storage.Store, opts ...Option) *Inferencer {
	o := options{
		allRules: true,
		guard:    guard.DefaultConfig(),
		level:    storage.ReadCommitted,
	}
	for _, opt := range opts {
		opt(&o)
	}
	fixed := o.predefined != nil || o.shared != nil
	if fixed {
		o.guard.ReadOnly = true
	}
	i := &Inferencer{
		store: notify.New(s),
		opts:  o,
		fixed: fixed,
		guard: guard.New(o.guard),
	}
	i.current.Store(&published{cache: schema.New(), tables: closure.Empty()})
	return i
}

// NewFromSnapshot returns an inferencer over the provided store reusing the
// schema and closure tables of another inferencer. The schema is read-only.
func NewFromSnapshot(s storage.Store, snap *Snapshot, opts ...Option) *Inferencer {
	return New(s, append(opts, func(o *options) { o.shared = snap })...)
}

// Store returns the store transactions run against.
func (i *Inferencer) Store() storage.Store {
	return i.store
}

// Tables returns the closure tables currently in use.
func (i *Inferencer) Tables() *closure.Tables {
	return i.current.Load().tables
}

// Schema returns a copy of the schema cache content.
func (i *Inferencer) Schema() *schema.Snapshot {
	return i.current.Load().cache.Snapshot()
}

// ReadOnlySchema returns true if transactions cannot change the schema.
func (i *Inferencer) ReadOnlySchema() bool {
	return i.fixed
}

// Generation returns the number of committed schema changes.
func (i *Inferencer) Generation() uint64 {
	return i.generation.Load()
}

func (i *Inferencer) publish(c *schema.Cache, t *closure.Tables) {
	i.current.Store(&published{cache: c, tables: t})
	types, properties, ranges, domains := t.Stats()
	metrics.schemaSize.Set(float64(c.Size()))
	metrics.closureTableEntries.WithLabelValues("types").Set(float64(types))
	metrics.closureTableEntries.WithLabelValues("properties").Set(float64(properties))
	metrics.closureTableEntries.WithLabelValues("ranges").Set(float64(ranges))
	metrics.closureTableEntries.WithLabelValues("domains").Set(float64(domains))
}

func (i *Inferencer) chainer(tx storage.Txn, t *closure.Tables) *chainer {
	return &chainer{
		tx:             tx,
		tables:         t,
		allRules:       i.opts.allRules,
		defaultContext: i.opts.defaultContext,
	}
}

func begin(ctx context.Context, s storage.Store, l storage.IsolationLevel) (storage.Txn, error) {
	lvl, ok := storage.CompatibleLevel(l, s.SupportedIsolationLevels())
	if !ok {
		return nil, fmt.Errorf("%w: %v on %s", ErrUnsupportedIsolation, l, s.Name(ctx))
	}
	return s.Begin(ctx, lvl)
}

// Init stores the axioms, builds the schema cache and the closure tables,
// and derives the inferred statements of the data already stored. Calling
// Init again is a no-op.
func (i *Inferencer) Init(ctx context.Context) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "inference.Init")
	defer span.Finish()
	i.initMu.Lock()
	defer i.initMu.Unlock()
	if i.initialized.Load() {
		return nil
	}
	start := time.Now()
	tx, err := begin(ctx, i.store, i.opts.level)
	if err != nil {
		return fmt.Errorf("inference.Init: %w", err)
	}
	defer func() {
		if err != nil {
			span.SetTag("error", true)
			tx.Rollback(ctx)
		}
	}()
	if err := tx.AddTriples(ctx, axiom.Triples()); err != nil {
		return fmt.Errorf("inference.Init: %w", err)
	}

	var (
		cache  *schema.Cache
		tables *closure.Tables
	)
	switch {
	case i.opts.shared != nil:
		cache, tables = i.opts.shared.cache.Clone(), i.opts.shared.tables
	case i.opts.predefined != nil:
		ts, err := readExplicit(ctx, i.opts.predefined)
		if err != nil {
			return fmt.Errorf("inference.Init: predefined schema: %w", err)
		}
		cache, tables = buildSchema(ts)
	default:
		ts, err := storage.ReadAll(ctx, tx, storage.ExplicitLookup)
		if err != nil {
			return fmt.Errorf("inference.Init: %w", err)
		}
		cache, tables = buildSchema(ts)
		metrics.recomputes.Inc()
	}

	ch := i.chainer(tx, tables)
	if err := ch.rebuild(ctx); err != nil {
		return fmt.Errorf("inference.Init: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("inference.Init: %w", err)
	}
	metrics.inferredAdded.Add(float64(ch.added))
	i.publish(cache, tables)
	i.initialized.Store(true)
	log.WithFields(log.Fields{
		"store":    i.store.Name(ctx),
		"schema":   cache.Size(),
		"inferred": ch.added,
		"readOnly": i.fixed,
	}).Infof("Inferencer initialized in %v", time.Since(start))
	return nil
}

// readExplicit returns every explicit statement of the store.
func readExplicit(ctx context.Context, s storage.Store) ([]*triple.Triple, error) {
	tx, err := begin(ctx, s, storage.ReadCommitted)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	return storage.ReadAll(ctx, tx, storage.ExplicitLookup)
}

// recompute builds a new schema cache out of the explicit statements
// visible to the transaction and computes its closure tables.
func (i *Inferencer) recompute(ctx context.Context, tx storage.Txn) (*schema.Cache, *closure.Tables, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "inference.recompute")
	defer span.Finish()
	start := time.Now()
	ts, err := storage.ReadAll(ctx, tx, storage.ExplicitLookup)
	if err != nil {
		return nil, nil, fmt.Errorf("inference.recompute: %w", err)
	}
	cache, tables := buildSchema(ts)
	metrics.recomputes.Inc()
	metrics.recomputeLatency.Observe(time.Since(start).Seconds())
	log.WithFields(log.Fields{
		"explicit": len(ts),
		"schema":   cache.Size(),
	}).Debugf("Recomputed closure tables in %v", time.Since(start))
	return cache, tables, nil
}

// Snapshot is an immutable copy of the schema and closure tables of an
// inferencer.
type Snapshot struct {
	cache  *schema.Cache
	tables *closure.Tables
}

// Schema returns the schema content of the snapshot.
func (s *Snapshot) Schema() *schema.Snapshot {
	return s.cache.Snapshot()
}

// Tables returns the closure tables of the snapshot.
func (s *Snapshot) Tables() *closure.Tables {
	return s.tables
}

// Snapshot returns a consistent copy of the committed schema and closure
// tables.
func (i *Inferencer) Snapshot(ctx context.Context) (*Snapshot, error) {
	if !i.initialized.Load() {
		return nil, ErrNotInitialized
	}
	p := i.current.Load()
	return &Snapshot{cache: p.cache.Clone(), tables: p.tables}, nil
}
