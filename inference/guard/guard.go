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

// Package guard implements the read/upgrade/write protocol protecting the
// schema cache and its closure tables.
//
// Every transaction acquires a read ticket when it begins and releases it
// exactly once when it ends. A ticket is upgraded to write access the first
// time its transaction is about to mutate the schema. At most one ticket
// holds write access at a time.
//
// Two strategies are available. The optimistic one lets readers upgrade
// once every other reader is gone, and aborts upgrades with
// ErrConcurrentModification when no reader leaves for longer than the retry
// budget, which also breaks readers waiting on each other to upgrade. The pessimistic one never blocks readers and
// serializes writers on a single process-wide semaphore.
package guard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	// ErrConcurrentModification is returned when an upgrade could not be
	// granted because other transactions are concurrently trying to modify
	// the schema. The transaction must roll back; callers may retry it.
	ErrConcurrentModification = errors.New("concurrent schema modification")

	// ErrReadOnlySchema is returned when upgrading a guard configured for a
	// read-only schema.
	ErrReadOnlySchema = errors.New("schema is read-only")

	// ErrReleased is returned when upgrading a released ticket.
	ErrReleased = errors.New("guard: ticket already released")
)

// Strategy used to grant write access.
type Strategy uint8

const (
	// Optimistic upgrades read tickets in place with bounded retries.
	Optimistic Strategy = iota
	// Pessimistic serializes writers on a single exclusive lock.
	Pessimistic
)

// String returns the pretty printed strategy.
func (s Strategy) String() string {
	if s == Pessimistic {
		return "pessimistic"
	}
	return "optimistic"
}

// ParseStrategy returns the strategy for the provided name.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optimistic":
		return Optimistic, nil
	case "pessimistic":
		return Pessimistic, nil
	}
	return Optimistic, fmt.Errorf("guard.ParseStrategy: unknown strategy %q", s)
}

// Config of a guard.
type Config struct {
	Strategy Strategy

	// ReadOnly disables the write path entirely.
	ReadOnly bool

	// MaxAttempts bounds the number of backoff delays an optimistic upgrade
	// waits without seeing any other reader leave.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultConfig returns the default optimistic configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:     Optimistic,
		MaxAttempts:  10,
		InitialDelay: time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2,
		Jitter:       true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	return c
}

// Guard arbitrates read and write access to the schema.
type Guard struct {
	cfg Config
	sem chan struct{}

	mu         sync.Mutex
	changed    chan struct{}
	readers    int
	upgrading  int
	writer     *Ticket
	generation uint64
	rnd        *rand.Rand
}

// New returns a new guard.
func New(cfg Config) *Guard {
	return &Guard{
		cfg:     cfg.withDefaults(),
		sem:     make(chan struct{}, 1),
		changed: make(chan struct{}),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the configuration in use.
func (g *Guard) Config() Config {
	return g.cfg
}

// broadcast wakes up every waiter. Must be called with mu held.
func (g *Guard) broadcast() {
	close(g.changed)
	g.changed = make(chan struct{})
}

// Generation returns the current schema generation. It grows every time a
// writer that modified the schema releases its ticket.
func (g *Guard) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

// Readers returns the number of tickets holding read access.
func (g *Guard) Readers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readers
}

// Writing returns true if a ticket holds write access.
func (g *Guard) Writing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writer != nil
}

type state uint8

const (
	released state = iota
	reading
	writing
)

// Ticket is the access held by one transaction. Tickets are not safe for
// concurrent use.
type Ticket struct {
	g          *Guard
	state      state
	generation uint64
	dirty      bool
}

// AcquireRead returns a read ticket. Under the optimistic strategy it blocks
// while a writer holds or waits for write access.
func (g *Guard) AcquireRead(ctx context.Context) (*Ticket, error) {
	for {
		g.mu.Lock()
		if g.cfg.Strategy == Pessimistic || (g.writer == nil && g.upgrading == 0) {
			g.readers++
			t := &Ticket{g: g, state: reading, generation: g.generation}
			g.mu.Unlock()
			return t, nil
		}
		ch := g.changed
		g.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Generation returns the schema generation observed when the ticket was
// acquired.
func (t *Ticket) Generation() uint64 {
	return t.generation
}

// Writable returns true if the ticket holds write access.
func (t *Ticket) Writable() bool {
	return t.state == writing
}

// MarkModified records that the schema was modified under this ticket. The
// generation moves forward when the ticket is released.
func (t *Ticket) MarkModified() {
	t.dirty = true
}

// Upgrade turns the read ticket into a write ticket. Upgrading a write
// ticket is a no-op. On ErrConcurrentModification the ticket has already
// lost its read access.
func (t *Ticket) Upgrade(ctx context.Context) error {
	switch {
	case t.state == writing:
		return nil
	case t.state == released:
		return ErrReleased
	case t.g.cfg.ReadOnly:
		return ErrReadOnlySchema
	case t.g.cfg.Strategy == Pessimistic:
		return t.upgradePessimistic(ctx)
	}
	return t.upgradeOptimistic(ctx)
}

func (t *Ticket) upgradePessimistic(ctx context.Context) error {
	g := t.g
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readers--
	g.writer = t
	t.state = writing
	return nil
}

func (t *Ticket) upgradeOptimistic(ctx context.Context) error {
	g := t.g
	delay, attempts := g.cfg.InitialDelay, 0
	g.mu.Lock()
	g.upgrading++
	for {
		if g.writer == nil && g.readers == 1 {
			g.upgrading--
			g.readers--
			g.writer = t
			t.state = writing
			g.broadcast()
			g.mu.Unlock()
			return nil
		}
		if attempts >= g.cfg.MaxAttempts {
			g.upgrading--
			g.readers--
			t.state = released
			g.broadcast()
			g.mu.Unlock()
			return ErrConcurrentModification
		}
		ch := g.changed
		timer := time.NewTimer(g.jitter(delay))
		g.mu.Unlock()

		// Only a full delay without any reader leaving counts as an attempt.
		var err error
		select {
		case <-ch:
		case <-timer.C:
			attempts++
			if next := time.Duration(float64(delay) * g.cfg.Multiplier); next < g.cfg.MaxDelay {
				delay = next
			} else {
				delay = g.cfg.MaxDelay
			}
		case <-ctx.Done():
			err = ctx.Err()
		}
		timer.Stop()
		g.mu.Lock()
		if err != nil {
			g.upgrading--
			g.broadcast()
			g.mu.Unlock()
			return err
		}
	}
}

// jitter adds up to 25% to the delay. Must be called with mu held.
func (g *Guard) jitter(d time.Duration) time.Duration {
	if !g.cfg.Jitter || d < 4 {
		return d
	}
	return d + time.Duration(g.rnd.Int63n(int64(d/4)))
}

// Release gives the access back. It is safe to call more than once and on a
// ticket that lost its access on a failed upgrade.
func (t *Ticket) Release() {
	g := t.g
	switch t.state {
	case released:
		return
	case reading:
		g.mu.Lock()
		g.readers--
		g.broadcast()
		g.mu.Unlock()
	case writing:
		g.mu.Lock()
		g.writer = nil
		if t.dirty {
			g.generation++
		}
		g.broadcast()
		g.mu.Unlock()
		if g.cfg.Strategy == Pessimistic {
			<-g.sem
		}
	}
	t.state = released
}
