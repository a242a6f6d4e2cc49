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

	"github.com/google/rdfsinfer/inference/axiom"
	"github.com/google/rdfsinfer/inference/closure"
	"github.com/google/rdfsinfer/inference/schema"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	"github.com/google/rdfsinfer/vocabulary"
	log "github.com/sirupsen/logrus"
)

// chainer forward chains statements through one set of closure tables and
// writes the consequences into a transaction.
type chainer struct {
	tx             storage.Txn
	tables         *closure.Tables
	allRules       bool
	defaultContext bool
	added          int
}

func (ch *chainer) infer(ctx context.Context, s *node.Node, p *predicate.Predicate, o *triple.Object, c *node.Node) error {
	t, err := triple.NewInContext(s, p, o, c)
	if err != nil {
		return err
	}
	ok, err := ch.tx.AddInferred(ctx, t)
	if err != nil {
		return err
	}
	if ok {
		ch.added++
	}
	return nil
}

func (ch *chainer) typeOf(ctx context.Context, s, class *node.Node, c *node.Node) error {
	if err := ch.infer(ctx, s, vocabulary.RDFType, triple.NewNodeObject(class), c); err != nil {
		return err
	}
	if ch.allRules && class.Equal(vocabulary.RDFSClass) {
		return ch.infer(ctx, s, vocabulary.RDFSSubClassOf, triple.NewNodeObject(vocabulary.RDFSResource), c)
	}
	return nil
}

// chain adds every statement t entails under the current tables.
func (ch *chainer) chain(ctx context.Context, t *triple.Triple) error {
	s, p, o := t.S(), t.P(), t.O()
	c := t.C()
	if ch.defaultContext {
		c = nil
	}
	obj, objErr := o.Node()
	pn := p.Node()

	if ch.allRules {
		if err := ch.typeOf(ctx, s, vocabulary.RDFSResource, c); err != nil {
			return err
		}
		if objErr == nil {
			if err := ch.typeOf(ctx, obj, vocabulary.RDFSResource, c); err != nil {
				return err
			}
		}
	}

	if vocabulary.IsContainerMembership(p) {
		if err := ch.infer(ctx, s, vocabulary.RDFSMember, o, c); err != nil {
			return err
		}
		for _, class := range []*node.Node{vocabulary.RDFSResource, vocabulary.RDFSContainerMembershipProperty, vocabulary.RDFProperty} {
			if err := ch.infer(ctx, pn, vocabulary.RDFType, triple.NewNodeObject(class), c); err != nil {
				return err
			}
		}
		for _, sup := range []*node.Node{pn, vocabulary.RDFSMember.Node()} {
			if err := ch.infer(ctx, pn, vocabulary.RDFSSubPropertyOf, triple.NewNodeObject(sup), c); err != nil {
				return err
			}
		}
	}

	if p.Equal(vocabulary.RDFType) {
		if objErr != nil {
			return fmt.Errorf("%w: object of %s should be a resource, got %s", schema.ErrInvalidSchema, p, o)
		}
		for _, class := range ch.tables.Types(obj) {
			if class.Equal(obj) {
				if ch.allRules && class.Equal(vocabulary.RDFSClass) {
					if err := ch.infer(ctx, s, vocabulary.RDFSSubClassOf, triple.NewNodeObject(vocabulary.RDFSResource), c); err != nil {
						return err
					}
				}
				continue
			}
			if err := ch.typeOf(ctx, s, class, c); err != nil {
				return err
			}
		}
	}

	for _, sup := range ch.tables.Properties(pn) {
		if sup.Equal(pn) {
			continue
		}
		sp, err := predicate.FromNode(sup)
		if err != nil {
			// Blank superproperties cannot be used as predicates.
			continue
		}
		if err := ch.infer(ctx, s, sp, o, c); err != nil {
			return err
		}
	}

	if objErr == nil {
		for _, class := range ch.tables.Range(pn) {
			if err := ch.typeOf(ctx, obj, class, c); err != nil {
				return err
			}
		}
	}
	for _, class := range ch.tables.Domain(pn) {
		if err := ch.typeOf(ctx, s, class, c); err != nil {
			return err
		}
	}
	return nil
}

// materialize asserts, in the default graph, the ancestors of every known
// class and property, themselves included, and types every known property.
func (ch *chainer) materialize(ctx context.Context) error {
	for _, c := range ch.tables.Classes() {
		for _, sup := range ch.tables.Types(c) {
			if err := ch.infer(ctx, c, vocabulary.RDFSSubClassOf, triple.NewNodeObject(sup), nil); err != nil {
				return err
			}
		}
	}
	for _, p := range ch.tables.KnownProperties() {
		if err := ch.infer(ctx, p, vocabulary.RDFType, triple.NewNodeObject(vocabulary.RDFProperty), nil); err != nil {
			return err
		}
		for _, sup := range ch.tables.Properties(p) {
			if err := ch.infer(ctx, p, vocabulary.RDFSSubPropertyOf, triple.NewNodeObject(sup), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// rebuild drops every inferred statement and derives them again from the
// explicit ones.
func (ch *chainer) rebuild(ctx context.Context) error {
	if err := ch.tx.ClearInferred(ctx); err != nil {
		return fmt.Errorf("inference.rebuild: %w", err)
	}
	if err := ch.materialize(ctx); err != nil {
		return fmt.Errorf("inference.rebuild: %w", err)
	}
	// Axioms removed by users come back as inferred statements.
	for _, t := range axiom.Triples() {
		if err := ch.infer(ctx, t.S(), t.P(), t.O(), nil); err != nil {
			return fmt.Errorf("inference.rebuild: %w", err)
		}
	}
	ts, err := storage.ReadAll(ctx, ch.tx, storage.ExplicitLookup)
	if err != nil {
		return fmt.Errorf("inference.rebuild: %w", err)
	}
	for _, t := range ts {
		if err := ch.chain(ctx, t); err != nil {
			if errors.Is(err, schema.ErrInvalidSchema) {
				log.WithFields(log.Fields{"statement": t.String()}).Warnf("Skipping invalid stored statement: %v", err)
				continue
			}
			return fmt.Errorf("inference.rebuild: %w", err)
		}
	}
	metrics.replayedStatements.Add(float64(len(ts)))
	log.WithFields(log.Fields{"explicit": len(ts), "inferred": ch.added}).Debug("Forward chained every explicit statement")
	return nil
}

// buildSchema routes the axioms and the provided statements into a new
// cache and computes its closure tables. Invalid statements are skipped.
func buildSchema(ts []*triple.Triple) (*schema.Cache, *closure.Tables) {
	cache := schema.New()
	for _, t := range axiom.Triples() {
		cache.Process(t)
	}
	for _, t := range ts {
		if _, err := cache.Process(t); err != nil {
			log.WithFields(log.Fields{"statement": t.String()}).Warnf("Skipping invalid schema statement: %v", err)
		}
	}
	return cache, closure.Compute(cache.Snapshot())
}
