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

// Package io provides basic tools to read and write statements from and to
// files, either one triple per line in the pretty printed triple format or
// as N-Quads.
package io

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/triple"
	"github.com/google/rdfsinfer/triple/literal"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/google/rdfsinfer/triple/predicate"
	"golang.org/x/sync/errgroup"
)

// batchSize is the number of statements added per AddTriples call.
const batchSize = 1000

// Adder is implemented by anything accepting explicit statements, such as
// storage.Txn and inference.Conn.
type Adder interface {
	AddTriples(ctx context.Context, ts []*triple.Triple) error
}

// Source is implemented by anything able to list statements, such as
// storage.Txn and inference.Conn.
type Source interface {
	Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error
}

type batcher struct {
	a   Adder
	buf []*triple.Triple
	cnt int
}

func (b *batcher) add(ctx context.Context, t *triple.Triple) error {
	b.buf = append(b.buf, t)
	if len(b.buf) < batchSize {
		return nil
	}
	return b.flush(ctx)
}

func (b *batcher) flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := b.a.AddTriples(ctx, b.buf); err != nil {
		return err
	}
	b.cnt += len(b.buf)
	b.buf = b.buf[:0]
	return nil
}

// ReadTriples reads statements out of the provided reader. Each line holds
// one triple in its pretty printed form; empty lines and lines starting with
// # are skipped. ReadTriples stops on the first line it fails to parse. It
// returns the number of statements added.
func ReadTriples(ctx context.Context, a Adder, r io.Reader, b literal.Builder) (int, error) {
	bt, scanner, ln := &batcher{a: a}, bufio.NewScanner(r), 0
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		ln++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := triple.Parse(text, b)
		if err != nil {
			return bt.cnt, fmt.Errorf("io.ReadTriples: line %d: %v", ln, err)
		}
		if err := bt.add(ctx, t); err != nil {
			return bt.cnt, err
		}
	}
	if err := scanner.Err(); err != nil {
		return bt.cnt, err
	}
	return bt.cnt, bt.flush(ctx)
}

// each pushes the statements selected by lo through fn.
func each(ctx context.Context, src Source, lo *storage.LookupOptions, fn func(t *triple.Triple) error) error {
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan *triple.Triple)
	g.Go(func() error {
		return src.Triples(gctx, lo, ch)
	})
	var err error
	for t := range ch {
		if err != nil {
			continue
		}
		err = fn(t)
	}
	if gerr := g.Wait(); gerr != nil && err == nil {
		err = gerr
	}
	return err
}

// WriteTriples serializes the selected statements into the writer, one per
// line. It returns the number of statements written regardless of whether
// it succeeded or failed partially.
func WriteTriples(ctx context.Context, w io.Writer, src Source, lo *storage.LookupOptions) (int, error) {
	cnt := 0
	err := each(ctx, src, lo, func(t *triple.Triple) error {
		if _, err := io.WriteString(w, t.String()+"\n"); err != nil {
			return err
		}
		cnt++
		return nil
	})
	return cnt, err
}

// ReadNQuads reads N-Quads statements out of the provided reader and adds
// them. It stops on the first statement it fails to parse or convert and
// returns the number of statements added.
func ReadNQuads(ctx context.Context, a Adder, r io.Reader, b literal.Builder) (int, error) {
	bt, qr := &batcher{a: a}, nquads.NewReader(r, true)
	for {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bt.cnt, fmt.Errorf("io.ReadNQuads: %v", err)
		}
		t, err := FromQuad(q, b)
		if err != nil {
			return bt.cnt, err
		}
		if err := bt.add(ctx, t); err != nil {
			return bt.cnt, err
		}
	}
	return bt.cnt, bt.flush(ctx)
}

// WriteNQuads serializes the selected statements into the writer as
// N-Quads. It returns the number of statements written.
func WriteNQuads(ctx context.Context, w io.Writer, src Source, lo *storage.LookupOptions) (int, error) {
	cnt, qw := 0, nquads.NewWriter(w)
	err := each(ctx, src, lo, func(t *triple.Triple) error {
		if err := qw.WriteQuad(ToQuad(t)); err != nil {
			return err
		}
		cnt++
		return nil
	})
	if cerr := qw.Close(); err == nil {
		err = cerr
	}
	return cnt, err
}

func toNode(v quad.Value) (*node.Node, error) {
	switch v := v.(type) {
	case quad.IRI:
		return node.NewIRI(string(v))
	case quad.BNode:
		return node.NewBlank(string(v))
	}
	return nil, fmt.Errorf("io.FromQuad: %v is not a resource", v)
}

// FromQuad converts a quad into a triple. The quad label, if any, becomes
// the triple context.
func FromQuad(q quad.Quad, b literal.Builder) (*triple.Triple, error) {
	s, err := toNode(q.Subject)
	if err != nil {
		return nil, err
	}
	pn, ok := q.Predicate.(quad.IRI)
	if !ok {
		return nil, fmt.Errorf("io.FromQuad: predicate %v is not an IRI", q.Predicate)
	}
	p, err := predicate.New(string(pn))
	if err != nil {
		return nil, err
	}
	var o *triple.Object
	switch v := q.Object.(type) {
	case quad.IRI, quad.BNode:
		n, err := toNode(v)
		if err != nil {
			return nil, err
		}
		o = triple.NewNodeObject(n)
	case quad.String:
		l, err := b.Build(string(v), "", "")
		if err != nil {
			return nil, err
		}
		o = triple.NewLiteralObject(l)
	case quad.TypedString:
		l, err := b.Build(string(v.Value), string(v.Type), "")
		if err != nil {
			return nil, err
		}
		o = triple.NewLiteralObject(l)
	case quad.LangString:
		l, err := b.Build(string(v.Value), "", v.Lang)
		if err != nil {
			return nil, err
		}
		o = triple.NewLiteralObject(l)
	default:
		return nil, fmt.Errorf("io.FromQuad: unsupported object %v", q.Object)
	}
	var c *node.Node
	if q.Label != nil {
		if c, err = toNode(q.Label); err != nil {
			return nil, err
		}
	}
	return triple.NewInContext(s, p, o, c)
}

func fromNode(n *node.Node) quad.Value {
	if n.IsBlank() {
		return quad.BNode(n.ID())
	}
	return quad.IRI(n.ID())
}

// ToQuad converts a triple into a quad.
func ToQuad(t *triple.Triple) quad.Quad {
	q := quad.Quad{
		Subject:   fromNode(t.S()),
		Predicate: quad.IRI(t.P().ID()),
	}
	if n, err := t.O().Node(); err == nil {
		q.Object = fromNode(n)
	} else if l, err := t.O().Literal(); err == nil {
		switch {
		case l.Lang() != "":
			q.Object = quad.LangString{Value: quad.String(l.Lexical()), Lang: l.Lang()}
		case l.Datatype() == literal.XSDString:
			q.Object = quad.String(l.Lexical())
		default:
			q.Object = quad.TypedString{Value: quad.String(l.Lexical()), Type: quad.IRI(l.Datatype())}
		}
	}
	if c := t.C(); c != nil {
		q.Label = fromNode(c)
	}
	return q
}
