// Copyright 2016 Google Inc. All rights reserved.
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

// Package common contains the environment shared by the rdfs commands.
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/rdfsinfer/config"
	"github.com/google/rdfsinfer/inference"
	rio "github.com/google/rdfsinfer/io"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/storage/memory"
	"github.com/google/rdfsinfer/triple/literal"
	log "github.com/sirupsen/logrus"
)

// Env is the state shared by every command once the store is open.
type Env struct {
	Config     *config.Config
	Store      storage.Store
	Inferencer *inference.Inferencer
}

// Open opens the configured store and initializes its inferencer.
func (e *Env) Open(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ConfigureLogger(log.StandardLogger()); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if p := cfg.Inference.PredefinedSchema; p != "" {
		tbox, err := LoadStore(ctx, p)
		if err != nil {
			return fmt.Errorf("predefined schema %q: %w", p, err)
		}
		opts = append(opts, inference.WithPredefinedSchema(tbox))
	}
	s, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	inf := inference.New(s, opts...)
	if err := inf.Init(ctx); err != nil {
		s.Close(ctx)
		return err
	}
	e.Config, e.Store, e.Inferencer = cfg, s, inf
	return nil
}

// Close closes the store, if open.
func (e *Env) Close(ctx context.Context) error {
	if e.Store == nil {
		return nil
	}
	err := e.Store.Close(ctx)
	e.Store, e.Inferencer = nil, nil
	return err
}

// IsNQuads returns true if the file extension names an N-Quads or
// N-Triples file.
func IsNQuads(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nq", ".nt":
		return true
	}
	return false
}

// ReadFile adds the statements stored in the file. The format is picked
// from the file extension.
func ReadFile(ctx context.Context, a rio.Adder, path string, b literal.Builder) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if IsNQuads(path) {
		return rio.ReadNQuads(ctx, a, f, b)
	}
	return rio.ReadTriples(ctx, a, f, b)
}

// LoadStore returns a memory store holding the statements of the file.
func LoadStore(ctx context.Context, path string) (storage.Store, error) {
	s := memory.NewStore()
	tx, err := s.Begin(ctx, storage.ReadCommitted)
	if err != nil {
		return nil, err
	}
	if _, err := ReadFile(ctx, tx, path, literal.DefaultBuilder()); err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
