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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/rdfsinfer/inference/guard"
	"github.com/google/rdfsinfer/storage"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, DriverMemory, c.Store.Driver)
	assert.True(t, c.Inference.UseAllRules)
	assert.False(t, c.Inference.InferredInDefaultContext)

	g, err := c.GuardConfig()
	require.NoError(t, err)
	assert.Equal(t, guard.DefaultConfig(), g)

	l, err := c.IsolationLevel()
	require.NoError(t, err)
	assert.Equal(t, storage.ReadCommitted, l)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 4)
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "rdfs.toml", `
[store]
driver = "badger"
path = "/var/lib/rdfs"
isolation = "snapshot"

[inference]
use-all-rules = false

[inference.guard]
strategy = "pessimistic"
max-delay = "1s"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverBadger, c.Store.Driver)
	assert.Equal(t, "/var/lib/rdfs", c.Store.Path)
	assert.False(t, c.Inference.UseAllRules)

	g, err := c.GuardConfig()
	require.NoError(t, err)
	assert.Equal(t, guard.Pessimistic, g.Strategy)
	assert.Equal(t, time.Second, g.MaxDelay)
	assert.Equal(t, time.Millisecond, g.InitialDelay, "unset values keep their defaults")

	l, err := c.IsolationLevel()
	require.NoError(t, err)
	assert.Equal(t, storage.Snapshot, l)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "rdfs.yaml", `
store:
  driver: memory
inference:
  inferred-in-default-context: true
  guard:
    max-attempts: 3
log:
  level: debug
  format: json
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Inference.InferredInDefaultContext)
	assert.Equal(t, 3, c.Inference.Guard.MaxAttempts)

	l := log.New()
	require.NoError(t, c.ConfigureLogger(l))
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, l.Formatter)
}

func TestInvalid(t *testing.T) {
	table := []struct {
		name, format, data string
	}{
		{"unknown driver", "toml", "[store]\ndriver = \"sql\""},
		{"badger without path", "toml", "[store]\ndriver = \"badger\""},
		{"unknown isolation", "toml", "[store]\nisolation = \"eventual\""},
		{"unknown strategy", "yaml", "inference:\n  guard:\n    strategy: fifo"},
		{"bad duration", "yaml", "inference:\n  guard:\n    initial-delay: soon"},
		{"negative attempts", "toml", "[inference.guard]\nmax-attempts = -1"},
		{"negative batch threshold", "toml", "[store]\nmax-txn-writes = -1"},
		{"bad log level", "toml", "[log]\nlevel = \"loud\""},
		{"bad log format", "toml", "[log]\nformat = \"xml\""},
		{"unknown key", "toml", "[store]\ncolor = \"blue\""},
		{"unknown format", "ini", ""},
	}
	for _, tc := range table {
		_, err := Parse([]byte(tc.data), tc.format)
		assert.Error(t, err, tc.name)
	}
}

func TestOpenStore(t *testing.T) {
	c := Default()
	s, err := c.OpenStore()
	require.NoError(t, err)
	assert.Equal(t, "MEMORY_STORE", s.Name(context.Background()))

	c.Store.Driver, c.Store.InMemory, c.Store.MaxTxnWrites = DriverBadger, true, 1000
	s, err = c.OpenStore()
	require.NoError(t, err)
	assert.Equal(t, "BADGER_STORE", s.Name(context.Background()))
	require.NoError(t, s.Close(context.Background()))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
