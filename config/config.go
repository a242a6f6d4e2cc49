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

// Package config loads the configuration of the inference engine and its
// store from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/inference/guard"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/storage/badgerdb"
	"github.com/google/rdfsinfer/storage/memory"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Supported store drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
)

// DefaultConfig is the configuration used when no file is provided.
const DefaultConfig = `
[store]
# memory or badger
driver = "memory"
# badger data directory
path = ""
in-memory = false
# badger writes per transaction before the rest is batched at commit, 0 for
# as many as badger takes
max-txn-writes = 0
# read-committed, snapshot-read, snapshot or serializable
isolation = "read-committed"

[inference]
use-all-rules = true
inferred-in-default-context = false
# file of statements used as the only source of schema statements
predefined-schema = ""

[inference.guard]
# optimistic or pessimistic
strategy = "optimistic"
max-attempts = 10
initial-delay = "1ms"
max-delay = "100ms"
multiplier = 2.0
jitter = true

[log]
# debug, info, warn, error
level = "info"
# text or json
format = "text"
`

// Config is the configuration of a store and its inferencer.
type Config struct {
	Store     Store     `toml:"store" yaml:"store"`
	Inference Inference `toml:"inference" yaml:"inference"`
	Log       Log       `toml:"log" yaml:"log"`
}

// Store selects and configures the store driver.
type Store struct {
	Driver       string `toml:"driver" yaml:"driver"`
	Path         string `toml:"path" yaml:"path"`
	InMemory     bool   `toml:"in-memory" yaml:"in-memory"`
	MaxTxnWrites int    `toml:"max-txn-writes" yaml:"max-txn-writes"`
	Isolation    string `toml:"isolation" yaml:"isolation"`
}

// Inference configures the inferencer.
type Inference struct {
	UseAllRules              bool   `toml:"use-all-rules" yaml:"use-all-rules"`
	InferredInDefaultContext bool   `toml:"inferred-in-default-context" yaml:"inferred-in-default-context"`
	PredefinedSchema         string `toml:"predefined-schema" yaml:"predefined-schema"`
	Guard                    Guard  `toml:"guard" yaml:"guard"`
}

// Guard configures schema write access. Delays are Go durations.
type Guard struct {
	Strategy     string  `toml:"strategy" yaml:"strategy"`
	MaxAttempts  int     `toml:"max-attempts" yaml:"max-attempts"`
	InitialDelay string  `toml:"initial-delay" yaml:"initial-delay"`
	MaxDelay     string  `toml:"max-delay" yaml:"max-delay"`
	Multiplier   float64 `toml:"multiplier" yaml:"multiplier"`
	Jitter       bool    `toml:"jitter" yaml:"jitter"`
}

// Log configures logrus.
type Log struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	c := &Config{}
	if _, err := toml.Decode(DefaultConfig, c); err != nil {
		panic(fmt.Sprintf("config: invalid default configuration: %v", err))
	}
	return c
}

// Load reads the configuration file at path on top of the defaults. Files
// ending in .yaml or .yml are read as YAML, anything else as TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", path, err)
	}
	format := "toml"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", path, err)
	}
	return c, nil
}

// Parse decodes the configuration in the provided format, toml or yaml, on
// top of the defaults and validates it.
func Parse(data []byte, format string) (*Config, error) {
	c := Default()
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return nil, err
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys %v", keys)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every value can be used.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			return fmt.Errorf("config: the badger driver requires a path or in-memory")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.MaxTxnWrites < 0 {
		return fmt.Errorf("config: max-txn-writes must not be negative, got %d", c.Store.MaxTxnWrites)
	}
	if _, err := c.IsolationLevel(); err != nil {
		return err
	}
	if _, err := c.GuardConfig(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// IsolationLevel returns the isolation level transactions request.
func (c *Config) IsolationLevel() (storage.IsolationLevel, error) {
	l, err := storage.ParseIsolationLevel(c.Store.Isolation)
	if err != nil {
		return l, fmt.Errorf("config: %w", err)
	}
	return l, nil
}

func duration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

// GuardConfig returns the concurrency guard configuration.
func (c *Config) GuardConfig() (guard.Config, error) {
	g := c.Inference.Guard
	s, err := guard.ParseStrategy(g.Strategy)
	if err != nil {
		return guard.Config{}, fmt.Errorf("config: %w", err)
	}
	initial, err := duration("initial-delay", g.InitialDelay)
	if err != nil {
		return guard.Config{}, err
	}
	max, err := duration("max-delay", g.MaxDelay)
	if err != nil {
		return guard.Config{}, err
	}
	if g.MaxAttempts < 0 {
		return guard.Config{}, fmt.Errorf("config: max-attempts cannot be negative, got %d", g.MaxAttempts)
	}
	return guard.Config{
		Strategy:     s,
		MaxAttempts:  g.MaxAttempts,
		InitialDelay: initial,
		MaxDelay:     max,
		Multiplier:   g.Multiplier,
		Jitter:       g.Jitter,
	}, nil
}

// Options returns the inferencer options. The predefined schema, if any, is
// provided separately by the caller since it requires reading a file.
func (c *Config) Options() ([]inference.Option, error) {
	g, err := c.GuardConfig()
	if err != nil {
		return nil, err
	}
	l, err := c.IsolationLevel()
	if err != nil {
		return nil, err
	}
	return []inference.Option{
		inference.WithAllRules(c.Inference.UseAllRules),
		inference.WithInferredInDefaultContext(c.Inference.InferredInDefaultContext),
		inference.WithGuard(g),
		inference.WithIsolationLevel(l),
	}, nil
}

// OpenStore opens the configured store.
func (c *Config) OpenStore() (storage.Store, error) {
	switch c.Store.Driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverBadger:
		return badgerdb.Open(badgerdb.Options{
			Path:         c.Store.Path,
			InMemory:     c.Store.InMemory,
			MaxTxnWrites: c.Store.MaxTxnWrites,
		})
	}
	return nil, fmt.Errorf("config.OpenStore: unknown store driver %q", c.Store.Driver)
}

// ConfigureLogger applies the log level and format to the logger.
func (c *Config) ConfigureLogger(l *log.Logger) error {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	l.SetLevel(lvl)
	if c.Log.Format == "json" {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
