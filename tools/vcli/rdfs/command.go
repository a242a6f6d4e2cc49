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

package main

import (
	"github.com/google/rdfsinfer/config"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/benchmark"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/closure"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/common"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/export"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/load"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/version"
	"github.com/spf13/cobra"
)

// flags overriding the configuration file.
type flags struct {
	config   string
	logLevel string
	driver   string
	path     string
}

func (f *flags) load() (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		c, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.driver != "" {
		cfg.Store.Driver = f.driver
	}
	if f.path != "" {
		cfg.Store.Path = f.path
	}
	return cfg, cfg.Validate()
}

func newRootCommand() *cobra.Command {
	var (
		f   flags
		env common.Env
	)
	root := &cobra.Command{
		Use:           "rdfs",
		Short:         "RDFS forward chaining over a triple store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := f.load()
			if err != nil {
				return err
			}
			return env.Open(cmd.Context(), cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.Close(cmd.Context())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "TOML or YAML configuration file")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&f.driver, "driver", "", "store driver: memory or badger")
	pf.StringVar(&f.path, "path", "", "badger data directory")

	root.AddCommand(
		load.New(&env),
		export.New(&env),
		closure.New(&env),
		benchmark.New(&env),
		version.New(),
	)
	return root
}
