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

// Package load contains the command allowing to bulk load statements into
// the store.
package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/common"
	"github.com/google/rdfsinfer/triple/literal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// New creates the load command.
func New(env *common.Env) *cobra.Command {
	var (
		builderSize int
		retries     int
	)
	cmd := &cobra.Command{
		Use:   "load <file_path>...",
		Short: "load statements in bulk stored in files.",
		Long: `Loads all the statements stored in the provided files and forward chains
them. Files ending in .nq or .nt are read as N-Quads; any other file is read
as one tab separated statement per line, where lines starting with # are
comments. Each file is loaded in its own transaction.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lb := literal.DefaultBuilder()
			if builderSize > 0 {
				lb = literal.NewBoundedBuilder(builderSize)
			}
			for _, path := range args {
				cnt, err := Eval(cmd.Context(), env.Inferencer, path, lb, retries)
				if err != nil {
					return fmt.Errorf("failed to load %q: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully loaded %d statements from file %q.\n", cnt, path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&builderSize, "builder-size", 0, "maximum size of literals; 0 means unbounded")
	cmd.Flags().IntVar(&retries, "retries", 3, "number of times a file is loaded again after a concurrent schema modification")
	return cmd
}

// Eval loads the file in a single transaction and returns the number of
// statements loaded.
func Eval(ctx context.Context, inf *inference.Inferencer, path string, lb literal.Builder, retries int) (int, error) {
	for attempt := 0; ; attempt++ {
		c, err := inf.Begin(ctx, storage.ReadCommitted)
		if err != nil {
			return 0, err
		}
		cnt, err := common.ReadFile(ctx, c, path, lb)
		if err == nil {
			err = c.Commit(ctx)
		}
		c.Close(ctx)
		if errors.Is(err, inference.ErrConcurrentModification) && attempt < retries {
			log.WithFields(log.Fields{"file": path, "attempt": attempt + 1}).Info("Loading again after a concurrent schema modification")
			continue
		}
		return cnt, err
	}
}
