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

// Package benchmark runs a set of canned benchmarks against the inferencer.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/rdfsinfer/inference"
	"github.com/google/rdfsinfer/storage/memory"
	"github.com/google/rdfsinfer/tools/benchmark/batteries"
	"github.com/google/rdfsinfer/tools/benchmark/runtime"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/common"
	"github.com/spf13/cobra"
)

// New creates the benchmark command.
func New(env *common.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "benchmark",
		Short: "runs a set of precanned benchmarks.",
		Long: `Runs and prints the runtime statistics of a set of precanned benchmarks.
They include adding and removing class hierarchies, which recompute the
closure tables, and adding and removing data statements over a fixed schema.
Each benchmark runs against a fresh memory store configured with the
inference options of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := env.Config.Options()
			if err != nil {
				return err
			}
			f := func(ctx context.Context) (*inference.Inferencer, error) {
				inf := inference.New(memory.NewStore(), opts...)
				return inf, inf.Init(ctx)
			}
			return runAll(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
}

type battery struct {
	name string
	f    func(context.Context, batteries.Factory) ([]*runtime.BenchEntry, error)
}

// runAll executes all the canned benchmarks and prints out the stats.
func runAll(ctx context.Context, w io.Writer, f batteries.Factory) error {
	for _, b := range []battery{
		{"adding hierarchies", batteries.AddHierarchyBenchmark},
		{"adding data", batteries.AddDataBenchmark},
		{"adding existing data", batteries.AddExistingDataBenchmark},
		{"removing hierarchies", batteries.RemoveHierarchyBenchmark},
		{"removing data", batteries.RemoveDataBenchmark},
		{"removing missing data", batteries.RemoveMissingDataBenchmark},
	} {
		if err := runBattery(ctx, w, b, f); err != nil {
			return err
		}
	}
	return nil
}

func format(br *runtime.BenchResult) string {
	if br.Err != nil {
		return fmt.Sprintf("%20s - %35s -[ERROR] %v", br.BatteryID, br.ID, br.Err)
	}
	tps := float64(br.Triples) / (float64(br.Mean) / float64(time.Second))
	return fmt.Sprintf("%20s - %35s - %05.2f triples/sec - %v/%v", br.BatteryID, br.ID, tps, br.Mean, br.StdDev)
}

func printSorted(w io.Writer, title string, brs []*runtime.BenchResult) {
	fmt.Fprintln(w, title)
	var ss []string
	for _, br := range brs {
		ss = append(ss, format(br))
	}
	sort.Strings(ss)
	for _, s := range ss {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
}

// runBattery creates and runs one battery, first sequentially and then
// concurrently.
func runBattery(ctx context.Context, w io.Writer, b battery, f batteries.Factory) error {
	fmt.Fprintf(w, "Creating %s benchmark... ", b.name)
	bes, err := b.f(ctx, f)
	if err != nil {
		return fmt.Errorf("creating %s benchmark: %w", b.name, err)
	}
	fmt.Fprintf(w, "%d entries created\n", len(bes))

	fmt.Fprintf(w, "Run %s benchmark sequentially... ", b.name)
	ts := time.Now()
	brs := runtime.RunBenchmarkBatterySequentially(bes)
	fmt.Fprintf(w, "(%v) done\n", time.Since(ts))

	fmt.Fprintf(w, "Run %s benchmark concurrently... ", b.name)
	tc := time.Now()
	brc := runtime.RunBenchmarkBatteryConcurrently(bes)
	fmt.Fprintf(w, "(%v) done\n\n", time.Since(tc))

	printSorted(w, fmt.Sprintf("Stats for sequentially run %s benchmark", b.name), brs)
	printSorted(w, fmt.Sprintf("Stats for concurrently run %s benchmark", b.name), brc)
	return nil
}
