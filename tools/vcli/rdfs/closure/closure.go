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

// Package closure contains the command printing the closure tables the
// inferencer forward chains with.
package closure

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/rdfsinfer/inference/closure"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/common"
	"github.com/google/rdfsinfer/triple/node"
	"github.com/spf13/cobra"
)

// New creates the closure command.
func New(env *common.Env) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "closure",
		Short: "print the schema closure tables.",
		Long: `Prints the superclasses of every known class and the superproperties,
ranges and domains of every known property, as computed from the axioms and
the schema statements of the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := env.Inferencer.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if stats {
				types, properties, ranges, domains := snap.Tables().Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "types\t%d\nproperties\t%d\nranges\t%d\ndomains\t%d\n", types, properties, ranges, domains)
				return nil
			}
			Eval(cmd.OutOrStdout(), snap.Tables())
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "only print the size of each table")
	return cmd
}

func join(ns []*node.Node) string {
	ss := make([]string, 0, len(ns))
	for _, n := range ns {
		ss = append(ss, n.String())
	}
	return strings.Join(ss, " ")
}

// Eval writes the tables, one resource per line.
func Eval(w io.Writer, t *closure.Tables) {
	fmt.Fprintln(w, "# classes")
	for _, c := range t.Classes() {
		fmt.Fprintf(w, "%s\tsubClassOf\t%s\n", c, join(t.Types(c)))
	}
	fmt.Fprintln(w, "# properties")
	for _, p := range t.KnownProperties() {
		fmt.Fprintf(w, "%s\tsubPropertyOf\t%s\n", p, join(t.Properties(p)))
		if r := t.Range(p); len(r) > 0 {
			fmt.Fprintf(w, "%s\trange\t%s\n", p, join(r))
		}
		if d := t.Domain(p); len(d) > 0 {
			fmt.Fprintf(w, "%s\tdomain\t%s\n", p, join(d))
		}
	}
}
