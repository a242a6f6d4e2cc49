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

// Package export contains the command writing the stored statements out.
package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/rdfsinfer/inference"
	rio "github.com/google/rdfsinfer/io"
	"github.com/google/rdfsinfer/storage"
	"github.com/google/rdfsinfer/tools/vcli/rdfs/common"
	"github.com/spf13/cobra"
)

// New creates the export command.
func New(env *common.Env) *cobra.Command {
	var (
		explicit bool
		inferred bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export [file_path]",
		Short: "export the stored statements.",
		Long: `Writes the stored statements to the provided file, or to the standard
output if none is provided. Files ending in .nq or .nt are written as
N-Quads; anything else as one tab separated statement per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lo := storage.DefaultLookup
			switch {
			case explicit && inferred:
			case explicit:
				lo = storage.ExplicitLookup
			case inferred:
				lo = storage.InferredLookup
			}
			w, nquads := cmd.OutOrStdout(), output == "nquads"
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w, nquads = f, common.IsNQuads(args[0])
			}
			cnt, err := Eval(cmd.Context(), env.Inferencer, w, lo, nquads)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d statements.\n", cnt)
			return nil
		},
	}
	cmd.Flags().BoolVar(&explicit, "explicit", false, "only export explicit statements")
	cmd.Flags().BoolVar(&inferred, "inferred", false, "only export inferred statements")
	cmd.Flags().StringVar(&output, "format", "triples", "format used on the standard output: triples or nquads")
	return cmd
}

// Eval writes the selected statements and returns how many were written.
func Eval(ctx context.Context, inf *inference.Inferencer, w io.Writer, lo *storage.LookupOptions, nquads bool) (int, error) {
	c, err := inf.Begin(ctx, storage.ReadCommitted)
	if err != nil {
		return 0, err
	}
	defer c.Close(ctx)
	if nquads {
		return rio.WriteNQuads(ctx, w, c, lo)
	}
	return rio.WriteTriples(ctx, w, c, lo)
}
