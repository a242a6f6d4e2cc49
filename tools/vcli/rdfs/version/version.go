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

// Package version contains the command printing the current version.
package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// Major is the major version.
	Major = 0
	// Minor is the minor version.
	Minor = 2
	// Patch is the patch version.
	Patch = 0
	// Release is the release label.
	Release = "alpha"
)

// New creates the version command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the current version.",
		Long:  "Prints the current version of the rdfs command line tool.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rdfs vCli (%d.%d.%d-%s)\n", Major, Minor, Patch, Release)
		},
	}
}
