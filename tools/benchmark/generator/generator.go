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

// Package generator contains the interface shared by the benchmark data
// generators.
package generator

import "github.com/google/rdfsinfer/triple"

// Generator produces synthetic statements.
type Generator interface {
	// Generate returns n statements.
	Generate(n int) ([]*triple.Triple, error)
}
