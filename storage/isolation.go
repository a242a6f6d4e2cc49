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

package storage

import (
	"fmt"
	"strings"
)

// IsolationLevel of a transaction. Levels are ordered from weakest to
// strongest; a stronger level honors every guarantee of a weaker one.
type IsolationLevel uint8

const (
	// None provides no isolation guarantees.
	None IsolationLevel = iota
	// ReadUncommitted may observe uncommitted changes of other transactions.
	ReadUncommitted
	// ReadCommitted only observes committed changes.
	ReadCommitted
	// SnapshotRead reads from a stable snapshot taken at begin.
	SnapshotRead
	// Snapshot reads from a snapshot and detects concurrent write conflicts.
	Snapshot
	// Serializable behaves as if transactions ran one after another.
	Serializable
)

var levelNames = []string{"NONE", "READ_UNCOMMITTED", "READ_COMMITTED", "SNAPSHOT_READ", "SNAPSHOT", "SERIALIZABLE"}

// String returns the pretty printed level.
func (l IsolationLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("ISOLATION_LEVEL(%d)", l)
}

// ParseIsolationLevel returns the level for the provided name. Names are
// case insensitive and accept '-' in place of '_'.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	name := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	for i, n := range levelNames {
		if n == name {
			return IsolationLevel(i), nil
		}
	}
	return None, fmt.Errorf("storage.ParseIsolationLevel: unknown isolation level %q", s)
}

// IsCompatibleWith returns true if a transaction running at l satisfies a
// request for other.
func (l IsolationLevel) IsCompatibleWith(other IsolationLevel) bool {
	return l >= other
}

// CompatibleLevel returns the weakest supported level that satisfies the
// requested one. It returns false if no supported level does.
func CompatibleLevel(requested IsolationLevel, supported []IsolationLevel) (IsolationLevel, bool) {
	best, found := None, false
	for _, l := range supported {
		if !l.IsCompatibleWith(requested) {
			continue
		}
		if !found || l < best {
			best, found = l, true
		}
	}
	return best, found
}
