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

// Package runtime contains common utilities used to meter time for
// benchmarks.
package runtime

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Use to allow injection of mock time Now during testing.
var timeNow = time.Now

// TrackDuration measures the duration of the function using the wall clock.
// The duration is meaningless if an error is returned.
func TrackDuration(f func() error) (time.Duration, error) {
	ts := timeNow()
	err := f()
	d := timeNow().Sub(ts)
	return d, err
}

// RepetitionDurationStats runs setup, f and teardown reps times and returns
// the mean and standard deviation of the duration of f. Only f is metered.
// The first error stops the repetitions.
func RepetitionDurationStats(reps int, setup, f, teardown func() error) (time.Duration, time.Duration, error) {
	if reps < 1 {
		return 0, 0, fmt.Errorf("runtime.RepetitionDurationStats: repetitions need to be %d >= 1", reps)
	}
	var durations []time.Duration
	for i := 0; i < reps; i++ {
		if err := setup(); err != nil {
			return 0, 0, err
		}
		d, err := TrackDuration(f)
		if err != nil {
			return 0, 0, err
		}
		if err := teardown(); err != nil {
			return 0, 0, err
		}
		durations = append(durations, d)
	}
	mean := 0.0
	for _, d := range durations {
		mean += float64(d)
	}
	mean /= float64(len(durations))
	variance := 0.0
	for _, d := range durations {
		variance += (float64(d) - mean) * (float64(d) - mean)
	}
	variance /= float64(len(durations))
	return time.Duration(mean), time.Duration(math.Sqrt(variance)), nil
}

// BenchEntry is one benchmark of a battery.
type BenchEntry struct {
	BatteryID string
	ID        string
	Triples   int
	Reps      int
	Setup     func() error
	F         func() error
	TearDown  func() error
}

// BenchResult holds the stats of running a benchmark entry.
type BenchResult struct {
	BatteryID string
	ID        string
	Triples   int
	Err       error
	Mean      time.Duration
	StdDev    time.Duration
}

func nop() error {
	return nil
}

func run(be *BenchEntry) *BenchResult {
	setup, teardown := be.Setup, be.TearDown
	if setup == nil {
		setup = nop
	}
	if teardown == nil {
		teardown = nop
	}
	m, d, err := RepetitionDurationStats(be.Reps, setup, be.F, teardown)
	return &BenchResult{
		BatteryID: be.BatteryID,
		ID:        be.ID,
		Triples:   be.Triples,
		Err:       err,
		Mean:      m,
		StdDev:    d,
	}
}

// RunBenchmarkBatterySequentially runs the entries one after the other.
func RunBenchmarkBatterySequentially(entries []*BenchEntry) []*BenchResult {
	var res []*BenchResult
	for _, be := range entries {
		res = append(res, run(be))
	}
	return res
}

// RunBenchmarkBatteryConcurrently runs all the entries at once. Results are
// returned in the order of the entries.
func RunBenchmarkBatteryConcurrently(entries []*BenchEntry) []*BenchResult {
	var (
		mu  sync.Mutex
		g   errgroup.Group
		res = make([]*BenchResult, len(entries))
	)
	for i, be := range entries {
		i, be := i, be
		g.Go(func() error {
			r := run(be)
			mu.Lock()
			res[i] = r
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return res
}
