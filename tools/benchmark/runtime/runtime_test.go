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

package runtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// useClock makes timeNow return start and end times for each of the
// provided durations in turn, then keep ticking one second at a time.
func useClock(t *testing.T, ds ...time.Duration) {
	var (
		mu    sync.Mutex
		now   = time.Unix(0, 0)
		ticks []time.Time
	)
	for _, d := range ds {
		ticks = append(ticks, now, now.Add(d))
		now = now.Add(d)
	}
	old := timeNow
	timeNow = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		if len(ticks) > 0 {
			tk := ticks[0]
			ticks = ticks[1:]
			return tk
		}
		now = now.Add(time.Second)
		return now
	}
	t.Cleanup(func() { timeNow = old })
}

func TestTrackDuration(t *testing.T) {
	useClock(t, 3*time.Second, 5*time.Second)
	d, err := TrackDuration(func() error { return nil })
	if err != nil || d != 3*time.Second {
		t.Errorf("TrackDuration returned (%v, %v); want (%v, <nil>)", d, err, 3*time.Second)
	}
	want := errors.New("boom")
	if d, err := TrackDuration(func() error { return want }); err != want || d != 5*time.Second {
		t.Errorf("TrackDuration returned (%v, %v); want (%v, %v)", d, err, 5*time.Second, want)
	}
}

func TestRepetitionDurationStats(t *testing.T) {
	table := []struct {
		ds           []time.Duration
		mean, stddev time.Duration
	}{
		{[]time.Duration{time.Second}, time.Second, 0},
		{[]time.Duration{time.Second, 3 * time.Second}, 2 * time.Second, time.Second},
		{[]time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}, 2 * time.Second, 0},
	}
	for _, tc := range table {
		useClock(t, tc.ds...)
		var setups, teardowns int
		mean, stddev, err := RepetitionDurationStats(len(tc.ds),
			func() error { setups++; return nil },
			func() error { return nil },
			func() error { teardowns++; return nil })
		if err != nil {
			t.Fatalf("RepetitionDurationStats(%v) failed with error %v", tc.ds, err)
		}
		if mean != tc.mean || stddev != tc.stddev {
			t.Errorf("RepetitionDurationStats(%v) = (%v, %v); want (%v, %v)", tc.ds, mean, stddev, tc.mean, tc.stddev)
		}
		if setups != len(tc.ds) || teardowns != len(tc.ds) {
			t.Errorf("RepetitionDurationStats(%v) ran %d setups and %d teardowns; want %d of each", tc.ds, setups, teardowns, len(tc.ds))
		}
	}
}

func TestRepetitionDurationStatsErrors(t *testing.T) {
	useClock(t)
	ok := func() error { return nil }
	fail := func() error { return errors.New("boom") }
	if _, _, err := RepetitionDurationStats(0, ok, ok, ok); err == nil {
		t.Errorf("RepetitionDurationStats should reject zero repetitions")
	}
	for i, fs := range [][3]func() error{{fail, ok, ok}, {ok, fail, ok}, {ok, ok, fail}} {
		runs := 0
		f := func() error { runs++; return fs[1]() }
		if _, _, err := RepetitionDurationStats(5, fs[0], f, fs[2]); err == nil {
			t.Errorf("case %d: RepetitionDurationStats should propagate the error", i)
		}
		if runs > 1 {
			t.Errorf("case %d: the first error should stop the repetitions; ran %d times", i, runs)
		}
	}
}

func battery(n int) []*BenchEntry {
	var es []*BenchEntry
	for i := 0; i < n; i++ {
		e := &BenchEntry{
			BatteryID: "battery",
			ID:        fmt.Sprintf("entry %d", i),
			Triples:   i,
			Reps:      3,
			F:         func() error { return nil },
		}
		if i%7 == 3 {
			e.F = func() error { return errors.New("boom") }
		}
		es = append(es, e)
	}
	return es
}

func TestRunBenchmarkBattery(t *testing.T) {
	useClock(t)
	es := battery(50)
	for name, run := range map[string]func([]*BenchEntry) []*BenchResult{
		"RunBenchmarkBatterySequentially": RunBenchmarkBatterySequentially,
		"RunBenchmarkBatteryConcurrently": RunBenchmarkBatteryConcurrently,
	} {
		res := run(es)
		if got, want := len(res), len(es); got != want {
			t.Fatalf("%s returned %d results; want %d", name, got, want)
		}
		for i, r := range res {
			if r.BatteryID != es[i].BatteryID || r.ID != es[i].ID || r.Triples != es[i].Triples {
				t.Errorf("%s returned result %d for %q; want %q", name, i, r.ID, es[i].ID)
			}
			if got, want := r.Err != nil, i%7 == 3; got != want {
				t.Errorf("%s(%q) reported error %v; want error %v", name, r.ID, r.Err, want)
			}
			if r.Err == nil && r.Mean <= 0 {
				t.Errorf("%s(%q) reported mean %v; want a positive one", name, r.ID, r.Mean)
			}
		}
	}
}
