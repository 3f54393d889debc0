package profiling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU profiler for subsystem timings. Totals accumulate under a
// name until ResetFrame; calls are counted alongside.

type entry struct {
	total time.Duration
	calls int
}

var (
	mu     sync.Mutex
	totals = make(map[string]*entry)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		Add(name, time.Since(start))
	}
}

// Add records an externally measured duration.
func Add(name string, d time.Duration) {
	mu.Lock()
	e, ok := totals[name]
	if !ok {
		e = &entry{}
		totals[name] = e
	}
	e.total += d
	e.calls++
	mu.Unlock()
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(totals))
	for k, v := range totals {
		out[k] = v.total
	}
	return out
}

// Calls returns how many times name was recorded this frame.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	if e, ok := totals[name]; ok {
		return e.calls
	}
	return 0
}

// SumWithPrefix totals every entry whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, v := range totals {
		if strings.HasPrefix(k, prefix) {
			sum += v.total
		}
	}
	return sum
}

// TopN formats the n most expensive entries of the current frame.
// Example: "renderer.Update:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	ss := Snapshot()
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	slices.SortFunc(list, func(a, b pair) int {
		if a.dur != b.dur {
			if a.dur > b.dur {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", p.name, float64(p.dur.Microseconds())/1000.0))
	}
	return strings.Join(parts, ", ")
}
