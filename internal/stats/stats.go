// Package stats keeps rolling latency windows for the render and import
// operations the API serves.
package stats

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp time.Time
	micros    int64
}

// Snapshot is a point-in-time aggregate of one operation's latency samples.
type Snapshot struct {
	Count int     `json:"count"`
	MinUs int64   `json:"min_us"`
	MaxUs int64   `json:"max_us"`
	AvgUs float64 `json:"avg_us"`
	P50Us float64 `json:"p50_us"`
	P95Us float64 `json:"p95_us"`
	P99Us float64 `json:"p99_us"`
}

// Recorder tracks recent latencies per operation. Each operation keeps at
// most maxSamples samples no older than maxAge.
type Recorder struct {
	mu         sync.Mutex
	samples    map[string][]sample
	maxSamples int
	maxAge     time.Duration
}

func NewRecorder(maxSamples int, maxAge time.Duration) *Recorder {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Recorder{
		samples:    make(map[string][]sample),
		maxSamples: maxSamples,
		maxAge:     maxAge,
	}
}

// Record adds one sample for op. Negative durations count as zero.
func (s *Recorder) Record(op string, d time.Duration) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	list := prune(s.samples[op], now.Add(-s.maxAge))
	list = append(list, sample{timestamp: now, micros: us})
	if over := len(list) - s.maxSamples; over > 0 {
		list = append(list[:0], list[over:]...)
	}
	s.samples[op] = list
}

// Since records the time elapsed since start. Use with defer.
func (s *Recorder) Since(op string, start time.Time) {
	s.Record(op, time.Since(start))
}

// Snapshot aggregates every operation that has samples in the window.
func (s *Recorder) Snapshot() map[string]Snapshot {
	cutoff := time.Now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Snapshot, len(s.samples))
	for op, list := range s.samples {
		list = prune(list, cutoff)
		s.samples[op] = list
		if len(list) == 0 {
			continue
		}
		out[op] = aggregate(list)
	}
	return out
}

func aggregate(list []sample) Snapshot {
	values := make([]int64, 0, len(list))
	var sum int64
	for _, sm := range list {
		values = append(values, sm.micros)
		sum += sm.micros
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return Snapshot{
		Count: len(values),
		MinUs: values[0],
		MaxUs: values[len(values)-1],
		AvgUs: float64(sum) / float64(len(values)),
		P50Us: percentile(values, 50),
		P95Us: percentile(values, 95),
		P99Us: percentile(values, 99),
	}
}

// prune drops samples older than cutoff, reusing list's storage.
func prune(list []sample, cutoff time.Time) []sample {
	n := 0
	for _, sm := range list {
		if !sm.timestamp.Before(cutoff) {
			list[n] = sm
			n++
		}
	}
	return list[:n]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
