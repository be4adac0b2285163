package rpcserver

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stats collects per-stage latency samples and request counters for the
// status RPCs. It maintains a bounded ring buffer of recent latency
// observations from which the rolling average and percentiles are computed on
// demand.
//
// Thread-safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	translate latencyBuffer
	batch     latencyBuffer
	recognize latencyBuffer

	requests int64
	failures int64
}

// NewStats creates a Stats with the given window size (maximum number of
// latency samples retained per stage).
func NewStats(windowSize int) *Stats {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &Stats{
		translate: newLatencyBuffer(windowSize),
		batch:     newLatencyBuffer(windowSize),
		recognize: newLatencyBuffer(windowSize),
	}
}

// RecordTranslate records one single-translation latency sample.
func (st *Stats) RecordTranslate(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.translate.add(d)
	st.requests++
}

// RecordBatch records one batch-endpoint latency sample.
func (st *Stats) RecordBatch(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.batch.add(d)
	st.requests++
}

// RecordRecognize records one OCR latency sample.
func (st *Stats) RecordRecognize(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.recognize.add(d)
	st.requests++
}

// IncrFailures increments the failure counter.
func (st *Stats) IncrFailures() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failures++
}

// LatencySummary holds the rolling average and p50/p95 values for one stage.
type LatencySummary struct {
	Avg time.Duration
	P50 time.Duration
	P95 time.Duration
}

// Snapshot captures a point-in-time view of all request statistics.
type Snapshot struct {
	Translate LatencySummary
	Batch     LatencySummary
	Recognize LatencySummary
	Requests  int64
	Failures  int64
}

// Snapshot returns a point-in-time view of all request statistics.
func (st *Stats) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	return Snapshot{
		Translate: st.translate.summary(),
		Batch:     st.batch.summary(),
		Recognize: st.recognize.summary(),
		Requests:  st.requests,
		Failures:  st.failures,
	}
}

// latencyBuffer is a bounded ring buffer of duration samples.
type latencyBuffer struct {
	data []time.Duration
	size int
	pos  int
	full bool
}

func newLatencyBuffer(size int) latencyBuffer {
	return latencyBuffer{
		data: make([]time.Duration, size),
		size: size,
	}
}

func (lb *latencyBuffer) add(d time.Duration) {
	lb.data[lb.pos] = d
	lb.pos++
	if lb.pos >= lb.size {
		lb.pos = 0
		lb.full = true
	}
}

func (lb *latencyBuffer) summary() LatencySummary {
	n := lb.pos
	if lb.full {
		n = lb.size
	}
	if n == 0 {
		return LatencySummary{}
	}

	// Copy and sort the valid samples.
	sorted := make([]time.Duration, n)
	if lb.full {
		copy(sorted, lb.data)
	} else {
		copy(sorted, lb.data[:n])
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return LatencySummary{
		Avg: sum / time.Duration(n),
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
	}
}

// percentile returns the value at the given percentile (0.0-1.0) from a
// sorted slice of durations using nearest-rank.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
