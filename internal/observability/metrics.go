package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound backend calls.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	totalLatency time.Duration
	requests     int64
}

// Counter is one labelled counter value.
type Counter struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests       []Counter     `json:"requests"`
	Errors         []Counter     `json:"errors"`
	AverageLatency time.Duration `json:"average_latency_ns"`
}

// Total is the number of requests the snapshot covers.
func (s Snapshot) Total() int64 {
	var n int64
	for _, c := range s.Requests {
		n += c.Value
	}
	return n
}

// Merge adds other's counters to s. The average latency is weighted by each
// side's request total.
func (s Snapshot) Merge(other Snapshot) Snapshot {
	out := Snapshot{
		Requests: mergeCounters(s.Requests, other.Requests),
		Errors:   mergeCounters(s.Errors, other.Errors),
	}
	left, right := s.Total(), other.Total()
	if left+right > 0 {
		out.AverageLatency = time.Duration((int64(s.AverageLatency)*left + int64(other.AverageLatency)*right) / (left + right))
	}
	return out
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requests++
	m.totalLatency += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Requests: sortedCounters(m.requestCount),
		Errors:   sortedCounters(m.errorCount),
	}
	if m.requests > 0 {
		snap.AverageLatency = m.totalLatency / time.Duration(m.requests)
	}
	return snap
}

func sortedCounters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func mergeCounters(a, b []Counter) []Counter {
	sum := make(map[string]int64, len(a)+len(b))
	for _, c := range a {
		sum[c.Key] += c.Value
	}
	for _, c := range b {
		sum[c.Key] += c.Value
	}
	return sortedCounters(sum)
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
