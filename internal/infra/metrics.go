package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	requestsTotal  atomic.Uint64
	errorsTotal    atomic.Uint64
	staleDiscarded atomic.Uint64
	searchesTotal  atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeQueries atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordRequest records a completed upstream request with its latency.
func (m *Metrics) RecordRequest(latency time.Duration) {
	m.requestsTotal.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordStale records a response dropped by the sequence-token guard.
func (m *Metrics) RecordStale() {
	m.staleDiscarded.Add(1)
}

// RecordSearch records a dispatched search.
func (m *Metrics) RecordSearch() {
	m.searchesTotal.Add(1)
}

// IncrementQueries increments mounted queries by 1.
func (m *Metrics) IncrementQueries() {
	m.activeQueries.Add(1)
}

// DecrementQueries decrements mounted queries by 1.
func (m *Metrics) DecrementQueries() {
	m.activeQueries.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	RequestsTotal  uint64
	ErrorsTotal    uint64
	StaleDiscarded uint64
	SearchesTotal  uint64
	AvgLatency     time.Duration
	ActiveQueries  int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		RequestsTotal:  m.requestsTotal.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		StaleDiscarded: m.staleDiscarded.Load(),
		SearchesTotal:  m.searchesTotal.Load(),
		AvgLatency:     time.Duration(avgLatency),
		ActiveQueries:  m.activeQueries.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.requestsTotal.Store(0)
	m.errorsTotal.Store(0)
	m.staleDiscarded.Store(0)
	m.searchesTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeQueries.Store(0)
}
