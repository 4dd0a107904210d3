package infra

import (
	"testing"
	"time"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := &Metrics{}

	m.RecordRequest(1 * time.Millisecond)
	m.RecordRequest(2 * time.Millisecond)
	m.RecordRequest(3 * time.Millisecond)

	snap := m.Snapshot()

	if snap.RequestsTotal != 3 {
		t.Errorf("Expected 3 requests, got %d", snap.RequestsTotal)
	}

	// Average latency: (1 + 2 + 3) / 3 = 2ms
	if snap.AvgLatency != 2*time.Millisecond {
		t.Errorf("Expected avg latency 2ms, got %v", snap.AvgLatency)
	}
}

func TestMetrics_Queries(t *testing.T) {
	m := &Metrics{}

	m.IncrementQueries()
	m.IncrementQueries()
	m.IncrementQueries()

	snap := m.Snapshot()
	if snap.ActiveQueries != 3 {
		t.Errorf("Expected 3 queries, got %d", snap.ActiveQueries)
	}

	m.DecrementQueries()
	snap = m.Snapshot()
	if snap.ActiveQueries != 2 {
		t.Errorf("Expected 2 queries, got %d", snap.ActiveQueries)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordRequest(time.Millisecond)
	m.RecordError()
	m.RecordStale()
	m.RecordSearch()
	m.IncrementQueries()

	m.Reset()
	snap := m.Snapshot()

	if snap.RequestsTotal != 0 {
		t.Error("Expected 0 requests after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.StaleDiscarded != 0 {
		t.Error("Expected 0 stale discards after reset")
	}
	if snap.ActiveQueries != 0 {
		t.Error("Expected 0 queries after reset")
	}
}
