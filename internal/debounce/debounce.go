// Package debounce commits a value only after it has stopped changing.
package debounce

import (
	"sync"
	"time"
)

// Value holds a raw value and its debounced (committed) counterpart.
// Each Set restarts the wait; when delay elapses without another Set the
// raw value is committed and onCommit runs if the committed value changed.
type Value[T comparable] struct {
	mu        sync.Mutex
	delay     time.Duration
	raw       T
	committed T
	timer     *time.Timer
	gen       uint64
	closed    bool
	onCommit  func(T)
}

// New creates a Value whose raw and committed values start at initial.
func New[T comparable](initial T, delay time.Duration, onCommit func(T)) *Value[T] {
	return &Value[T]{
		delay:     delay,
		raw:       initial,
		committed: initial,
		onCommit:  onCommit,
	}
}

// Set updates the raw value and restarts the wait.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.raw = val
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
	}
	gen := v.gen
	v.timer = time.AfterFunc(v.delay, func() { v.fire(gen) })
}

// fire commits the raw value unless a later Set superseded this timer.
func (v *Value[T]) fire(gen uint64) {
	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.timer = nil
	val, changed := v.commitLocked()
	v.mu.Unlock()

	if changed && v.onCommit != nil {
		v.onCommit(val)
	}
}

func (v *Value[T]) commitLocked() (T, bool) {
	changed := v.committed != v.raw
	v.committed = v.raw
	return v.committed, changed
}

// Raw returns the latest value passed to Set.
func (v *Value[T]) Raw() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw
}

// Committed returns the debounced value.
func (v *Value[T]) Committed() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.committed
}

// Pending reports whether a commit is scheduled.
func (v *Value[T]) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timer != nil
}

// Flush commits the pending raw value immediately.
func (v *Value[T]) Flush() {
	v.mu.Lock()
	if v.closed || v.timer == nil {
		v.mu.Unlock()
		return
	}
	v.timer.Stop()
	v.timer = nil
	v.gen++
	val, changed := v.commitLocked()
	v.mu.Unlock()

	if changed && v.onCommit != nil {
		v.onCommit(val)
	}
}

// Close cancels any pending commit. Later Sets are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}
