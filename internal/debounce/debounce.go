// Package debounce coalesces bursts of calls into a single delayed call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer keeps at most one pending call. Triggering again before the window
// elapses cancels the pending call and schedules the new one.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
}

// New returns a Debouncer with the given window. A non-positive window runs
// triggered calls synchronously.
func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Window returns the configured delay.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Trigger schedules fn to run once the window elapses without another trigger.
func (d *Debouncer) Trigger(fn func()) {
	if d.window <= 0 {
		d.Stop()
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(seq)
	})
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Flush runs the pending call immediately, if any, and reports whether it ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.take()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop discards the pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) take() func() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	return fn
}
