package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the quiescence window used for criteria edits
const DefaultWait = 300 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it through
// the adapter in New; tests pass a fake.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Debouncer
type Option func(*Debouncer)

// WithAfterFunc replaces the timer source
func WithAfterFunc(after AfterFunc) Option {
	return func(d *Debouncer) {
		d.after = after
	}
}

// Debouncer coalesces bursts of calls. Each Trigger cancels the pending call
// and schedules a new one; only the last scheduled call runs.
//
// Safe for concurrent use.
type Debouncer struct {
	wait  time.Duration
	after AfterFunc

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// New creates a Debouncer with the given quiescence window
func New(wait time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		wait: wait,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger schedules f to run once the window passes without another Trigger
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = d.after(d.wait, func() {
		d.mu.Lock()
		// a timer that fired while being stopped must not run a stale call
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			f()
		}
	})
}

// Stop cancels the pending call, if any
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
