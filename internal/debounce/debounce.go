package debounce

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler creates timers so tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer delivers the last triggered value once the quiet period has passed
// without another trigger.
type Debouncer[T any] struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	deliver func(T)
	timer   Timer
	gen     uint64
	closed  bool
}

func New[T any](delay time.Duration, sched Scheduler, deliver func(T)) *Debouncer[T] {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Debouncer[T]{sched: sched, delay: delay, deliver: deliver}
}

// Trigger restarts the quiet period with v as the value to deliver.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopLocked()
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced or cancelled is stale.
		if d.closed || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.deliver(v)
	})
}

// Cancel drops the pending delivery, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels and refuses further triggers.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
