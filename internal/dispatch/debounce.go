package dispatch

import (
	"sync"
	"time"
)

// Debouncer delays a callback until no new value has been submitted for a
// full delay window. Only the most recently submitted value is delivered.
type Debouncer[T any] struct {
	delay time.Duration
	queue *Queue
	fn    func(T)

	mu      sync.Mutex
	pending *WorkItem
}

// NewDebouncer creates a Debouncer that calls fn on queue. A nil queue means
// Main(), and a non-positive delay means DefaultDebounceDelay. If initial is
// given, its first element is submitted asynchronously on queue.
func NewDebouncer[T any](queue *Queue, delay time.Duration, fn func(T), initial ...T) *Debouncer[T] {
	if queue == nil {
		queue = Main()
	}
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	d := &Debouncer[T]{delay: delay, queue: queue, fn: fn}
	if len(initial) > 0 {
		v := initial[0]
		queue.Async(func() { d.Submit(v) })
	}
	return d
}

// Delay returns the debounce window.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Submit replaces any pending value with v and restarts the delay window.
func (d *Debouncer[T]) Submit(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
	}
	d.pending = d.queue.AsyncAfter(d.delay, func() { d.fn(v) })
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}
