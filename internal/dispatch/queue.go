package dispatch

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// Queue is a serial executor. Tasks run one at a time, in the order they
// were submitted, on a goroutine owned by the queue. The backlog is
// unbounded, so Async never blocks.
type Queue struct {
	label  string
	logger *logging.Logger

	mu     sync.Mutex
	tasks  []func()
	closed bool

	signal chan struct{}
	done   chan struct{}
}

// NewQueue creates a Queue and starts its worker goroutine.
func NewQueue(label string, opts ...Option) *Queue {
	o := buildOptions(opts)
	q := &Queue{
		label:  label,
		logger: o.logger.WithComponent("dispatch").WithQueue(label),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.run()
	q.logger.Debug("queue started")
	return q
}

var mainQueue = sync.OnceValue(func() *Queue {
	return NewQueue("main")
})

// Main returns the process-wide serial queue, creating it on first use.
// It is never closed.
func Main() *Queue {
	return mainQueue()
}

// Label returns the queue's label.
func (q *Queue) Label() string {
	return q.label
}

// Async appends fn to the queue. Work submitted after Close is dropped.
func (q *Queue) Async(fn func()) {
	q.TryAsync(fn)
}

// TryAsync is like Async but reports whether fn was queued.
func (q *Queue) TryAsync(fn func()) bool {
	if !q.enqueue(fn) {
		q.logger.Warn("task dropped on closed queue")
		return false
	}
	return true
}

// Sync submits fn and waits for it to return. Calling Sync from a task that
// is running on the same queue deadlocks.
func (q *Queue) Sync(fn func()) error {
	finished := make(chan struct{})
	if !q.enqueue(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	<-finished
	return nil
}

// AsyncAfter submits fn to the queue once delay has elapsed. The returned
// WorkItem can be cancelled until fn starts running.
func (q *Queue) AsyncAfter(delay time.Duration, fn func()) *WorkItem {
	item := &WorkItem{}
	item.timer = time.AfterFunc(delay, func() {
		q.Async(func() {
			if item.Cancelled() {
				return
			}
			fn()
		})
	})
	return item
}

// Close stops accepting work, waits for queued tasks to finish and stops the
// worker goroutine. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wake()
	<-q.done
	q.logger.Debug("queue closed")
}

func (q *Queue) enqueue(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	q.wake()
	return true
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		batch := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			q.safeCall(fn)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.signal
	}
}

func (q *Queue) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
