package dispatch

import (
	"sync/atomic"
	"time"
)

// WorkItem is a handle to delayed work scheduled with Queue.AsyncAfter.
type WorkItem struct {
	cancelled atomic.Bool
	timer     *time.Timer
}

// Cancel prevents the work from running if it has not started yet.
func (w *WorkItem) Cancel() {
	w.cancelled.Store(true)
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Cancelled reports whether Cancel has been called.
func (w *WorkItem) Cancelled() bool {
	return w.cancelled.Load()
}
