package subscription

import "sync"

// Handle is a cancellable subscription token.
type Handle struct {
	once      sync.Once
	mu        sync.Mutex
	cancel    func()
	cancelled bool
}

// NewHandle creates a Handle that runs cancel on its first Cancel call.
// A nil cancel is allowed and makes Cancel only flip the cancelled flag.
func NewHandle(cancel func()) *Handle {
	return &Handle{cancel: cancel}
}

// Cancel ends the subscription. Subsequent calls are no-ops.
func (h *Handle) Cancel() {
	h.once.Do(func() {
		h.mu.Lock()
		h.cancelled = true
		fn := h.cancel
		h.cancel = nil
		h.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}
