package dispatch

import (
	"runtime/debug"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// Pool is a concurrent executor that runs at most a fixed number of tasks
// at once. Async blocks while all workers are busy.
//
// Async and Wait may be called from different goroutines. Work submitted
// while a Wait is draining the pool is dropped and logged, like work
// submitted to a closed Queue. Once Wait returns the pool accepts work again.
type Pool struct {
	label  string
	logger *logging.Logger

	waitMu   sync.Mutex // serializes Wait calls
	mu       sync.Mutex // serializes Go against the start of Wait
	draining bool
	pool     *pool.Pool
}

// NewPool creates a Pool with at most size concurrent workers. A
// non-positive size means one worker.
func NewPool(label string, size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	o := buildOptions(opts)
	return &Pool{
		label:  label,
		pool:   pool.New().WithMaxGoroutines(size),
		logger: o.logger.WithComponent("dispatch").WithQueue(label),
	}
}

// Label returns the pool's label.
func (p *Pool) Label() string {
	return p.label
}

// Async runs fn on one of the pool's workers. It is dropped if the pool is
// draining.
func (p *Pool) Async(fn func()) {
	p.TryAsync(fn)
}

// TryAsync is like Async but reports whether fn was accepted.
func (p *Pool) TryAsync(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draining {
		p.logger.Warn("task dropped on draining pool")
		return false
	}
	p.pool.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("task panicked",
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	})
	return true
}

// Wait blocks until every task submitted before it was called has returned.
// Concurrent calls to Wait are serialized.
func (p *Pool) Wait() {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()

	p.mu.Lock()
	p.draining = true
	p.mu.Unlock()

	p.pool.Wait()

	p.mu.Lock()
	p.draining = false
	p.mu.Unlock()
}
