package timer

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/dispatch"
	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// DispatchTimer is a Timer driven by a goroutine that submits ticks to a
// dispatch.Executor. It is safe for concurrent use.
type DispatchTimer struct {
	id          ID
	exec        dispatch.Executor
	logger      *logging.Logger
	releaseHook func()
	tickHook    func()

	mu            sync.Mutex
	deadline      time.Time // zero until Schedule is called
	interval      time.Duration
	leeway        time.Duration
	next          time.Time
	fired         bool // one-shot timer has delivered its tick
	tick          func()
	cancelHandler func()
	started       bool
	cancelled     bool
	suspended     int
	pending       bool // a fire arrived while suspended

	firing   atomic.Bool
	inflight sync.WaitGroup

	wake chan struct{}
	stop chan struct{}
}

// New creates a timer with the given ID whose callbacks run on exec. A nil
// exec means dispatch.Main().
func New(id ID, exec dispatch.Executor, opts ...Option) *DispatchTimer {
	if exec == nil {
		exec = dispatch.Main()
	}
	t := &DispatchTimer{
		id:     id,
		exec:   exec,
		logger: logging.NopLogger(),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("timer").WithTimer(id.String())
	return t
}

// ID returns the timer's identifier.
func (t *DispatchTimer) ID() ID {
	return t.id
}

// Schedule sets the first deadline, the repeat interval and the leeway.
// Leeway is an upper bound on how late a tick may fire; ticks are started as
// close to their deadline as the runtime allows.
func (t *DispatchTimer) Schedule(deadline time.Time, interval, leeway time.Duration) {
	if leeway < 0 {
		leeway = 0
	}

	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.deadline = deadline
	t.interval = interval
	t.leeway = leeway
	t.next = deadline
	t.fired = false
	t.mu.Unlock()

	t.logger.Debug("timer scheduled",
		"deadline", deadline,
		"interval", interval,
		"leeway", leeway)
	t.notifyLoop()
}

// SetTick installs the tick callback.
func (t *DispatchTimer) SetTick(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick = fn
}

// SetCancelHandler installs the callback run after cancellation.
func (t *DispatchTimer) SetCancelHandler(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelHandler = fn
}

// Run starts the timer's scheduling goroutine.
func (t *DispatchTimer) Run() {
	t.mu.Lock()
	if t.cancelled || t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	t.logger.Debug("timer started")
	go t.loop()
}

// Cancel stops the timer and arranges for the cancel hooks to run on the
// executor once any running tick has returned. Only the first call has an
// effect. The hooks are submitted after Cancel returns, so a caller that
// drains a dispatch.Pool must wait for the cancel handler first or the hooks
// may be dropped by the drain.
func (t *DispatchTimer) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.pending = false
	t.mu.Unlock()

	close(t.stop)
	t.logger.Debug("timer cancelled")

	go func() {
		t.inflight.Wait()
		if !dispatch.Submit(t.exec, t.runCancelHooks) {
			t.logger.Warn("cancel hooks dropped by executor")
		}
	}()
}

// Suspend increments the suspend count.
func (t *DispatchTimer) Suspend() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.suspended++
	t.mu.Unlock()

	t.notifyLoop()
}

// Resume decrements the suspend count. When it reaches zero, a tick that
// came due while suspended is delivered.
func (t *DispatchTimer) Resume() {
	t.mu.Lock()
	if t.cancelled || t.suspended == 0 {
		t.mu.Unlock()
		return
	}
	t.suspended--

	deliver := false
	if t.suspended == 0 && t.started {
		now := time.Now()
		if t.dueLocked(now) {
			t.pending = true
			t.advanceLocked(now)
		}
		if t.pending {
			t.pending = false
			deliver = t.claimLocked()
		}
	}
	t.mu.Unlock()

	if deliver {
		t.submitTick()
	}
	t.notifyLoop()
}

// State reports the timer's lifecycle state.
func (t *DispatchTimer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.cancelled:
		return StateCancelled
	case !t.started && t.deadline.IsZero():
		return StateCreated
	case !t.started:
		return StateScheduled
	case t.suspended > 0:
		return StateSuspended
	default:
		return StateRunning
	}
}

func (t *DispatchTimer) notifyLoop() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *DispatchTimer) loop() {
	clock := time.NewTimer(time.Hour)
	clock.Stop()
	defer clock.Stop()

	for {
		t.mu.Lock()
		wait, armed := t.waitLocked(time.Now())
		t.mu.Unlock()

		if armed {
			clock.Reset(wait)
		} else {
			clock.Stop()
		}

		select {
		case <-t.stop:
			return
		case <-t.wake:
		case now := <-clock.C:
			t.fire(now)
		}
	}
}

// waitLocked returns how long to wait until the next fire, and false if no
// fire is due at all.
func (t *DispatchTimer) waitLocked(now time.Time) (time.Duration, bool) {
	if t.cancelled || t.suspended > 0 || t.deadline.IsZero() {
		return 0, false
	}
	if t.interval <= 0 && t.fired {
		return 0, false
	}
	return max(t.next.Sub(now), 0), true
}

// dueLocked reports whether the current deadline has passed.
func (t *DispatchTimer) dueLocked(now time.Time) bool {
	if t.deadline.IsZero() || now.Before(t.next) {
		return false
	}
	return t.interval > 0 || !t.fired
}

// advanceLocked moves the deadline past now, skipping any missed periods.
func (t *DispatchTimer) advanceLocked(now time.Time) {
	if t.interval <= 0 {
		t.fired = true
		return
	}
	missed := now.Sub(t.next)/t.interval + 1
	t.next = t.next.Add(missed * t.interval)
}

// claimLocked reserves the single in-flight slot. It returns false if a tick
// is already queued or running, in which case this fire is coalesced.
func (t *DispatchTimer) claimLocked() bool {
	if !t.firing.CompareAndSwap(false, true) {
		return false
	}
	t.inflight.Add(1)
	return true
}

func (t *DispatchTimer) fire(now time.Time) {
	t.mu.Lock()
	if t.cancelled || !t.dueLocked(now) {
		t.mu.Unlock()
		return
	}
	t.advanceLocked(now)
	if t.suspended > 0 {
		t.pending = true
		t.mu.Unlock()
		return
	}
	deliver := t.claimLocked()
	t.mu.Unlock()

	if deliver {
		t.submitTick()
	}
}

// submitTick hands the claimed tick to the executor, releasing the claim if
// the executor refuses it.
func (t *DispatchTimer) submitTick() {
	if !dispatch.Submit(t.exec, t.runTick) {
		t.firing.Store(false)
		t.inflight.Done()
	}
}

func (t *DispatchTimer) runTick() {
	defer t.inflight.Done()
	defer t.firing.Store(false)

	t.mu.Lock()
	cancelled := t.cancelled
	fn := t.tick
	t.mu.Unlock()

	if cancelled {
		return
	}
	if t.tickHook != nil {
		t.tickHook()
	}
	if fn != nil {
		t.safeCall("tick", fn)
	}
}

func (t *DispatchTimer) runCancelHooks() {
	t.mu.Lock()
	handler := t.cancelHandler
	t.mu.Unlock()

	if t.releaseHook != nil {
		t.safeCall("release hook", t.releaseHook)
	}
	if handler != nil {
		t.safeCall("cancel handler", handler)
	}
}

func (t *DispatchTimer) safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("timer callback panicked",
				"callback", what,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

var _ Timer = (*DispatchTimer)(nil)
