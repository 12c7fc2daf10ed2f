// Package timer implements cancellable, suspendable timers whose ticks are
// delivered on a caller-chosen [dispatch.Executor].
//
// A timer is configured with [Timer.Schedule] (first deadline, repeat
// interval, leeway) and started with [Timer.Run]. An interval of [Never], or
// any non-positive interval, fires a single tick at the deadline; the timer
// stays running until it is cancelled.
//
// # Delivery
//
// At most one tick per timer is in flight at a time. A fire that happens while
// the previous tick is still queued or running is coalesced into it, and
// periods missed while the executor was busy produce a single tick. The next
// deadline stays aligned to the original deadline plus a multiple of the
// interval.
//
// [Timer.Suspend] and [Timer.Resume] are counted. Fires that happen while the
// count is positive are coalesced into one tick that is delivered when the
// balancing Resume brings the count back to zero. Unbalanced Resume calls are
// ignored.
//
// # Cancellation
//
// [Timer.Cancel] is terminal and idempotent. After it returns no new tick is
// started; a tick that was queued on the executor but had not started yet is
// skipped. Once any tick that was already running has returned, the cancel
// hooks are submitted to the executor: first the release hook installed with
// [WithReleaseHook], then the handler set with [Timer.SetCancelHandler]. Both
// run exactly once, including for timers that were cancelled before Run or
// while suspended.
//
// The executor must keep accepting work until the cancel hooks have run.
package timer
