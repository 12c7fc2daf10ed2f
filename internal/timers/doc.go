// Package timers provides a registry of timers keyed by ID.
//
// A [Source] creates timers with [Source.MakeTimer] and keeps each one
// registered until it is cancelled. When a timer's cancel hooks run, the
// source first removes the entry, then publishes an
// [event.TimerReleasedEvent] on its bus, then posts a [NameTimerReleased]
// notification carrying the ID under [IDKey] on its notification center.
// Only after that does the handler set with SetCancelHandler run.
//
// Because removal comes first, a release observer never finds the released
// ID with [Source.Timer].
//
// Cancel returns before the cancel hooks run: they are queued on the timer's
// executor after any running tick. Until then [Source.Timer] still returns
// the handle, in timer.StateCancelled. A timer is guaranteed to be gone from
// the source once its release event has been published, which
// [Source.WaitReleased] waits for.
//
// [Default] returns a process-wide source that is created on first use and
// never torn down. Tests and libraries should construct their own with
// [NewSource] instead.
package timers
