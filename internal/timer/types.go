package timer

import (
	"time"

	"github.com/google/uuid"
)

// ID identifies a timer. IDs are random and never reused.
type ID = uuid.UUID

// NewID returns a fresh timer ID.
func NewID() ID {
	return uuid.New()
}

// Never is the repeat interval of a timer that fires only once.
const Never time.Duration = -1

// State describes where a timer is in its lifecycle.
type State int

const (
	StateCreated State = iota
	StateScheduled
	StateRunning
	StateSuspended
	StateCancelled
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Timer is a handle to a scheduled, cancellable source of ticks.
// Two handles refer to the same timer if and only if their IDs are equal.
type Timer interface {
	// ID returns the timer's identifier.
	ID() ID

	// Schedule sets the first deadline, the repeat interval and the leeway.
	// Calling it on a running timer replaces the schedule from the next
	// scheduling point.
	Schedule(deadline time.Time, interval, leeway time.Duration)

	// SetTick installs the callback run for each tick. The latest installed
	// callback is used for the next tick.
	SetTick(fn func())

	// SetCancelHandler installs the callback run once after cancellation.
	SetCancelHandler(fn func())

	// Run activates the timer. Calls after the first are ignored.
	Run()

	// Cancel stops the timer permanently.
	Cancel()

	// Suspend pauses tick delivery. Every Suspend must be balanced by a Resume.
	Suspend()

	// Resume undoes one Suspend.
	Resume()

	// State reports the timer's current lifecycle state.
	State() State
}

// ScheduleTick schedules t to fire once at deadline with no leeway.
func ScheduleTick(t Timer, deadline time.Time) {
	t.Schedule(deadline, Never, 0)
}

// Equal reports whether a and b refer to the same timer.
func Equal(a, b Timer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}
