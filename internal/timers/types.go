package timers

import (
	"github.com/Iron-Ham/cfoundation/internal/notify"
)

// NameTimerReleased is posted on the source's notification center when a
// timer is released.
const NameTimerReleased notify.Name = notify.NamePrefix + "timers.released"

// IDKey is the UserInfo key holding the released timer's ID.
const IDKey = notify.NamePrefix + "timers.id"

// Kind selects the timer implementation a Source creates.
type Kind int

const (
	// KindDispatch creates timers that deliver ticks on a dispatch.Executor.
	KindDispatch Kind = iota
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}
