package notify

import (
	"errors"
	"strings"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/subscription"
)

// NamePrefix namespaces every notification posted by this module.
const NamePrefix = "cfoundation."

// Sentinel errors returned by centers.
var (
	ErrClosed    = errors.New("notify: center closed")
	ErrEmptyName = errors.New("notify: notification name is required")
)

// Name identifies a kind of notification.
type Name string

// NewName returns s as a Name carrying NamePrefix. A name that already
// carries the prefix is returned unchanged.
func NewName(s string) Name {
	if s == "" || strings.HasPrefix(s, NamePrefix) {
		return Name(s)
	}
	return Name(NamePrefix + s)
}

// String returns the name.
func (n Name) String() string {
	return string(n)
}

// Notification is a broadcast message with a small string payload.
type Notification struct {
	Name     Name              `json:"name"`
	UserInfo map[string]string `json:"user_info,omitempty"`
	Sender   int               `json:"sender"`
	PostedAt time.Time         `json:"posted_at"`
}

// Handler receives notifications.
type Handler func(Notification)

// Center posts notifications and dispatches them to observers.
type Center interface {
	// Post broadcasts n. Sender and PostedAt are filled in when zero.
	Post(n Notification) error

	// Observe registers fn for notifications named name.
	Observe(name Name, fn Handler) (*subscription.Handle, error)

	// ObserveAll registers fn for every notification.
	ObserveAll(fn Handler) (*subscription.Handle, error)

	// Close detaches all observers. Later calls return ErrClosed.
	Close() error
}
