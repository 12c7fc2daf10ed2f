package event

import "time"

// Event types published by this module.
const (
	TypeTimerCreated       = "timer.created"
	TypeTimerReleased      = "timer.released"
	TypeNotificationPosted = "notification.posted"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "timer.released").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Timer Events
// -----------------------------------------------------------------------------

// TimerCreatedEvent is emitted when a timer source registers a new timer.
type TimerCreatedEvent struct {
	baseEvent
	TimerID string // Identifier of the new timer
	Queue   string // Label of the executor the timer runs on, if known
}

// NewTimerCreatedEvent creates a TimerCreatedEvent.
func NewTimerCreatedEvent(timerID, queue string) TimerCreatedEvent {
	return TimerCreatedEvent{
		baseEvent: newBaseEvent(TypeTimerCreated),
		TimerID:   timerID,
		Queue:     queue,
	}
}

// TimerReleasedEvent is emitted after a cancelled timer has been removed from
// its source. Observers will not find TimerID in the source.
type TimerReleasedEvent struct {
	baseEvent
	TimerID string
}

// NewTimerReleasedEvent creates a TimerReleasedEvent.
func NewTimerReleasedEvent(timerID string) TimerReleasedEvent {
	return TimerReleasedEvent{
		baseEvent: newBaseEvent(TypeTimerReleased),
		TimerID:   timerID,
	}
}

// -----------------------------------------------------------------------------
// Notification Events
// -----------------------------------------------------------------------------

// NotificationPostedEvent carries a notification through an in-process bus.
type NotificationPostedEvent struct {
	baseEvent
	Name     string            // Fully qualified notification name
	UserInfo map[string]string // Optional payload
	Sender   int               // PID of the posting process
	PostedAt time.Time         // When the notification was posted, which may predate delivery
}

// NewNotificationPostedEvent creates a NotificationPostedEvent.
// PostedAt defaults to the event timestamp.
func NewNotificationPostedEvent(name string, userInfo map[string]string, sender int) NotificationPostedEvent {
	base := newBaseEvent(TypeNotificationPosted)
	return NotificationPostedEvent{
		baseEvent: base,
		Name:      name,
		UserInfo:  userInfo,
		Sender:    sender,
		PostedAt:  base.timestamp,
	}
}
