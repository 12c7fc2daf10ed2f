// Package event provides a synchronous pub-sub bus used to fan out timer and
// notification lifecycle events inside a process.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous dispatcher with thread-safe subscribe and publish
//   - [Handler]: Function type for event handlers (func(Event))
//   - [On]: Typed subscription that receives only events of one Go type
//
// # Event Types
//
//   - [TimerCreatedEvent] ("timer.created"): a timer source registered a new timer
//   - [TimerReleasedEvent] ("timer.released"): a timer was cancelled and removed from its source
//   - [NotificationPostedEvent] ("notification.posted"): a notification center delivered a notification
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called synchronously
// on the publishing goroutine, outside the bus lock, so a handler may subscribe,
// unsubscribe or publish without deadlocking. A panicking handler is recovered
// and does not prevent delivery to the remaining handlers.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	id := event.On(bus, event.TypeTimerReleased, func(e event.TimerReleasedEvent) {
//	    fmt.Println("released", e.TimerID)
//	})
//	defer bus.Unsubscribe(id)
//
// Event types follow the pattern "category.action".
package event
