package subscription

import "github.com/Iron-Ham/cfoundation/internal/event"

// Sink subscribes handler to eventType on bus and stores the resulting
// handle in bag. Cancelling the handle unsubscribes from the bus.
func Sink(bag *Bag, bus *event.Bus, eventType string, handler event.Handler) *Handle {
	id := bus.Subscribe(eventType, handler)
	h := NewHandle(func() { bus.Unsubscribe(id) })
	bag.Store(h)
	return h
}

// SinkAll is like Sink but subscribes to every event type.
func SinkAll(bag *Bag, bus *event.Bus, handler event.Handler) *Handle {
	id := bus.SubscribeAll(handler)
	h := NewHandle(func() { bus.Unsubscribe(id) })
	bag.Store(h)
	return h
}
