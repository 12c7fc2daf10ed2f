package event

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// wildcard is the routing key used by SubscribeAll.
const wildcard = "*"

// Handler is a function that handles an event.
type Handler func(Event)

// SubscriptionID identifies one registration on a Bus. The zero value is
// never issued.
type SubscriptionID uint64

// String returns the ID in the "sub-N" form used in logs.
func (id SubscriptionID) String() string {
	return fmt.Sprintf("sub-%d", uint64(id))
}

type registration struct {
	id      SubscriptionID
	handler Handler
}

// Bus is a synchronous pub-sub event bus. Handlers run on the publishing
// goroutine.
type Bus struct {
	mu     sync.RWMutex
	routes map[string][]registration // eventType -> registrations, copy-on-write
	index  map[SubscriptionID]string // id -> eventType
	nextID atomic.Uint64
	logger *logging.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		routes: make(map[string][]registration),
		index:  make(map[SubscriptionID]string),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for eventType.
func (b *Bus) Subscribe(eventType string, handler Handler) SubscriptionID {
	id := SubscriptionID(b.nextID.Add(1))

	b.mu.Lock()
	defer b.mu.Unlock()

	routes := b.routes[eventType]
	// Full slice expression forces a fresh backing array so snapshots held
	// by an in-progress Publish never observe the append.
	b.routes[eventType] = append(routes[:len(routes):len(routes)], registration{id: id, handler: handler})
	b.index[id] = eventType
	return id
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) SubscriptionID {
	return b.Subscribe(wildcard, handler)
}

// On registers fn for eventType, calling it only for events of type E.
// Events of the same type name but a different Go type are skipped.
func On[E Event](b *Bus, eventType string, fn func(E)) SubscriptionID {
	return b.Subscribe(eventType, func(e Event) {
		if typed, ok := e.(E); ok {
			fn(typed)
		}
	})
}

// Unsubscribe removes a registration. It reports whether id was registered.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	eventType, ok := b.index[id]
	if !ok {
		return false
	}
	delete(b.index, id)

	routes := b.routes[eventType]
	kept := make([]registration, 0, len(routes))
	for _, r := range routes {
		if r.id != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(b.routes, eventType)
	} else {
		b.routes[eventType] = kept
	}
	return true
}

// Publish dispatches event to its handlers: those registered for its type
// first, then wildcard handlers, each group in registration order. The
// handler set is captured when Publish starts.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	specific := b.routes[event.EventType()]
	all := b.routes[wildcard]
	b.mu.RUnlock()

	for _, r := range specific {
		b.deliver(r, event)
	}
	for _, r := range all {
		b.deliver(r, event)
	}
}

func (b *Bus) deliver(r registration, event Event) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"subscription", r.id.String(),
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()))
		}
	}()
	r.handler(event)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes = make(map[string][]registration)
	b.index = make(map[SubscriptionID]string)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.index)
}
