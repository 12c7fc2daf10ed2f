package timers

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/cfoundation/internal/dispatch"
	"github.com/Iron-Ham/cfoundation/internal/event"
	"github.com/Iron-Ham/cfoundation/internal/guard"
	"github.com/Iron-Ham/cfoundation/internal/logging"
	"github.com/Iron-Ham/cfoundation/internal/metrics"
	"github.com/Iron-Ham/cfoundation/internal/notify"
	"github.com/Iron-Ham/cfoundation/internal/subscription"
	"github.com/Iron-Ham/cfoundation/internal/timer"
)

// Source creates timers and tracks the ones that have not been released.
// It is safe for concurrent use.
type Source struct {
	kind    Kind
	bus     *event.Bus
	center  notify.Center
	logger  *logging.Logger
	metrics *metrics.Timers

	entries *guard.Cell[map[timer.ID]timer.Timer]
}

// NewSource creates a Source. Without options it publishes on a private bus
// and posts on a private LocalCenter.
func NewSource(opts ...Option) *Source {
	s := &Source{
		kind:    KindDispatch,
		logger:  logging.NopLogger(),
		entries: guard.New(make(map[timer.ID]timer.Timer)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = event.NewBus(event.WithLogger(s.logger))
	}
	if s.center == nil {
		s.center = notify.NewLocalCenter(notify.WithLogger(s.logger))
	}
	s.logger = s.logger.WithComponent("timers")
	return s
}

var defaultSource = sync.OnceValue(func() *Source {
	return NewSource()
})

// Default returns the process-wide Source, creating it on first use.
func Default() *Source {
	return defaultSource()
}

// Bus returns the bus release events are published on.
func (s *Source) Bus() *event.Bus {
	return s.bus
}

// Center returns the center release notifications are posted on.
func (s *Source) Center() notify.Center {
	return s.center
}

// Kind returns the kind of timer the source creates.
func (s *Source) Kind() Kind {
	return s.kind
}

// MakeTimer creates and registers a timer whose callbacks run on exec. A nil
// exec means dispatch.Main().
func (s *Source) MakeTimer(exec dispatch.Executor) timer.Timer {
	if exec == nil {
		exec = dispatch.Main()
	}

	id := timer.NewID()
	t := timer.New(id, exec,
		timer.WithLogger(s.logger),
		timer.WithReleaseHook(func() { s.release(id) }),
		timer.WithTickHook(s.metrics.Tick),
	)

	s.entries.Mutate(func(m *map[timer.ID]timer.Timer) {
		(*m)[id] = t
	})
	s.metrics.TimerCreated()

	queue := dispatch.LabelOf(exec)
	s.logger.Debug("timer created", "timer_id", id.String(), "kind", s.kind.String(), "queue", queue)
	s.bus.Publish(event.NewTimerCreatedEvent(id.String(), queue))
	return t
}

// Timer returns the registered timer with the given ID.
func (s *Source) Timer(id timer.ID) (timer.Timer, bool) {
	t := guard.Read(s.entries, func(m map[timer.ID]timer.Timer) timer.Timer {
		return m[id]
	})
	return t, t != nil
}

// Count returns the number of registered timers.
func (s *Source) Count() int {
	return guard.Read(s.entries, func(m map[timer.ID]timer.Timer) int {
		return len(m)
	})
}

// IDs returns the IDs of the registered timers in ascending byte order.
func (s *Source) IDs() []timer.ID {
	ids := guard.Read(s.entries, func(m map[timer.ID]timer.Timer) []timer.ID {
		out := make([]timer.ID, 0, len(m))
		for id := range m {
			out = append(out, id)
		}
		return out
	})
	slices.SortFunc(ids, func(a, b timer.ID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

// SubscribeReleased calls fn when the timer with the given ID is released.
// fn runs on the executor of the released timer.
func (s *Source) SubscribeReleased(id timer.ID, fn func(timer.ID)) *subscription.Handle {
	want := id.String()
	subID := event.On(s.bus, event.TypeTimerReleased, func(released event.TimerReleasedEvent) {
		if released.TimerID == want {
			fn(id)
		}
	})
	return subscription.NewHandle(func() { s.bus.Unsubscribe(subID) })
}

// SubscribeAllReleased calls fn whenever any timer of the source is
// released.
func (s *Source) SubscribeAllReleased(fn func(timer.ID)) *subscription.Handle {
	subID := event.On(s.bus, event.TypeTimerReleased, func(released event.TimerReleasedEvent) {
		id, err := uuid.Parse(released.TimerID)
		if err != nil {
			return
		}
		fn(id)
	})
	return subscription.NewHandle(func() { s.bus.Unsubscribe(subID) })
}

// WaitReleased blocks until the timer with the given ID is no longer
// registered or ctx is done. It returns immediately for IDs that are not
// registered.
func (s *Source) WaitReleased(ctx context.Context, id timer.ID) error {
	released := make(chan struct{})
	var once sync.Once
	h := s.SubscribeReleased(id, func(timer.ID) {
		once.Do(func() { close(released) })
	})
	defer h.Cancel()

	if _, ok := s.Timer(id); !ok {
		return nil
	}

	select {
	case <-released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release runs as the first cancel hook of every timer the source created.
func (s *Source) release(id timer.ID) {
	removed := guard.Write(s.entries, func(m *map[timer.ID]timer.Timer) bool {
		if _, ok := (*m)[id]; !ok {
			return false
		}
		delete(*m, id)
		return true
	})
	if !removed {
		return
	}
	s.metrics.TimerReleased()

	idStr := id.String()
	s.logger.Debug("timer released", "timer_id", idStr)
	s.bus.Publish(event.NewTimerReleasedEvent(idStr))

	err := s.center.Post(notify.Notification{
		Name:     NameTimerReleased,
		UserInfo: map[string]string{IDKey: idStr},
	})
	if err != nil {
		s.logger.Warn("failed to post release notification", "timer_id", idStr, "error", err)
	}
}
