package timers

import (
	"github.com/Iron-Ham/cfoundation/internal/event"
	"github.com/Iron-Ham/cfoundation/internal/logging"
	"github.com/Iron-Ham/cfoundation/internal/metrics"
	"github.com/Iron-Ham/cfoundation/internal/notify"
)

// Option configures a Source.
type Option func(*Source)

// WithBus sets the bus release events are published on.
func WithBus(bus *event.Bus) Option {
	return func(s *Source) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithCenter sets the notification center release notifications are
// posted on.
func WithCenter(center notify.Center) Option {
	return func(s *Source) {
		if center != nil {
			s.center = center
		}
	}
}

// WithLogger sets the logger for the source and the timers it creates.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collectors updated by the source.
func WithMetrics(m *metrics.Timers) Option {
	return func(s *Source) {
		s.metrics = m
	}
}

// WithKind sets the kind of timer the source creates.
func WithKind(kind Kind) Option {
	return func(s *Source) {
		s.kind = kind
	}
}
