package notify

import (
	"time"

	"github.com/Iron-Ham/cfoundation/internal/event"
	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// defaultPollInterval is how often a FileCenter re-reads the log even when
// no filesystem event arrived.
const defaultPollInterval = 500 * time.Millisecond

// Option configures a center.
type Option func(*options)

type options struct {
	bus          *event.Bus
	logger       *logging.Logger
	pollInterval time.Duration
}

// WithBus sets the bus a center delivers on. A FileCenter publishes the
// notifications it reads from the shared log there. By default each center
// owns a private bus.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithLogger sets the logger for delivery errors and recovered panics.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPollInterval sets how often a FileCenter re-reads the notification log
// as a fallback to filesystem events. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       logging.NopLogger(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bus == nil {
		o.bus = event.NewBus(event.WithLogger(o.logger))
	}
	return o
}
