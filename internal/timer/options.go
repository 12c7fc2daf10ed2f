package timer

import "github.com/Iron-Ham/cfoundation/internal/logging"

// Option configures a DispatchTimer.
type Option func(*DispatchTimer)

// WithLogger sets the logger for lifecycle messages and recovered panics.
func WithLogger(logger *logging.Logger) Option {
	return func(t *DispatchTimer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithReleaseHook installs a hook that runs on cancellation before the
// handler set with SetCancelHandler. Registries use it to drop their entry
// for the timer.
func WithReleaseHook(fn func()) Option {
	return func(t *DispatchTimer) {
		t.releaseHook = fn
	}
}

// WithTickHook installs a hook that runs before every delivered tick, on the
// same goroutine as the tick callback.
func WithTickHook(fn func()) Option {
	return func(t *DispatchTimer) {
		t.tickHook = fn
	}
}
