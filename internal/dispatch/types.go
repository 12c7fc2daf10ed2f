package dispatch

import (
	"errors"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/logging"
)

// DefaultDebounceDelay is the delay used by a Debouncer created with a
// non-positive delay.
const DefaultDebounceDelay = 500 * time.Millisecond

// ErrClosed is returned when work is submitted to a closed queue.
var ErrClosed = errors.New("dispatch: queue closed")

// Executor runs submitted functions asynchronously.
type Executor interface {
	Async(fn func())
}

// Submitter is implemented by executors that can refuse work, such as a
// closed Queue or a draining Pool.
type Submitter interface {
	TryAsync(fn func()) bool
}

// Submit hands fn to exec and reports whether exec accepted it. Executors
// that are not Submitters always accept.
func Submit(exec Executor, fn func()) bool {
	if s, ok := exec.(Submitter); ok {
		return s.TryAsync(fn)
	}
	exec.Async(fn)
	return true
}

// Labeler is implemented by executors that carry a human-readable label.
type Labeler interface {
	Label() string
}

// LabelOf returns the label of exec, or an empty string if it has none.
func LabelOf(exec Executor) string {
	if l, ok := exec.(Labeler); ok {
		return l.Label()
	}
	return ""
}

// Option configures a Queue or Pool.
type Option func(*options)

type options struct {
	logger *logging.Logger
}

// WithLogger sets the logger used for lifecycle messages and recovered panics.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
