package notify

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/event"
	"github.com/Iron-Ham/cfoundation/internal/logging"
	"github.com/Iron-Ham/cfoundation/internal/subscription"
)

// LocalCenter is an in-process Center. Post delivers synchronously to every
// matching observer on the posting goroutine.
type LocalCenter struct {
	bus    *event.Bus
	bag    *subscription.Bag
	logger *logging.Logger
	closed atomic.Bool
}

// NewLocalCenter creates a LocalCenter.
func NewLocalCenter(opts ...Option) *LocalCenter {
	o := buildOptions(opts)
	return &LocalCenter{
		bus:    o.bus,
		bag:    subscription.NewBag(),
		logger: o.logger.WithComponent("notify"),
	}
}

// Post publishes n to the center's observers.
func (c *LocalCenter) Post(n Notification) error {
	if c.closed.Load() {
		return ErrClosed
	}
	n, err := prepare(n)
	if err != nil {
		return err
	}
	c.deliver(n)
	return nil
}

// deliver publishes an already prepared notification.
func (c *LocalCenter) deliver(n Notification) {
	ev := event.NewNotificationPostedEvent(string(n.Name), n.UserInfo, n.Sender)
	ev.PostedAt = n.PostedAt
	c.bus.Publish(ev)
}

// Observe registers fn for notifications named name.
func (c *LocalCenter) Observe(name Name, fn Handler) (*subscription.Handle, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return c.observe(func(n Notification) {
		if n.Name == name {
			fn(n)
		}
	})
}

// ObserveAll registers fn for every notification.
func (c *LocalCenter) ObserveAll(fn Handler) (*subscription.Handle, error) {
	return c.observe(fn)
}

func (c *LocalCenter) observe(fn Handler) (*subscription.Handle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	h := subscription.Sink(c.bag, c.bus, event.TypeNotificationPosted, func(e event.Event) {
		posted, ok := e.(event.NotificationPostedEvent)
		if !ok {
			return
		}
		fn(Notification{
			Name:     Name(posted.Name),
			UserInfo: posted.UserInfo,
			Sender:   posted.Sender,
			PostedAt: posted.PostedAt,
		})
	})
	return h, nil
}

// Close detaches every observer.
func (c *LocalCenter) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.bag.CancelAll()
	c.logger.Debug("local center closed")
	return nil
}

// prepare validates n and fills in its sender and timestamp.
func prepare(n Notification) (Notification, error) {
	if n.Name == "" {
		return n, ErrEmptyName
	}
	if n.Sender == 0 {
		n.Sender = os.Getpid()
	}
	if n.PostedAt.IsZero() {
		n.PostedAt = time.Now()
	}
	return n, nil
}

var _ Center = (*LocalCenter)(nil)
