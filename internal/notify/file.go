package notify

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/cfoundation/internal/logging"
	"github.com/Iron-Ham/cfoundation/internal/subscription"
)

// LogFileName is the append-only log shared by FileCenters on a directory.
const LogFileName = "notifications.jsonl"

// FileCenter is a Center shared between processes through a directory.
//
// Post appends to the directory's log file. A watcher goroutine reads lines
// appended since the center was created, by this or any other process, and
// delivers them to local observers. Observers therefore run on the watcher
// goroutine, not on the posting goroutine.
type FileCenter struct {
	dir    string
	path   string
	local  *LocalCenter
	logger *logging.Logger

	writeMu sync.Mutex

	readMu sync.Mutex
	offset int64

	watcher  *fsnotify.Watcher
	poll     time.Duration
	closed   atomic.Bool
	stopCh   chan struct{}
	loopDone chan struct{}
}

// NewFileCenter creates a FileCenter on dir, creating the directory if
// needed, and starts watching it.
func NewFileCenter(dir string, opts ...Option) (*FileCenter, error) {
	o := buildOptions(opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notify: create directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("notify: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("notify: watch %s: %w", dir, err)
	}

	c := &FileCenter{
		dir:      dir,
		path:     filepath.Join(dir, LogFileName),
		local:    NewLocalCenter(WithBus(o.bus), WithLogger(o.logger)),
		logger:   o.logger.WithComponent("notify").With("dir", dir),
		watcher:  watcher,
		poll:     o.pollInterval,
		stopCh:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	// Start at the current end of the log: earlier notifications are not replayed.
	if info, err := os.Stat(c.path); err == nil {
		c.offset = info.Size()
	}

	go c.watchLoop()
	c.logger.Debug("file center started", "offset", c.offset)
	return c, nil
}

// Dir returns the shared directory.
func (c *FileCenter) Dir() string {
	return c.dir
}

// Post appends n to the shared log.
func (c *FileCenter) Post(n Notification) error {
	if c.closed.Load() {
		return ErrClosed
	}
	n, err := prepare(n)
	if err != nil {
		return err
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: marshal notification: %w", err)
	}
	data = append(data, '\n')

	return c.atomicAppend(data)
}

// Observe registers fn for notifications named name.
func (c *FileCenter) Observe(name Name, fn Handler) (*subscription.Handle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.local.Observe(name, fn)
}

// ObserveAll registers fn for every notification.
func (c *FileCenter) ObserveAll(fn Handler) (*subscription.Handle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.local.ObserveAll(fn)
}

// Close stops watching the directory and detaches every observer.
func (c *FileCenter) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(c.stopCh)
	<-c.loopDone

	err := c.watcher.Close()
	_ = c.local.Close()
	c.logger.Debug("file center closed")
	return err
}

// atomicAppend writes one line to the log. Lines are small enough that
// O_APPEND keeps concurrent writers from interleaving on POSIX systems.
func (c *FileCenter) atomicAppend(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("notify: open log for append: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("notify: append to log: %w", err)
	}
	return f.Close()
}

func (c *FileCenter) watchLoop() {
	defer close(c.loopDone)

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return

		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != LogFileName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.drain()

		case <-ticker.C:
			c.drain()

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("watcher error", "error", err)
		}
	}
}

// drain delivers every complete line appended since the last read.
func (c *FileCenter) drain() {
	notifications, err := c.readNew()
	if err != nil {
		c.logger.Warn("failed to read notification log", "error", err)
	}
	for _, n := range notifications {
		c.local.deliver(n)
	}
}

func (c *FileCenter) readNew() ([]Notification, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.offset = 0
			return nil, nil
		}
		return nil, fmt.Errorf("notify: open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("notify: stat log: %w", err)
	}
	if info.Size() < c.offset {
		// The log was truncated or replaced.
		c.offset = 0
	}
	if info.Size() == c.offset {
		return nil, nil
	}

	if _, err := f.Seek(c.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("notify: seek log: %w", err)
	}

	var notifications []Notification
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// A line without its newline is still being written.
			if errors.Is(err, io.EOF) {
				break
			}
			return notifications, fmt.Errorf("notify: read log: %w", err)
		}
		c.offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var n Notification
		if err := json.Unmarshal(line, &n); err != nil {
			c.logger.Debug("skipping malformed notification", "error", err)
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

var _ Center = (*FileCenter)(nil)
