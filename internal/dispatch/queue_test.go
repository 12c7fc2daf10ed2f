package dispatch

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/logging"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue("fifo")
	defer q.Close()

	var got []int
	for i := range 100 {
		q.Async(func() { got = append(got, i) })
	}
	if err := q.Sync(func() {}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestQueue_Serial(t *testing.T) {
	q := NewQueue("serial")
	defer q.Close()

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			q.Async(func() {
				n := running.Add(1)
				if n > maxRunning.Load() {
					maxRunning.Store(n)
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
			})
		})
	}
	wg.Wait()
	_ = q.Sync(func() {})

	if got := maxRunning.Load(); got != 1 {
		t.Errorf("max concurrent tasks = %d, want 1", got)
	}
}

func TestQueue_PanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	q := NewQueue("panicky", WithLogger(logging.New(&buf, logging.LevelDebug)))
	defer q.Close()

	q.Async(func() { panic("boom") })

	ran := false
	if err := q.Sync(func() { ran = true }); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !ran {
		t.Error("queue should keep running after a task panics")
	}
	if !strings.Contains(buf.String(), "task panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestQueue_CloseDrains(t *testing.T) {
	q := NewQueue("drain")

	var count atomic.Int32
	for range 50 {
		q.Async(func() { count.Add(1) })
	}
	q.Close()

	if got := count.Load(); got != 50 {
		t.Errorf("ran %d tasks before close, want 50", got)
	}

	q.Async(func() { count.Add(1) })
	if err := q.Sync(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Sync() after Close error = %v, want ErrClosed", err)
	}
	if got := count.Load(); got != 50 {
		t.Errorf("task ran after Close, count = %d", got)
	}

	// Second Close must not block or panic.
	q.Close()
}

func TestQueue_AsyncAfter(t *testing.T) {
	q := NewQueue("delayed")
	defer q.Close()

	done := make(chan time.Time, 1)
	start := time.Now()
	q.AsyncAfter(20*time.Millisecond, func() { done <- time.Now() })

	select {
	case at := <-done:
		if at.Sub(start) < 20*time.Millisecond {
			t.Errorf("work ran after %v, want at least 20ms", at.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed work never ran")
	}
}

func TestQueue_AsyncAfterCancel(t *testing.T) {
	q := NewQueue("cancelled")
	defer q.Close()

	var ran atomic.Bool
	item := q.AsyncAfter(10*time.Millisecond, func() { ran.Store(true) })
	item.Cancel()

	if !item.Cancelled() {
		t.Error("item should report cancelled")
	}

	time.Sleep(50 * time.Millisecond)
	_ = q.Sync(func() {})
	if ran.Load() {
		t.Error("cancelled work item ran")
	}
}

func TestMainQueue_Singleton(t *testing.T) {
	if Main() != Main() {
		t.Error("Main() should return the same queue")
	}
	if Main().Label() != "main" {
		t.Errorf("Main().Label() = %q, want main", Main().Label())
	}
}

func TestLabelOf(t *testing.T) {
	q := NewQueue("labelled")
	defer q.Close()

	tests := []struct {
		name string
		exec Executor
		want string
	}{
		{"queue", q, "labelled"},
		{"pool", NewPool("workers", 2), "workers"},
		{"func executor", funcExecutor(func(fn func()) { fn() }), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelOf(tt.exec); got != tt.want {
				t.Errorf("LabelOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

type funcExecutor func(func())

func (f funcExecutor) Async(fn func()) { f(fn) }

func TestSubmit(t *testing.T) {
	q := NewQueue("submit")
	done := make(chan struct{})
	if !Submit(q, func() { close(done) }) {
		t.Fatal("Submit() to an open queue = false, want true")
	}
	<-done
	q.Close()

	if Submit(q, func() { t.Error("task ran on a closed queue") }) {
		t.Error("Submit() to a closed queue = true, want false")
	}

	var ran atomic.Bool
	if !Submit(funcExecutor(func(fn func()) { fn() }), func() { ran.Store(true) }) {
		t.Error("Submit() to a plain executor = false, want true")
	}
	if !ran.Load() {
		t.Error("plain executor did not run the task")
	}
}
