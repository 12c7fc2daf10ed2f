package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTimers_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTimers(reg, "test")

	m.TimerCreated()
	m.TimerCreated()
	m.Tick()
	m.Tick()
	m.Tick()
	m.TimerReleased()

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"created", m.Created, 2},
		{"released", m.Released, 1},
		{"live", m.Live, 1},
		{"ticks", m.Ticks, 3},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(reg); n != 4 {
		t.Errorf("registry has %d metrics, want 4", n)
	}
}

func TestTimers_TwoSourcesOneRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewTimers(reg, "a")
	b := NewTimers(reg, "b")

	a.TimerCreated()
	b.TimerCreated()
	b.TimerCreated()

	if got := testutil.ToFloat64(a.Live); got != 1 {
		t.Errorf("a live = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.Live); got != 2 {
		t.Errorf("b live = %v, want 2", got)
	}
}

func TestTimers_NilSafe(t *testing.T) {
	var m *Timers
	m.TimerCreated()
	m.TimerReleased()
	m.Tick()
}
