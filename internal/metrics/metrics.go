// Package metrics defines the Prometheus collectors exported by timer
// sources. Collectors are registered on a caller-supplied registerer so that
// tests and embedders can keep them off the global registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace       = "cfoundation"
	timersSubsystem = "timers"
)

// Timers holds the collectors for one timer source. A nil *Timers is valid
// and records nothing.
type Timers struct {
	Created  prometheus.Counter
	Released prometheus.Counter
	Live     prometheus.Gauge
	Ticks    prometheus.Counter
}

// NewTimers creates the timer collectors and registers them on reg. The
// source label distinguishes collectors of several sources on one registry.
func NewTimers(reg prometheus.Registerer, source string) *Timers {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"source": source}

	return &Timers{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   timersSubsystem,
			Name:        "created_total",
			Help:        "Total timers created by the source",
			ConstLabels: labels,
		}),
		Released: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   timersSubsystem,
			Name:        "released_total",
			Help:        "Total timers cancelled and removed from the source",
			ConstLabels: labels,
		}),
		Live: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   timersSubsystem,
			Name:        "live",
			Help:        "Number of timers currently registered in the source",
			ConstLabels: labels,
		}),
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   timersSubsystem,
			Name:        "ticks_total",
			Help:        "Total ticks delivered by timers of the source",
			ConstLabels: labels,
		}),
	}
}

// TimerCreated records a new registration.
func (m *Timers) TimerCreated() {
	if m == nil {
		return
	}
	m.Created.Inc()
	m.Live.Inc()
}

// TimerReleased records a removal.
func (m *Timers) TimerReleased() {
	if m == nil {
		return
	}
	m.Released.Inc()
	m.Live.Dec()
}

// Tick records one delivered tick.
func (m *Timers) Tick() {
	if m == nil {
		return
	}
	m.Ticks.Inc()
}
