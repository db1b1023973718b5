// Package metrics exposes the engine's realtime warning counters
// (buffer-pool overflow allocations, dropped commands, dropped events,
// device underruns) as Prometheus gauges. Nothing here runs on the audio
// thread: the engine only ever increments plain atomic counters, and this
// package polls them from the controller side on a ticker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the gauges and the poll function that refreshes them.
type Collector struct {
	DroppedCommands prometheus.Gauge
	DroppedEvents   prometheus.Gauge
	Underruns       prometheus.Gauge
	BufferPoolAllocs prometheus.Gauge
	BufferPoolPeak   prometheus.Gauge
}

// NewCollector registers the engine's gauges against reg (pass
// prometheus.DefaultRegisterer for the process-wide default).
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		DroppedCommands: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightningbeam",
			Subsystem: "engine",
			Name:      "dropped_commands_total",
			Help:      "Cumulative number of commands dropped because the command ring was full.",
		}),
		DroppedEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightningbeam",
			Subsystem: "engine",
			Name:      "dropped_events_total",
			Help:      "Cumulative number of events dropped because the event ring was full.",
		}),
		Underruns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightningbeam",
			Subsystem: "device",
			Name:      "underruns_total",
			Help:      "Cumulative number of audio device buffer underruns.",
		}),
		BufferPoolAllocs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightningbeam",
			Subsystem: "bufferpool",
			Name:      "allocations_total",
			Help:      "Cumulative number of buffers allocated beyond the pool's initial capacity.",
		}),
		BufferPoolPeak: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightningbeam",
			Subsystem: "bufferpool",
			Name:      "peak_usage",
			Help:      "Peak number of buffers concurrently in use from the pool.",
		}),
	}
}

// Source is the subset of Controller's methods this package polls; kept as
// an interface so metrics has no import-time dependency on
// internal/engine.
type Source interface {
	DroppedCommands() uint64
	DroppedEvents() uint64
	Underruns() uint64
}

// Poll refreshes the gauges from src. Call on a ticker from the
// controller's goroutine, never from the audio thread.
func (c *Collector) Poll(src Source) {
	c.DroppedCommands.Set(float64(src.DroppedCommands()))
	c.DroppedEvents.Set(float64(src.DroppedEvents()))
	c.Underruns.Set(float64(src.Underruns()))
}

// PollBufferPool refreshes the buffer-pool gauges from a bufferpool.Stats
// snapshot, taken as plain fields so this package does not import
// internal/bufferpool.
func (c *Collector) PollBufferPool(allocations, peakUsage uint64) {
	c.BufferPoolAllocs.Set(float64(allocations))
	c.BufferPoolPeak.Set(float64(peakUsage))
}
