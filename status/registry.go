package status

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Metric keys written by the audio engine
const (
	PlayerPlayed    = "player.played"
	PlayerThrottled = "player.throttled"
	PlayerMuted     = "player.muted"
	PlayerFailed    = "player.failed"
	GallopStarts    = "gallop.starts"
	GallopTicks     = "gallop.ticks"
	GallopCoasts    = "gallop.coasts"
	GallopSpeed     = "gallop.speed"
	DeviceGraphs    = "device.graphs"
)

// Registry holds the engine's counters and gauges
// Components fetch their pointers once at construction and update them lock-free
type Registry struct {
	counters table[atomic.Int64]
	gauges   table[Gauge]
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Counter returns the counter for key, creating it on first use
func (r *Registry) Counter(key string) *atomic.Int64 { return r.counters.get(key) }

// Gauge returns the gauge for key, creating it on first use
func (r *Registry) Gauge(key string) *Gauge { return r.gauges.get(key) }

// Lookup finds a counter without registering it
func (r *Registry) Lookup(key string) (*atomic.Int64, bool) { return r.counters.find(key) }

// Len counts registered counters and gauges
func (r *Registry) Len() int { return r.counters.len() + r.gauges.len() }

// Snapshot copies every counter value
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	r.counters.each(func(key string, c *atomic.Int64) {
		out[key] = c.Load()
	})
	return out
}

// WriteTo prints counters then gauges, one per line, each group in key order
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var err error
	emit := func(format string, args ...any) {
		if err != nil {
			return
		}
		n, werr := fmt.Fprintf(w, format, args...)
		total += int64(n)
		err = werr
	}
	r.counters.each(func(key string, c *atomic.Int64) {
		emit("%-18s %d\n", key, c.Load())
	})
	r.gauges.each(func(key string, g *Gauge) {
		emit("%-18s %.3f\n", key, g.Load())
	})
	return total, err
}
