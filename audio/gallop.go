package audio

import (
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/parameter"
	"github.com/lixenwraith/gallop/status"
	"github.com/lixenwraith/gallop/synth"
)

// GallopInterval maps speed to the spacing between hoof beats
// 0 is the slowest gait, 1 the fastest
func GallopInterval(speed float64) time.Duration {
	speed = clampSpeed(speed)
	span := float64(parameter.GallopMaxInterval - parameter.GallopMinInterval)
	return parameter.GallopMaxInterval - time.Duration(math.Round(speed*span))
}

// GallopVolume maps speed to a hoof volume between 0.3 and 1.0 of master
func GallopVolume(speed, master float64) float64 {
	return master * (parameter.GallopBaseVolume + parameter.GallopSpeedVolume*clampSpeed(speed))
}

func clampSpeed(s float64) float64 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Gallop is the self-paced hoof loop driven by drag speed
//
// Idle until Start. While running each tick either plays a hoof and waits a
// speed-derived interval (active) or, when no Update arrived for the coast
// threshold, re-checks shortly without sound (coasting). Stop cancels the
// pending tick and plays one quiet settling tap.
type Gallop struct {
	mu      sync.Mutex
	running bool
	speed   float64
	last    time.Time
	pending clock.Timer
	gen     uint64

	store  *config.Store
	acq    *device.Acquirer
	clock  clock.Clock
	synth  *synth.Synth
	logger *log.Logger

	starts *atomic.Int64
	ticks  *atomic.Int64
	coasts *atomic.Int64
	failed *atomic.Int64
	graphs *atomic.Int64
	gauge  *status.Gauge
}

func newGallop(deps *deps) *Gallop {
	return &Gallop{
		store:  deps.store,
		acq:    deps.acq,
		clock:  deps.clock,
		synth:  deps.synth,
		logger: deps.logger,
		starts: deps.status.Counter(status.GallopStarts),
		ticks:  deps.status.Counter(status.GallopTicks),
		coasts: deps.status.Counter(status.GallopCoasts),
		failed: deps.status.Counter(status.PlayerFailed),
		graphs: deps.status.Counter(status.DeviceGraphs),
		gauge:  deps.status.Gauge(status.GallopSpeed),
	}
}

// Start enters the loop and plays the first beat immediately
// Ignored when sound is disabled or the loop is already running
func (g *Gallop) Start() {
	defer g.rescue("start")

	if !g.store.Get().Enabled {
		return
	}
	// Failure is cached by the acquirer; beats are then skipped silently
	g.acq.Acquire()

	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return
	}
	g.running = true
	g.speed = 0
	g.last = g.clock.Now()
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	g.starts.Add(1)
	g.gauge.Store(0)
	g.tick(gen)
}

// Update stores the latest drag speed and marks the input as fresh
func (g *Gallop) Update(speed float64) {
	speed = clampSpeed(speed)
	g.mu.Lock()
	g.speed = speed
	g.last = g.clock.Now()
	g.mu.Unlock()
	g.gauge.Store(speed)
}

// Stop cancels the pending beat and plays the settling tap
func (g *Gallop) Stop() {
	defer g.rescue("stop")

	if !g.halt() {
		return
	}

	cfg := g.store.Get()
	if !cfg.Audible() {
		return
	}
	dev := g.acq.Current()
	if dev == nil {
		return
	}
	vol := cfg.Volume * parameter.GallopSettleVolume
	if err := g.synth.MaterialHit(metered{dev, g.graphs}, dev.CurrentTime(), vol, cfg.Theme, core.StrikeTap); err != nil {
		g.failed.Add(1)
		g.logger.Printf("audio: gallop settle: %v", err)
	}
}

// halt resets to idle and reports whether the loop was running
func (g *Gallop) halt() bool {
	g.mu.Lock()
	wasRunning := g.running
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
	// A callback already in flight sees the new generation and exits
	g.gen++
	g.running = false
	g.speed = 0
	g.mu.Unlock()

	g.gauge.Store(0)
	return wasRunning
}

// Running reports whether the loop is active
func (g *Gallop) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Speed returns the last stored speed
func (g *Gallop) Speed() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.speed
}

// Coasting reports whether the loop is running without recent input
func (g *Gallop) Coasting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running && g.clock.Now().Sub(g.last) > parameter.GallopCoastThreshold
}

func (g *Gallop) tick(gen uint64) {
	defer g.rescue("tick")

	g.mu.Lock()
	if !g.running || gen != g.gen {
		g.mu.Unlock()
		return
	}
	next := func() { g.tick(gen) }
	if g.clock.Now().Sub(g.last) > parameter.GallopCoastThreshold {
		g.pending = g.clock.AfterFunc(parameter.GallopCoastPoll, next)
		g.mu.Unlock()
		g.coasts.Add(1)
		return
	}
	speed := g.speed
	g.pending = g.clock.AfterFunc(GallopInterval(speed), next)
	g.mu.Unlock()

	g.ticks.Add(1)
	g.beat(speed)
}

// beat plays one hoof on the existing device; disabled sound or a missing device skip it
func (g *Gallop) beat(speed float64) {
	cfg := g.store.Get()
	if !cfg.Audible() {
		return
	}
	dev := g.acq.Current()
	if dev == nil {
		return
	}
	vol := GallopVolume(speed, cfg.Volume)
	if err := g.synth.Hoof(metered{dev, g.graphs}, dev.CurrentTime(), vol, cfg.Theme); err != nil {
		g.failed.Add(1)
		g.logger.Printf("audio: gallop beat: %v", err)
	}
}

func (g *Gallop) rescue(op string) {
	if r := recover(); r != nil {
		g.failed.Add(1)
		g.logger.Printf("audio: gallop %s: panic: %v", op, r)
	}
}
