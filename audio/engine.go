// Package audio is the sound effect engine: themed one-shot cues by event id
// and the gallop loop driven by drag speed
//
// Nothing here returns an error to the caller of a cue. Sound is best effort;
// failures are logged and counted in the status registry.
package audio

import (
	"log"

	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/status"
	"github.com/lixenwraith/gallop/synth"
)

// Options wires an Engine; zero fields get working defaults
type Options struct {
	// Store holds user settings; default is an in-memory store
	Store *config.Store
	// Acquirer owns the shared device; built from Factory when nil
	Acquirer *device.Acquirer
	// Factory creates the device on first use; default is the auto beep output
	Factory device.Factory
	Clock   clock.Clock
	Synth   *synth.Synth
	Logger  *log.Logger
	Status  *status.Registry
}

type deps struct {
	store  *config.Store
	acq    *device.Acquirer
	clock  clock.Clock
	synth  *synth.Synth
	logger *log.Logger
	status *status.Registry
}

// Engine is the public surface used by the UI
type Engine struct {
	deps
	player *Player
	gallop *Gallop
}

// New builds an engine; no device is created until the first cue
func New(opts Options) *Engine {
	d := deps{
		store:  opts.Store,
		acq:    opts.Acquirer,
		clock:  opts.Clock,
		synth:  opts.Synth,
		logger: opts.Logger,
		status: opts.Status,
	}
	if d.logger == nil {
		d.logger = log.Default()
	}
	if d.store == nil {
		d.store = config.NewStore(config.NewMemoryStorage(), d.logger)
	}
	if d.acq == nil {
		factory := opts.Factory
		if factory == nil {
			factory = defaultFactory()
		}
		d.acq = device.NewAcquirer(factory, d.logger)
	}
	if d.clock == nil {
		d.clock = defaultClock()
	}
	if d.synth == nil {
		d.synth = synth.New(nil, nil)
	}
	if d.status == nil {
		d.status = status.NewRegistry()
	}
	return &Engine{
		deps:   d,
		player: newPlayer(&d),
		gallop: newGallop(&d),
	}
}

// Play fires the cue for id
func (e *Engine) Play(id core.EventID) { e.player.Play(id) }

// StartGallop begins the hoof loop
func (e *Engine) StartGallop() { e.gallop.Start() }

// UpdateGallop feeds the normalized drag speed
func (e *Engine) UpdateGallop(speed float64) { e.gallop.Update(speed) }

// StopGallop ends the hoof loop with a settling tap
func (e *Engine) StopGallop() { e.gallop.Stop() }

// Gallop exposes the sequencer state
func (e *Engine) Gallop() *Gallop { return e.gallop }

// Config returns the effective settings
func (e *Engine) Config() config.SoundConfig { return e.store.Get() }

// SetConfig merges p into the settings; persistence failures are logged
func (e *Engine) SetConfig(p config.Patch) {
	if err := e.store.Set(p); err != nil {
		e.logger.Printf("audio: %v", err)
	}
}

// Store returns the settings store
func (e *Engine) Store() *config.Store { return e.store }

// Status returns the metrics registry
func (e *Engine) Status() *status.Registry { return e.status }

// Synth returns the cue synthesizer
func (e *Engine) Synth() *synth.Synth { return e.synth }

// Device returns the shared device if it has been created
func (e *Engine) Device() device.Device { return e.acq.Current() }

// Close stops the loop without a settling tap and releases the device
func (e *Engine) Close() error {
	e.gallop.halt()
	return e.acq.Close()
}
