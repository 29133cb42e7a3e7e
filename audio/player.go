package audio

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/graph"
	"github.com/lixenwraith/gallop/parameter"
	"github.com/lixenwraith/gallop/status"
	"github.com/lixenwraith/gallop/synth"
)

// ThrottleWindow returns the minimum spacing between two accepted plays of id
func ThrottleWindow(id core.EventID) time.Duration {
	switch id {
	case core.EventTap:
		return parameter.ThrottleTap
	case core.EventNavigate:
		return parameter.ThrottleNavigate
	}
	return 0
}

// Player fires one-shot cues by event id
type Player struct {
	mu   sync.Mutex
	last map[core.EventID]time.Time

	store  *config.Store
	acq    *device.Acquirer
	clock  clock.Clock
	synth  *synth.Synth
	logger *log.Logger

	played    *atomic.Int64
	throttled *atomic.Int64
	muted     *atomic.Int64
	failed    *atomic.Int64
	graphs    *atomic.Int64
}

func newPlayer(deps *deps) *Player {
	return &Player{
		last:      make(map[core.EventID]time.Time),
		store:     deps.store,
		acq:       deps.acq,
		clock:     deps.clock,
		synth:     deps.synth,
		logger:    deps.logger,
		played:    deps.status.Counter(status.PlayerPlayed),
		throttled: deps.status.Counter(status.PlayerThrottled),
		muted:     deps.status.Counter(status.PlayerMuted),
		failed:    deps.status.Counter(status.PlayerFailed),
		graphs:    deps.status.Counter(status.DeviceGraphs),
	}
}

// Play fires the cue for id; failures are logged and counted, never returned
func (p *Player) Play(id core.EventID) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.logger.Printf("audio: play %s: panic: %v", id, r)
		}
	}()

	cfg := p.store.Get()
	if !cfg.Audible() {
		p.muted.Add(1)
		return
	}
	if !id.Known() {
		p.failed.Add(1)
		p.logger.Printf("audio: play: %v: %q", core.ErrUnknownName, string(id))
		return
	}
	if !p.admit(id) {
		p.throttled.Add(1)
		return
	}

	dev, err := p.acq.Acquire()
	if err != nil {
		// Acquirer already logged the cause
		p.failed.Add(1)
		return
	}
	if err := p.dispatch(metered{dev, p.graphs}, id, cfg); err != nil {
		p.failed.Add(1)
		p.logger.Printf("audio: play %s: %v", id, err)
		return
	}
	p.played.Add(1)
}

// admit checks and updates the throttle ledger
func (p *Player) admit(id core.EventID) bool {
	now := p.clock.Now()
	window := ThrottleWindow(id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if last, ok := p.last[id]; ok && window > 0 && now.Sub(last) < window {
		return false
	}
	p.last[id] = now
	return true
}

func (p *Player) dispatch(dst device.Device, id core.EventID, cfg config.SoundConfig) error {
	now := dst.CurrentTime()
	vol, theme, s := cfg.Volume, cfg.Theme, p.synth

	switch id {
	case core.EventTap:
		return s.MaterialHit(dst, now, vol, theme, core.StrikeTap)
	case core.EventSelect:
		return s.MaterialHit(dst, now, vol, theme, core.StrikeSelect)
	case core.EventNavigate:
		return s.Swish(dst, now, vol, theme)
	case core.EventGallopStep:
		return s.Hoof(dst, now, vol, theme)
	case core.EventHomeEnter:
		return s.Gong(dst, now, vol, theme, parameter.HomeGongScale)
	case core.EventSuccess:
		return errors.Join(
			s.Gong(dst, now, vol, theme, parameter.SuccessGongScale),
			s.Arpeggio(dst, now+parameter.SuccessArpeggioDelay, vol, theme),
		)
	case core.EventPageTurn:
		return s.Paper(dst, now, vol)
	case core.EventStamp:
		return s.Thud(dst, now, vol)
	case core.EventError:
		return s.Buzz(dst, now, vol)
	case core.EventWhinny:
		return s.Whinny(dst, now, vol)
	}
	return fmt.Errorf("%w: %q", core.ErrUnknownName, string(id))
}

// metered counts graphs the device accepted
type metered struct {
	device.Device
	graphs *atomic.Int64
}

func (m metered) Start(g *graph.Graph) error {
	if err := m.Device.Start(g); err != nil {
		return err
	}
	m.graphs.Add(1)
	return nil
}
