package main

import (
	"log"
	"time"

	"github.com/lixenwraith/gallop/audio"
	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/synth"
)

// offlineRig runs an engine against an offline device on a simulated clock
type offlineRig struct {
	clk *clock.Mock
	dev *device.Offline
	eng *audio.Engine
}

func newOfflineRig(store *config.Store, s *synth.Synth, rate int, logger *log.Logger) *offlineRig {
	start := time.Unix(0, 0)
	clk := clock.NewMock(start)
	dev := device.NewOffline(rate, func() float64 { return clk.Now().Sub(start).Seconds() })
	eng := audio.New(audio.Options{
		Store:   store,
		Factory: func() (device.Device, error) { return dev, nil },
		Clock:   clk,
		Synth:   s,
		Logger:  logger,
	})
	return &offlineRig{clk: clk, dev: dev, eng: eng}
}

// playSequence fires each event gap apart
func (r *offlineRig) playSequence(events []core.EventID, gap time.Duration) {
	for i, id := range events {
		if i > 0 {
			r.clk.Advance(gap)
		}
		r.eng.Play(id)
	}
}

// speedCurve gives the drag speed at an offset into the simulated drag
type speedCurve func(elapsed, total time.Duration) float64

func constantSpeed(s float64) speedCurve {
	return func(time.Duration, time.Duration) float64 { return s }
}

// sweepSpeed ramps from rest to full speed across the drag
func sweepSpeed(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return float64(elapsed) / float64(total)
}

// gallop drags for duration, feeding speed every step, then holds still for hold before release
func (r *offlineRig) gallop(curve speedCurve, duration, hold, step time.Duration) {
	r.eng.StartGallop()
	for elapsed := time.Duration(0); elapsed < duration; elapsed += step {
		r.eng.UpdateGallop(curve(elapsed, duration))
		r.clk.Advance(step)
	}
	r.clk.Advance(hold)
	r.eng.StopGallop()
}
