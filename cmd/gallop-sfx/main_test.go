package main

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/status"
	"github.com/lixenwraith/gallop/synth"
)

const testRate = 8000

func newTestRig(t *testing.T) *offlineRig {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	store := config.NewStore(config.NewMemoryStorage(), logger)
	return newOfflineRig(store, synth.New(nil, nil), testRate, logger)
}

func TestRenderSequence(t *testing.T) {
	rig := newTestRig(t)
	rig.playSequence([]core.EventID{core.EventTap, core.EventSuccess}, 500*time.Millisecond)

	if d := rig.dev.Duration(); d < 0.5 {
		t.Fatalf("duration = %v, want the success cue after the gap", d)
	}
	lvl := device.Measure(rig.dev.Samples())
	if lvl.Peak == 0 {
		t.Fatal("silent render")
	}
	if n := rig.eng.Status().Counter(status.PlayerPlayed).Load(); n != 2 {
		t.Errorf("played = %d", n)
	}
}

func TestRenderGallopSweep(t *testing.T) {
	rig := newTestRig(t)
	rig.gallop(sweepSpeed, time.Second, 0, 16*time.Millisecond)

	if rig.eng.Gallop().Running() {
		t.Fatal("gallop still running after release")
	}
	ticks := rig.eng.Status().Counter(status.GallopTicks).Load()
	// Interval shrinks from 350ms toward 120ms as speed rises
	if ticks < 4 || ticks > 9 {
		t.Errorf("ticks = %d", ticks)
	}
	if device.Measure(rig.dev.Samples()).Peak == 0 {
		t.Error("silent gallop")
	}
}

func TestRenderGallopHoldCoasts(t *testing.T) {
	rig := newTestRig(t)
	rig.gallop(constantSpeed(1), 200*time.Millisecond, time.Second, 16*time.Millisecond)

	if n := rig.eng.Status().Counter(status.GallopCoasts).Load(); n == 0 {
		t.Error("holding still never coasted")
	}
}

func TestSweepSpeed(t *testing.T) {
	if got := sweepSpeed(500*time.Millisecond, time.Second); got != 0.5 {
		t.Errorf("midpoint = %v", got)
	}
	if got := sweepSpeed(0, 0); got != 1 {
		t.Errorf("zero length = %v", got)
	}
}

func TestParseEvents(t *testing.T) {
	got, err := parseEvents([]string{"ui.tap", "result.success"})
	if err != nil || len(got) != 2 || got[1] != core.EventSuccess {
		t.Fatalf("parseEvents = %v, %v", got, err)
	}
	if _, err := parseEvents(nil); err == nil {
		t.Error("empty list accepted")
	}
	if _, err := parseEvents([]string{"ui.explode"}); err == nil {
		t.Error("unknown event accepted")
	}
}

func TestCommonOverlay(t *testing.T) {
	t.Setenv("GALLOP_SFX_THEME", "zen")
	t.Setenv("GALLOP_SFX_VOLUME", "")
	c := common{theme: "jade", volume: 0.25}
	p, err := c.overlay()
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default().Apply(p)
	if cfg.Theme.String() != "jade" || cfg.Volume != 0.25 {
		t.Errorf("overlay = %+v", cfg)
	}

	c = common{theme: "disco", volume: -1}
	if _, err := c.overlay(); err == nil {
		t.Error("unknown theme accepted")
	}
}

func TestCommonValidateRate(t *testing.T) {
	if err := (&common{rate: 100}).validate(); err == nil {
		t.Error("rate 100 accepted")
	}
	if err := (&common{rate: 48000}).validate(); err != nil {
		t.Error(err)
	}
}
