package audio

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/graph"
	"github.com/lixenwraith/gallop/parameter"
	"github.com/lixenwraith/gallop/service"
	"github.com/lixenwraith/gallop/status"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type rig struct {
	clk     *clock.Mock
	rec     *device.Recorder
	eng     *Engine
	logs    *bytes.Buffer
	created int
}

func newRig(t *testing.T, factoryErr error) *rig {
	t.Helper()
	r := &rig{clk: clock.NewMock(epoch), logs: &bytes.Buffer{}}
	r.rec = device.NewRecorder(8000, r.deviceTime)
	logger := log.New(r.logs, "", 0)
	r.eng = New(Options{
		Store: config.NewStore(config.NewMemoryStorage(), logger),
		Factory: func() (device.Device, error) {
			r.created++
			if factoryErr != nil {
				return nil, factoryErr
			}
			return r.rec, nil
		},
		Clock:  r.clk,
		Logger: logger,
	})
	return r
}

func (r *rig) deviceTime() float64 { return r.clk.Now().Sub(epoch).Seconds() }

func (r *rig) counter(key string) int64 { return r.eng.Status().Counter(key).Load() }

// drive feeds speed every step for d, advancing the clock
func (r *rig) drive(speed float64, d, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		r.eng.UpdateGallop(speed)
		r.clk.Advance(step)
	}
}

type hit struct {
	at  float64
	vol float64
}

// hoofs extracts the start time and master volume of every recorded hoof
func (r *rig) hoofs() []hit {
	var out []hit
	for _, e := range r.rec.Entries() {
		master, ok := e.Graph.Nodes()[0].(*graph.Gain)
		if !ok {
			continue
		}
		out = append(out, hit{at: e.Graph.Origin(), vol: master.Gain.Events()[0].Value})
	}
	return out
}

// taps extracts the peak gain of every recorded material hit
func (r *rig) taps() []float64 {
	var out []float64
	for _, e := range r.rec.Entries() {
		if _, ok := e.Graph.Nodes()[0].(*graph.Oscillator); !ok || len(e.Graph.Sources()) != 1 {
			continue
		}
		for _, n := range e.Graph.Nodes() {
			if amp, ok := n.(*graph.Gain); ok {
				out = append(out, amp.Gain.Events()[1].Value)
			}
		}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestGallopMappingsMonotone(t *testing.T) {
	prevI := GallopInterval(0)
	prevV := GallopVolume(0, 0.6)
	if prevI != 350*time.Millisecond || !near(prevV, 0.18) {
		t.Fatalf("speed 0: interval %v volume %v", prevI, prevV)
	}
	for i := 1; i <= 100; i++ {
		s := float64(i) / 100
		iv, vol := GallopInterval(s), GallopVolume(s, 0.6)
		if iv > prevI || iv < parameter.GallopMinInterval || iv > parameter.GallopMaxInterval {
			t.Fatalf("interval(%v) = %v after %v", s, iv, prevI)
		}
		if vol < prevV || vol < 0.3*0.6-1e-12 || vol > 0.6+1e-12 {
			t.Fatalf("volume(%v) = %v after %v", s, vol, prevV)
		}
		prevI, prevV = iv, vol
	}
	if prevI != 120*time.Millisecond || !near(prevV, 0.6) {
		t.Errorf("speed 1: interval %v volume %v", prevI, prevV)
	}
	if GallopInterval(math.NaN()) != parameter.GallopMaxInterval || GallopInterval(7) != parameter.GallopMinInterval {
		t.Error("out of range speed not clamped")
	}
}

func TestThrottleWindows(t *testing.T) {
	tests := []struct {
		name   string
		id     core.EventID
		gap    time.Duration
		played int
	}{
		{"tap inside window", core.EventTap, 20 * time.Millisecond, 1},
		{"tap at window edge", core.EventTap, 40 * time.Millisecond, 2},
		{"tap past window", core.EventTap, 41 * time.Millisecond, 2},
		{"navigate inside window", core.EventNavigate, 79 * time.Millisecond, 1},
		{"navigate past window", core.EventNavigate, 81 * time.Millisecond, 2},
		{"error unthrottled", core.EventError, 0, 2},
		{"stamp unthrottled", core.EventStamp, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, nil)
			r.eng.Play(tt.id)
			r.clk.Advance(tt.gap)
			r.eng.Play(tt.id)
			if got := r.rec.Len(); got != tt.played {
				t.Errorf("graphs = %d, want %d", got, tt.played)
			}
			if got := r.counter(status.PlayerThrottled); got != int64(2-tt.played) {
				t.Errorf("throttled = %d", got)
			}
		})
	}
}

func TestThrottleLedgerIgnoresDroppedCalls(t *testing.T) {
	r := newRig(t, nil)
	// Presses every 30ms: accepted at 0, 60, 120
	for i := 0; i < 5; i++ {
		r.eng.Play(core.EventTap)
		r.clk.Advance(30 * time.Millisecond)
	}
	if got := r.rec.Len(); got != 3 {
		t.Errorf("graphs = %d, want 3", got)
	}
}

func TestThrottleIsPerEvent(t *testing.T) {
	r := newRig(t, nil)
	r.eng.Play(core.EventTap)
	r.eng.Play(core.EventSelect)
	r.eng.Play(core.EventNavigate)
	if got := r.rec.Len(); got != 3 {
		t.Errorf("graphs = %d, want 3", got)
	}
}

func TestEveryEventPlays(t *testing.T) {
	want := map[core.EventID]int{core.EventSuccess: 2}
	for _, theme := range core.Themes() {
		for _, id := range core.Events() {
			r := newRig(t, nil)
			r.eng.SetConfig(config.Patch{}.WithTheme(theme))
			r.eng.Play(id)
			n := want[id]
			if n == 0 {
				n = 1
			}
			if got := r.rec.Len(); got != n {
				t.Errorf("%s/%s: graphs = %d, want %d (logs: %s)", theme, id, got, n, r.logs)
			}
			if got := r.counter(status.DeviceGraphs); got != int64(n) {
				t.Errorf("%s/%s: device.graphs = %d", theme, id, got)
			}
		}
	}
}

func TestSuccessArpeggioFollowsGong(t *testing.T) {
	r := newRig(t, nil)
	r.clk.Advance(time.Second)
	r.eng.Play(core.EventSuccess)

	e := r.rec.Entries()
	if len(e) != 2 {
		t.Fatalf("graphs = %d", len(e))
	}
	if gap := e[1].Graph.Origin() - e[0].Graph.Origin(); !near(gap, parameter.SuccessArpeggioDelay) {
		t.Errorf("arpeggio offset = %v", gap)
	}
	if !near(e[0].Graph.Origin(), 1) {
		t.Errorf("gong at %v, want device time 1", e[0].Graph.Origin())
	}
}

func TestDisabledIsSilentAndLazy(t *testing.T) {
	r := newRig(t, nil)
	r.eng.SetConfig(config.Patch{}.WithEnabled(false))

	r.eng.Play(core.EventTap)
	r.eng.StartGallop()
	r.eng.StopGallop()

	if r.created != 0 {
		t.Errorf("device created %d times while disabled", r.created)
	}
	if r.eng.Gallop().Running() {
		t.Error("gallop started while disabled")
	}
	if r.counter(status.PlayerMuted) != 1 {
		t.Errorf("muted = %d", r.counter(status.PlayerMuted))
	}

	// A muted call leaves no ledger entry
	r.eng.SetConfig(config.Patch{}.WithEnabled(true))
	r.eng.Play(core.EventTap)
	if r.rec.Len() != 1 {
		t.Errorf("graphs = %d after re-enable", r.rec.Len())
	}
}

func TestZeroVolumeIsSilentAndLazy(t *testing.T) {
	r := newRig(t, nil)
	r.eng.SetConfig(config.Patch{}.WithVolume(0))

	r.eng.Play(core.EventTap)
	if r.created != 0 {
		t.Errorf("device created %d times at zero volume", r.created)
	}
	if r.counter(status.PlayerMuted) != 1 {
		t.Errorf("muted = %d", r.counter(status.PlayerMuted))
	}

	// Open the device, then mute by volume mid gallop
	r.eng.SetConfig(config.Patch{}.WithVolume(0.5))
	r.eng.Play(core.EventTap)
	before := r.rec.Len()
	r.eng.SetConfig(config.Patch{}.WithVolume(0))
	r.eng.StartGallop()
	r.drive(1, 500*time.Millisecond, 10*time.Millisecond)
	r.eng.StopGallop()

	if r.rec.Len() != before {
		t.Errorf("graphs grew from %d to %d at zero volume", before, r.rec.Len())
	}
	if r.counter(status.GallopTicks) == 0 {
		t.Error("loop never ticked at zero volume")
	}
}

func TestDeviceCreatedOnceAndResumed(t *testing.T) {
	r := newRig(t, nil)
	if r.eng.Device() != nil {
		t.Fatal("device exists before first cue")
	}
	r.eng.Play(core.EventTap)
	r.clk.Advance(time.Second)
	r.eng.Play(core.EventTap)
	if r.created != 1 {
		t.Errorf("device created %d times", r.created)
	}
	if r.rec.State() != device.StateRunning || r.rec.Resumes() != 1 {
		t.Errorf("state %v after %d resumes", r.rec.State(), r.rec.Resumes())
	}
}

func TestDeviceUnavailableDegradesToSilence(t *testing.T) {
	r := newRig(t, errors.New("no sound card"))

	r.eng.Play(core.EventTap)
	r.clk.Advance(time.Second)
	r.eng.Play(core.EventSuccess)
	r.eng.StartGallop()
	r.drive(1, 500*time.Millisecond, 10*time.Millisecond)
	r.eng.StopGallop()

	if r.created != 1 {
		t.Errorf("factory retried: %d calls", r.created)
	}
	if r.counter(status.PlayerFailed) != 2 {
		t.Errorf("failed = %d", r.counter(status.PlayerFailed))
	}
	if n := strings.Count(r.logs.String(), "no sound card"); n != 1 {
		t.Errorf("failure logged %d times:\n%s", n, r.logs)
	}
	if r.clk.Pending() != 0 {
		t.Errorf("pending timers = %d", r.clk.Pending())
	}
}

func TestSynthesisErrorIsAbsorbed(t *testing.T) {
	r := newRig(t, nil)
	r.eng.Play(core.EventTap)
	r.rec.FailWith(errors.New("graph rejected"))
	r.clk.Advance(time.Second)
	r.eng.Play(core.EventTap)

	if r.counter(status.PlayerPlayed) != 1 || r.counter(status.PlayerFailed) != 1 {
		t.Errorf("played=%d failed=%d", r.counter(status.PlayerPlayed), r.counter(status.PlayerFailed))
	}
	if !strings.Contains(r.logs.String(), "graph rejected") {
		t.Errorf("error not logged: %s", r.logs)
	}
}

type panicDevice struct{ *device.Recorder }

func (panicDevice) Start(*graph.Graph) error { panic("driver bug") }

func TestPanicInsideDeviceIsRecovered(t *testing.T) {
	clk := clock.NewMock(epoch)
	var logs bytes.Buffer
	eng := New(Options{
		Factory: func() (device.Device, error) { return panicDevice{device.NewRecorder(8000, nil)}, nil },
		Clock:   clk,
		Logger:  log.New(&logs, "", 0),
	})

	eng.Play(core.EventError)
	eng.StartGallop()
	eng.StopGallop()

	if got := eng.Status().Counter(status.PlayerFailed).Load(); got != 3 {
		t.Errorf("failed = %d, want 3", got)
	}
	if eng.Gallop().Running() {
		t.Error("gallop still running")
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers = %d", clk.Pending())
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	r := newRig(t, nil)
	r.eng.Play("confetti")
	if r.rec.Len() != 0 || r.counter(status.PlayerFailed) != 1 {
		t.Errorf("graphs=%d failed=%d", r.rec.Len(), r.counter(status.PlayerFailed))
	}
}

func TestStartThenStopImmediately(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	r.eng.StopGallop()

	if got := len(r.hoofs()); got > 1 {
		t.Errorf("hoofs = %d, want at most 1", got)
	}
	taps := r.taps()
	if len(taps) != 1 {
		t.Fatalf("settling taps = %d", len(taps))
	}
	// Tap peak is half the requested volume
	if want := 0.5 * 0.6 * parameter.GallopSettleVolume; !near(taps[0], want) {
		t.Errorf("settle peak = %v, want %v", taps[0], want)
	}
	if r.eng.Gallop().Running() || r.clk.Pending() != 0 {
		t.Errorf("running=%v pending=%d", r.eng.Gallop().Running(), r.clk.Pending())
	}

	r.clk.Advance(2 * time.Second)
	if got := r.rec.Len(); got != 2 {
		t.Errorf("graphs after stop = %d", got)
	}
}

func TestRepeatedStartIsOneLoop(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	r.eng.StartGallop()
	r.eng.StartGallop()

	if got := len(r.hoofs()); got != 1 {
		t.Errorf("hoofs = %d", got)
	}
	if r.clk.Pending() != 1 {
		t.Errorf("pending timers = %d", r.clk.Pending())
	}
	if r.counter(status.GallopStarts) != 1 {
		t.Errorf("starts = %d", r.counter(status.GallopStarts))
	}
}

func TestStopWhenIdleIsQuiet(t *testing.T) {
	r := newRig(t, nil)
	r.eng.Play(core.EventTap)
	r.eng.StopGallop()
	if r.rec.Len() != 1 {
		t.Errorf("graphs = %d", r.rec.Len())
	}
}

func TestGallopCoastsWithoutInput(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	r.clk.Advance(time.Second)

	if got := len(r.hoofs()); got != 1 {
		t.Errorf("hoofs while coasting = %d, want 1", got)
	}
	if !r.eng.Gallop().Running() || !r.eng.Gallop().Coasting() {
		t.Error("gallop should stay running while coasting")
	}
	if r.clk.Pending() != 1 {
		t.Errorf("pending timers = %d", r.clk.Pending())
	}
	if r.counter(status.GallopCoasts) == 0 {
		t.Error("no coast polls counted")
	}

	// Polls at 350, 450, ... 950; the next one at 1050 finds fresh input
	r.eng.UpdateGallop(0.5)
	r.clk.Advance(60 * time.Millisecond)
	h := r.hoofs()
	if len(h) != 2 {
		t.Fatalf("hoofs after resume = %d", len(h))
	}
	if !near(h[1].at, 1.05) || !near(h[1].vol, GallopVolume(0.5, 0.6)) {
		t.Errorf("resumed hoof = %+v", h[1])
	}
}

func TestGallopCadenceFollowsSpeed(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	r.drive(1, 600*time.Millisecond, 10*time.Millisecond)
	r.drive(0, 500*time.Millisecond, 10*time.Millisecond)
	r.clk.Advance(time.Second)

	want := []hit{
		{0, 0.18},
		{0.35, 0.6},
		{0.47, 0.6},
		{0.59, 0.6},
		{0.71, 0.18},
		{1.06, 0.18},
	}
	got := r.hoofs()
	if len(got) != len(want) {
		t.Fatalf("hoofs = %+v\nwant %+v", got, want)
	}
	for i := range want {
		if !near(got[i].at, want[i].at) || !near(got[i].vol, want[i].vol) {
			t.Errorf("hoof %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if !r.eng.Gallop().Running() {
		t.Error("gallop stopped without StopGallop")
	}

	r.eng.StopGallop()
	if r.clk.Pending() != 0 {
		t.Errorf("pending timers = %d", r.clk.Pending())
	}
}

func TestDisableDuringGallop(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	r.drive(1, 400*time.Millisecond, 10*time.Millisecond)
	before := r.rec.Len()
	if before != 2 {
		t.Fatalf("hoofs before disable = %d", before)
	}

	r.eng.SetConfig(config.Patch{}.WithEnabled(false))
	r.drive(1, 500*time.Millisecond, 10*time.Millisecond)
	r.eng.Play(core.EventTap)

	if r.rec.Len() != before {
		t.Errorf("graphs grew to %d while disabled", r.rec.Len())
	}
	if r.counter(status.GallopTicks) <= int64(before) {
		t.Error("loop stopped ticking while disabled")
	}

	// Already scheduled graphs are untouched
	if len(r.rec.Entries()) != before {
		t.Error("recorded graphs were dropped")
	}

	r.eng.StopGallop()
	if r.rec.Len() != before {
		t.Error("settling tap played while disabled")
	}
}

func TestUpdateClampsSpeed(t *testing.T) {
	r := newRig(t, nil)
	r.eng.StartGallop()
	for _, tt := range []struct{ in, want float64 }{
		{-1, 0}, {2, 1}, {math.NaN(), 0}, {0.25, 0.25},
	} {
		r.eng.UpdateGallop(tt.in)
		if got := r.eng.Gallop().Speed(); got != tt.want {
			t.Errorf("Update(%v) stored %v", tt.in, got)
		}
	}
	if got := r.eng.Status().Gauge(status.GallopSpeed).Load(); got != 0.25 {
		t.Errorf("speed gauge = %v", got)
	}
}

func TestCorruptConfigUsesDefaults(t *testing.T) {
	storage := config.NewMemoryStorage()
	storage.Save(parameter.ConfigStorageKey, []byte("{enabled: [oops"))
	var logs bytes.Buffer
	eng := New(Options{
		Store:   config.NewStore(storage, log.New(&logs, "", 0)),
		Factory: func() (device.Device, error) { return device.NewRecorder(8000, nil), nil },
		Clock:   clock.NewMock(epoch),
		Logger:  log.New(&logs, "", 0),
	})
	if got := eng.Config(); got != config.Default() {
		t.Errorf("config = %+v", got)
	}
}

type failingStorage struct{ config.Storage }

func (failingStorage) Save(string, []byte) error { return errors.New("disk full") }

func TestSetConfigLogsPersistenceFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	eng := New(Options{
		Store:  config.NewStore(failingStorage{config.NewMemoryStorage()}, logger),
		Clock:  clock.NewMock(epoch),
		Logger: logger,
	})
	eng.SetConfig(config.Patch{}.WithVolume(0.2))
	if eng.Config().Volume != 0.2 {
		t.Errorf("volume = %v", eng.Config().Volume)
	}
	if !strings.Contains(logs.String(), "disk full") {
		t.Errorf("failure not logged: %q", logs.String())
	}
}

func TestServiceLifecycle(t *testing.T) {
	rec := device.NewRecorder(8000, nil)
	stat := status.NewService()
	svc := NewService(Options{
		Factory: func() (device.Device, error) { return rec, nil },
		Clock:   clock.NewMock(epoch),
		Logger:  log.New(&bytes.Buffer{}, "", 0),
	}, stat)

	hub := service.NewHub()
	hub.Register(stat)
	hub.Register(svc)
	if err := hub.InitAll(true); err != nil {
		t.Fatal(err)
	}
	if err := hub.StartAll(); err != nil {
		t.Fatal(err)
	}

	eng := service.MustGet[*Service](hub, "audio").Engine()
	if eng.Config().Enabled {
		t.Error("mute arg not applied")
	}
	if eng.Store().Persisted().Enabled != true {
		t.Error("mute arg was persisted")
	}
	if eng.Status() != stat.Registry() {
		t.Error("engine does not share the status registry")
	}

	eng.SetConfig(config.Patch{}.WithEnabled(true))
	eng.Play(core.EventTap)
	if rec.Len() != 1 {
		t.Errorf("graphs = %d", rec.Len())
	}

	if err := hub.StopAll(); err != nil {
		t.Fatal(err)
	}
	if rec.State() != device.StateClosed {
		t.Errorf("device state after stop = %v", rec.State())
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestServiceRejectsUnknownArg(t *testing.T) {
	svc := NewService(Options{Clock: clock.NewMock(epoch)}, nil)
	if err := svc.Init(42); err == nil {
		t.Error("expected error for int arg")
	}
}
