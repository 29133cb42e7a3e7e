package device

import (
	"bytes"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/graph"
)

const testRate = 8000

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func toneGraph(start, stop float64) *graph.Graph {
	g := graph.New(start)
	o := g.NewOscillator(core.WaveSquare)
	o.Frequency.SetDefault(100)
	amp := g.NewGain()
	amp.Gain.SetDefault(0.5)
	o.Connect(amp)
	amp.Connect(g.Destination())
	o.Start(start)
	o.Stop(stop)
	return g
}

// memOutput pulls from the stream only when asked
type memOutput struct {
	s       beep.Streamer
	started int
	closed  int
	fail    error
}

func (m *memOutput) Name() string { return "mem" }

func (m *memOutput) Start(s beep.Streamer, _ beep.SampleRate) error {
	if m.fail != nil {
		return m.fail
	}
	m.s = s
	m.started++
	return nil
}

func (m *memOutput) Close() error { m.closed++; return nil }

func (m *memOutput) pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	m.s.Stream(buf)
	return buf
}

func TestBeepDeviceLifecycle(t *testing.T) {
	out := &memOutput{}
	d := NewBeepDevice(out, testRate)

	if d.State() != StateSuspended {
		t.Fatalf("new device state = %v", d.State())
	}
	if err := d.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := d.Resume(); err != nil {
		t.Fatal(err)
	}
	if out.started != 1 {
		t.Errorf("output started %d times", out.started)
	}
	if d.State() != StateRunning {
		t.Errorf("state = %v, want running", d.State())
	}

	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	d.Close()
	if out.closed != 1 {
		t.Errorf("output closed %d times", out.closed)
	}
	if err := d.Start(toneGraph(0, 0.1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v", err)
	}
	if err := d.Resume(); !errors.Is(err, ErrClosed) {
		t.Errorf("Resume after Close = %v", err)
	}
}

func TestBeepDeviceSchedulesAtGraphTime(t *testing.T) {
	out := &memOutput{}
	d := NewBeepDevice(out, testRate)
	d.Resume()

	// Tone from 0.1s to 0.2s on the device clock
	if err := d.Start(toneGraph(0.1, 0.2)); err != nil {
		t.Fatal(err)
	}

	buf := out.pull(testRate / 4)
	if got := d.CurrentTime(); got != 0.25 {
		t.Errorf("clock = %v after pulling 0.25s", got)
	}
	for i, f := range buf {
		sec := float64(i) / testRate
		audible := f[0] != 0
		inWindow := sec >= 0.1 && sec < 0.2
		if audible != inWindow {
			t.Fatalf("frame %d (%.4fs) audible=%v", i, sec, audible)
		}
		if f[0] != f[1] {
			t.Fatalf("frame %d channels differ", i)
		}
	}
	if d.Scheduled() != 1 {
		t.Errorf("Scheduled = %d", d.Scheduled())
	}
}

func TestBeepDevicePastGraphStartsNow(t *testing.T) {
	out := &memOutput{}
	d := NewBeepDevice(out, testRate)
	d.Resume()
	out.pull(testRate) // clock at 1s

	if err := d.Start(toneGraph(0.5, 0.6)); err != nil {
		t.Fatal(err)
	}
	buf := out.pull(10)
	if buf[0][0] == 0 {
		t.Error("late graph did not start immediately")
	}
}

func TestBeepDeviceRejectsInvalidGraph(t *testing.T) {
	d := NewBeepDevice(&memOutput{}, testRate)
	if err := d.Start(graph.New(0)); !errors.Is(err, graph.ErrEmptyGraph) {
		t.Errorf("err = %v", err)
	}
}

func TestAcquirerLazyAndCached(t *testing.T) {
	calls := 0
	rec := NewRecorder(testRate, nil)
	a := NewAcquirer(func() (Device, error) {
		calls++
		return rec, nil
	}, quietLogger())

	if a.Current() != nil {
		t.Fatal("Current created a device")
	}
	for i := 0; i < 3; i++ {
		dev, err := a.Acquire()
		if err != nil || dev != rec {
			t.Fatalf("Acquire = %v, %v", dev, err)
		}
	}
	if calls != 1 {
		t.Errorf("factory called %d times", calls)
	}
	if rec.Resumes() != 1 {
		t.Errorf("resumed %d times, want once while suspended", rec.Resumes())
	}
	if a.Current() != rec {
		t.Error("Current did not return the device")
	}
}

func TestAcquirerRemembersFailure(t *testing.T) {
	calls := 0
	a := NewAcquirer(func() (Device, error) {
		calls++
		return nil, errors.New("no sound card")
	}, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := a.Acquire(); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Acquire err = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("factory retried %d times", calls)
	}
	if a.Current() != nil {
		t.Error("Current returned a device after failure")
	}
}

func TestAcquirerRecoversFactoryPanic(t *testing.T) {
	a := NewAcquirer(func() (Device, error) { panic("driver exploded") }, quietLogger())
	if _, err := a.Acquire(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestAutoOutputFallsBack(t *testing.T) {
	bad := &memOutput{fail: errors.New("busy")}
	good := &memOutput{}
	auto := NewAutoOutput(bad, good)
	if err := auto.Start(beep.Silence(1), testRate); err != nil {
		t.Fatal(err)
	}
	if good.started != 1 || auto.Name() != "mem" {
		t.Errorf("fallback not used: started=%d name=%s", good.started, auto.Name())
	}

	none := NewAutoOutput(&memOutput{fail: errors.New("x")})
	if err := none.Start(beep.Silence(1), testRate); !errors.Is(err, ErrNoAudioBackend) {
		t.Errorf("err = %v", err)
	}
}

func TestNewOutputNames(t *testing.T) {
	for _, name := range OutputNames() {
		if _, err := NewOutput(name); err != nil {
			t.Errorf("NewOutput(%q): %v", name, err)
		}
	}
	if _, err := NewOutput("cassette"); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("err = %v", err)
	}
}

func TestDetectBackendPriority(t *testing.T) {
	available := map[string]bool{"aplay": true, "ffplay": true}
	look := func(name string) (string, error) {
		if available[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	b, err := detectBackend(48000, look)
	if err != nil {
		t.Fatal(err)
	}
	if b.Type != BackendALSA {
		t.Errorf("picked %s, want aplay", b.Name)
	}
	found := false
	for _, a := range b.Args {
		if a == "48000" {
			found = true
		}
	}
	if !found {
		t.Errorf("rate missing from args %v", b.Args)
	}
}

func TestFloatToBytesLimits(t *testing.T) {
	in := [][2]float64{{0, 0.5}, {2, -2}}
	out := make([]byte, len(in)*4)
	floatToBytes(in, out)

	sample := func(i int) int16 { return int16(uint16(out[i*2]) | uint16(out[i*2+1])<<8) }
	if sample(0) != 0 {
		t.Errorf("silence encoded as %d", sample(0))
	}
	if got := sample(1); got != 16383 {
		t.Errorf("0.5 encoded as %d", got)
	}
	if got := sample(2); got <= 26213 || got > 32767 {
		t.Errorf("overload not soft limited: %d", got)
	}
	if sample(3) != -sample(2) {
		t.Errorf("limiter not symmetric: %d vs %d", sample(3), sample(2))
	}
}

func TestOfflineMixesAtOffsets(t *testing.T) {
	o := NewOffline(testRate, nil)
	if err := o.Start(toneGraph(0, 0.1)); err != nil {
		t.Fatal(err)
	}
	if err := o.Start(toneGraph(0.05, 0.15)); err != nil {
		t.Fatal(err)
	}
	buf := o.Samples()
	if len(buf) != 1200 {
		t.Fatalf("len = %d", len(buf))
	}
	// Two in-phase squares overlap in the middle
	if got := math.Abs(buf[584]); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("overlap amplitude = %v, want 1", got)
	}
	if got := math.Abs(buf[984]); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("tail amplitude = %v, want 0.5", got)
	}
	if lvl := Measure(buf); lvl.Peak != 1 || lvl.RMS <= 0.5 {
		t.Errorf("level = %+v", lvl)
	}
}

func TestOfflineWriteWAV(t *testing.T) {
	o := NewOffline(testRate, nil)
	o.Start(toneGraph(0, 0.25))

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.WriteWAV(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != testRate || format.NumChannels != 2 {
		t.Errorf("format = %+v", format)
	}
	if s.Len() != 2000 {
		t.Errorf("wav frames = %d", s.Len())
	}
}

func TestMeterDB(t *testing.T) {
	if got := DB(1); got != 0 {
		t.Errorf("DB(1) = %v", got)
	}
	if got := DB(0.5); math.Abs(got+6.0206) > 1e-3 {
		t.Errorf("DB(0.5) = %v", got)
	}
	if got := DB(0); got != -120 {
		t.Errorf("DB(0) = %v", got)
	}
	if lvl := Measure(nil); lvl.Peak != 0 {
		t.Errorf("empty level = %+v", lvl)
	}
}

func TestRecorder(t *testing.T) {
	now := 1.5
	r := NewRecorder(testRate, func() float64 { return now })
	if err := r.Start(toneGraph(1.5, 1.6)); err != nil {
		t.Fatal(err)
	}
	if e := r.Entries(); len(e) != 1 || e[0].At != 1.5 {
		t.Errorf("entries = %+v", e)
	}
	boom := errors.New("boom")
	r.FailWith(boom)
	if err := r.Start(toneGraph(1.5, 1.6)); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if err := r.Start(graph.New(0)); !errors.Is(err, graph.ErrEmptyGraph) {
		t.Errorf("invalid graph err = %v", err)
	}
}
