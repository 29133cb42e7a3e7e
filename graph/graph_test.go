package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/gallop/core"
)

const testRate = 48000

func floatNear(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestParamAutomation(t *testing.T) {
	g := New(0)
	p := g.NewGain().Gain

	p.SetValueAtTime(0, 1.0)
	p.LinearRampToValueAtTime(1, 2.0)
	p.ExponentialRampToValueAtTime(0.01, 4.0)

	tests := []struct {
		t, want float64
	}{
		{0.5, 1},    // default before the first event
		{1.0, 0},    // set
		{1.5, 0.5},  // halfway up the linear ramp
		{2.0, 1},    // end of linear ramp
		{3.0, 0.1},  // geometric midpoint of 1 -> 0.01
		{4.0, 0.01}, // end of exponential ramp
		{9.0, 0.01}, // holds after the last event
	}
	for _, tt := range tests {
		if got := p.ValueAt(tt.t); !floatNear(got, tt.want, 1e-9) {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestParamExponentialFromZeroHolds(t *testing.T) {
	g := New(0)
	p := g.NewGain().Gain
	p.SetValueAtTime(0, 0)
	p.ExponentialRampToValueAtTime(1, 1)

	if got := p.ValueAt(0.5); got != 0 {
		t.Errorf("ramp from zero = %v, want hold at 0", got)
	}
	if got := p.ValueAt(1); got != 1 {
		t.Errorf("ramp end = %v, want 1", got)
	}
}

func TestParamEventsSorted(t *testing.T) {
	g := New(0)
	p := g.NewGain().Gain
	p.SetValueAtTime(3, 3)
	p.SetValueAtTime(1, 1)
	p.SetValueAtTime(2, 2)

	ev := p.Events()
	for i := 1; i < len(ev); i++ {
		if ev[i].Time < ev[i-1].Time {
			t.Fatalf("events out of order: %+v", ev)
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *Graph)
		want  error
	}{
		{"empty", func(g *Graph) {}, ErrEmptyGraph},
		{"zero exponential target", func(g *Graph) {
			o := g.NewOscillator(core.WaveSine)
			o.Frequency.ExponentialRampToValueAtTime(0, 1)
			o.Start(0)
			o.Stop(1)
		}, ErrNonPositiveRamp},
		{"stop before start", func(g *Graph) {
			o := g.NewOscillator(core.WaveSine)
			o.Start(1)
			o.Stop(0.5)
		}, ErrStopBeforeStart},
		{"never started", func(g *Graph) {
			g.NewOscillator(core.WaveSine)
		}, ErrNotStarted},
		{"unbounded", func(g *Graph) {
			o := g.NewOscillator(core.WaveSine)
			o.Start(0)
		}, ErrUnbounded},
		{"negative time", func(g *Graph) {
			o := g.NewOscillator(core.WaveSine)
			o.Frequency.SetValueAtTime(100, -1)
		}, ErrBadTime},
		{"foreign node", func(g *Graph) {
			other := New(0)
			o := g.NewOscillator(core.WaveSine)
			o.Connect(other.Destination())
		}, ErrForeignNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(0)
			tt.build(g)
			if err := g.Err(); !errors.Is(err, tt.want) {
				t.Errorf("Err() = %v, want %v", err, tt.want)
			}
			if _, err := Render(g, testRate); err == nil {
				t.Error("Render accepted an invalid graph")
			}
		})
	}
}

func TestRenderSpan(t *testing.T) {
	g := New(1)
	o := g.NewOscillator(core.WaveSine)
	o.Frequency.SetDefault(1000)
	o.Connect(g.Destination())
	o.Start(1.0)
	o.Stop(1.5)

	start, end := g.Span()
	if start != 1.0 || end != 1.5 {
		t.Fatalf("Span() = %v, %v", start, end)
	}

	out, err := Render(g, testRate)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != testRate/2 {
		t.Fatalf("rendered %d frames, want %d", len(out), testRate/2)
	}
	if peak := peakOf(out); !floatNear(peak, 1, 0.01) {
		t.Errorf("sine peak = %v, want ~1", peak)
	}
}

func TestGainEnvelopeShapesOutput(t *testing.T) {
	g := New(0)
	o := g.NewOscillator(core.WaveSquare)
	o.Frequency.SetDefault(100)
	amp := g.NewGain()
	amp.Gain.SetValueAtTime(0.5, 0)
	amp.Gain.LinearRampToValueAtTime(0, 0.1)
	o.Connect(amp)
	amp.Connect(g.Destination())
	o.Start(0)
	o.Stop(0.2)

	out, err := Render(g, testRate)
	if err != nil {
		t.Fatal(err)
	}
	if got := math.Abs(out[0]); !floatNear(got, 0.5, 1e-9) {
		t.Errorf("first sample = %v, want 0.5", got)
	}
	if tail := peakOf(out[testRate/10+1:]); tail != 0 {
		t.Errorf("output after gain reached zero = %v", tail)
	}
}

func TestFilterAttenuation(t *testing.T) {
	render := func(kind core.FilterKind, cutoff, tone float64) float64 {
		g := New(0)
		o := g.NewOscillator(core.WaveSine)
		o.Frequency.SetDefault(tone)
		f := g.NewFilter(kind)
		f.Frequency.SetDefault(cutoff)
		f.Q.SetDefault(0.7071)
		o.Connect(f)
		f.Connect(g.Destination())
		o.Start(0)
		o.Stop(0.5)
		out, err := Render(g, testRate)
		if err != nil {
			t.Fatal(err)
		}
		// Skip the transient
		return peakOf(out[testRate/10:])
	}

	if p := render(core.FilterLowpass, 400, 5000); p > 0.05 {
		t.Errorf("lowpass 400Hz passed 5kHz at %v", p)
	}
	if p := render(core.FilterLowpass, 5000, 100); p < 0.9 {
		t.Errorf("lowpass 5kHz attenuated 100Hz to %v", p)
	}
	if p := render(core.FilterHighpass, 1000, 50); p > 0.05 {
		t.Errorf("highpass 1kHz passed 50Hz at %v", p)
	}
	if p := render(core.FilterBandpass, 1000, 1000); p < 0.9 {
		t.Errorf("bandpass attenuated its center to %v", p)
	}
}

func TestParamInputModulatesFrequency(t *testing.T) {
	build := func(depth float64) []float64 {
		g := New(0)
		car := g.NewOscillator(core.WaveSine)
		car.Frequency.SetDefault(200)
		mod := g.NewOscillator(core.WaveSine)
		mod.Frequency.SetDefault(283)
		depthGain := g.NewGain()
		depthGain.Gain.SetDefault(depth)
		mod.Connect(depthGain)
		depthGain.Connect(car.Frequency)
		car.Connect(g.Destination())
		car.Start(0)
		car.Stop(0.1)
		mod.Start(0)
		mod.Stop(0.1)

		if len(car.Frequency.Inputs()) != 1 {
			t.Fatalf("frequency inputs = %d", len(car.Frequency.Inputs()))
		}
		out, err := Render(g, testRate)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	plain, fm := build(0), build(400)
	diff := 0.0
	for i := range plain {
		diff = math.Max(diff, math.Abs(plain[i]-fm[i]))
	}
	if diff < 0.5 {
		t.Errorf("modulation changed output by only %v", diff)
	}
}

func TestGainParamInputRunsWhileSilent(t *testing.T) {
	const lfoHz = 2.5
	g := New(0)
	lfo := g.NewOscillator(core.WaveSine)
	lfo.Frequency.SetDefault(lfoHz)
	amp := g.NewGain()
	amp.Gain.SetDefault(0)
	lfo.Connect(amp.Gain)

	ones := make([]float64, testRate)
	for i := range ones {
		ones[i] = 1
	}
	src := g.NewBufferSource(ones)
	src.Connect(amp)
	amp.Connect(g.Destination())
	lfo.Start(0)
	lfo.Stop(0.2)
	src.Start(0.05)
	src.Stop(0.2)

	out, err := Render(g, testRate)
	if err != nil {
		t.Fatal(err)
	}
	// The lfo keeps running before the input opens, so a quarter cycle lands at 0.1s
	i := testRate / 10
	if want := math.Sin(2 * math.Pi * lfoHz * 0.1); !floatNear(out[i], want, 1e-3) {
		t.Errorf("out at 0.1s = %v, want %v", out[i], want)
	}
	if out[testRate/50] != 0 {
		t.Errorf("out before input = %v, want silence", out[testRate/50])
	}
}

func TestBufferSourcePlaysSamples(t *testing.T) {
	buf := []float64{0.1, 0.2, 0.3, 0.4}
	g := New(0)
	s := g.NewBufferSource(buf)
	s.Connect(g.Destination())
	s.Start(0)
	s.Stop(6.0 / testRate)

	out, err := Render(g, testRate)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.1, 0.2, 0.3, 0.4, 0, 0}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if !floatNear(out[i], want[i], 1e-12) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestShapesStartAtZero(t *testing.T) {
	for _, w := range []core.Waveform{core.WaveSine, core.WaveTriangle, core.WaveSawtooth} {
		if v := Shape(w, 0); !floatNear(v, 0, 1e-12) {
			t.Errorf("%v at phase 0 = %v", w, v)
		}
		for p := 0.0; p < 1; p += 0.01 {
			if v := Shape(w, p); v < -1-1e-12 || v > 1+1e-12 {
				t.Fatalf("%v at %v = %v out of range", w, p, v)
			}
		}
	}
}

func TestStreamerDuplicatesChannels(t *testing.T) {
	g := New(0)
	o := g.NewOscillator(core.WaveSawtooth)
	o.Frequency.SetDefault(220)
	o.Connect(g.Destination())
	o.Start(0)
	o.Stop(0.01)

	s, err := NewStreamer(g, beep.SampleRate(testRate))
	if err != nil {
		t.Fatal(err)
	}
	samples := make([][2]float64, 1024)
	total := 0
	for {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			if samples[i][0] != samples[i][1] {
				t.Fatalf("channel mismatch at %d", total+i)
			}
		}
		total += n
		if !ok {
			break
		}
	}
	if total != s.Len() || total != testRate/100 {
		t.Errorf("streamed %d frames, Len %d", total, s.Len())
	}
}

func peakOf(buf []float64) float64 {
	p := 0.0
	for _, v := range buf {
		p = math.Max(p, math.Abs(v))
	}
	return p
}
