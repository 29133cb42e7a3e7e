package graph

import (
	"fmt"
	"math"

	"github.com/lixenwraith/gallop/core"
)

// schedule is a source playback window
type schedule struct {
	start, stop float64
	started     bool
}

func (s *schedule) setStart(g *Graph, id int, t float64) {
	if math.IsNaN(t) || t < 0 {
		g.fail(fmt.Errorf("%w: start of node %d", ErrBadTime, id))
		return
	}
	s.start = t
	if !s.started {
		s.stop = math.Inf(1)
	}
	s.started = true
}

func (s *schedule) setStop(g *Graph, id int, t float64) {
	if !s.started {
		g.fail(fmt.Errorf("%w: stop before start on node %d", ErrNotStarted, id))
		return
	}
	if math.IsNaN(t) {
		g.fail(fmt.Errorf("%w: stop of node %d", ErrBadTime, id))
		return
	}
	s.stop = t
}

func (s *schedule) active(t float64) bool {
	return s.started && t >= s.start && t < s.stop
}

// Oscillator is a periodic source
type Oscillator struct {
	nodeBase
	schedule
	Type      core.Waveform
	Frequency *Param

	phase float64
}

// Start begins output at t
func (o *Oscillator) Start(t float64) { o.setStart(o.g, o.id, t) }

// Stop ends output at t
func (o *Oscillator) Stop(t float64) { o.setStop(o.g, o.id, t) }

func (o *Oscillator) Span() (float64, float64, bool) { return o.start, o.stop, o.started }

func (o *Oscillator) reset() { o.phase = 0 }

func (o *Oscillator) compute(rc *renderCtx) float64 {
	if !o.active(rc.t) {
		return 0
	}
	f := o.Frequency.value(rc)
	v := Shape(o.Type, o.phase)
	o.phase += f / rc.rate
	o.phase -= math.Floor(o.phase)
	return v
}

// Shape evaluates one cycle of a waveform at phase p in [0,1)
// Every shape starts at zero crossing except square
func Shape(w core.Waveform, p float64) float64 {
	switch w {
	case core.WaveTriangle:
		x := p + 0.25
		x -= math.Floor(x)
		return 1 - 4*math.Abs(x-0.5)
	case core.WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case core.WaveSawtooth:
		x := p + 0.5
		x -= math.Floor(x)
		return 2*x - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// BufferSource plays a mono sample buffer once
type BufferSource struct {
	nodeBase
	schedule
	Buffer []float64
}

// Start begins playback at t
func (s *BufferSource) Start(t float64) { s.setStart(s.g, s.id, t) }

// Stop cuts playback at t
func (s *BufferSource) Stop(t float64) { s.setStop(s.g, s.id, t) }

// Span requires an explicit Stop; output past the buffer end is silence
func (s *BufferSource) Span() (float64, float64, bool) { return s.start, s.stop, s.started }

func (s *BufferSource) reset() {}

func (s *BufferSource) compute(rc *renderCtx) float64 {
	if !s.active(rc.t) {
		return 0
	}
	i := int(math.Round((rc.t - s.start) * rc.rate))
	if i < 0 || i >= len(s.Buffer) {
		return 0
	}
	return s.Buffer[i]
}

// Filter is a biquad filter over the sum of its inputs
type Filter struct {
	nodeBase
	mixIn
	Kind      core.FilterKind
	Frequency *Param
	Q         *Param

	bq biquad
}

func (f *Filter) reset() { f.bq = biquad{} }

func (f *Filter) compute(rc *renderCtx) float64 {
	x := f.sum(rc)
	if f.Kind == core.FilterNone {
		return x
	}
	f.bq.tune(f.Kind, f.Frequency.value(rc), f.Q.value(rc), rc.rate)
	return f.bq.process(x)
}

// Gain scales the sum of its inputs
type Gain struct {
	nodeBase
	mixIn
	Gain *Param
}

func (n *Gain) reset() {}

// The gain param is evaluated every frame so nodes feeding it keep their phase
func (n *Gain) compute(rc *renderCtx) float64 {
	gain := n.Gain.value(rc)
	return n.sum(rc) * gain
}
