// Package synth builds the themed procedural sound cues as audio graphs
package synth

import (
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/graph"
	"github.com/lixenwraith/gallop/parameter"
)

// Target is where a voice sends its finished graph
type Target interface {
	SampleRate() int
	Start(g *graph.Graph) error
}

// Synth renders cues from a theme table; it holds no per-cue state
type Synth struct {
	profiles Profiles
	noise    *NoiseCache
}

// New creates a synthesizer; nil arguments select the built-in table and a fixed-seed noise cache
func New(profiles Profiles, noise *NoiseCache) *Synth {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if noise == nil {
		noise = NewNoiseCache(1)
	}
	return &Synth{profiles: profiles, noise: noise}
}

// Profiles returns the active theme table
func (s *Synth) Profiles() Profiles { return s.profiles }

func start(dst Target, g *graph.Graph) error {
	if err := g.Err(); err != nil {
		return err
	}
	return dst.Start(g)
}

const floor = parameter.SilenceFloor

// MaterialHit plays a short click whose material follows the theme
func (s *Synth) MaterialHit(dst Target, at, vol float64, theme core.Theme, strike core.Strike) error {
	return start(dst, s.materialHit(at, vol, theme, strike))
}

func (s *Synth) materialHit(at, vol float64, theme core.Theme, strike core.Strike) *graph.Graph {
	m := s.profiles.Get(theme).Material
	freq, decay := m.TapFreq, m.TapDecay
	if strike == core.StrikeSelect {
		freq, decay = m.SelectFreq, m.SelectDecay
	}

	g := graph.New(at)
	osc := g.NewOscillator(m.Wave)
	osc.Frequency.SetValueAtTime(freq, at)
	if m.Glide > 0 {
		osc.Frequency.ExponentialRampToValueAtTime(freq*m.Glide, at+m.GlideTime)
	}

	amp := g.NewGain()
	amp.Gain.SetValueAtTime(0, at)
	amp.Gain.LinearRampToValueAtTime(vol*0.5, at+0.005)
	amp.Gain.ExponentialRampToValueAtTime(floor, at+decay)

	if m.Filter != core.FilterNone {
		f := g.NewFilter(m.Filter)
		cutoff := m.Cutoff
		if cutoff == 0 {
			cutoff = freq
		}
		f.Frequency.SetValueAtTime(cutoff, at)
		if m.Q > 0 {
			f.Q.SetValueAtTime(m.Q, at)
		}
		osc.Connect(f)
		f.Connect(amp)
	} else {
		osc.Connect(amp)
	}
	amp.Connect(g.Destination())

	osc.Start(at)
	osc.Stop(at + decay + 0.1)
	return g
}

// Hoof plays one layered hoof impact: sub thud, optional knock, dirt noise
func (s *Synth) Hoof(dst Target, at, vol float64, theme core.Theme) error {
	return start(dst, s.hoof(dst.SampleRate(), at, vol, theme))
}

func (s *Synth) hoof(rate int, at, vol float64, theme core.Theme) *graph.Graph {
	p := s.profiles.Get(theme)

	g := graph.New(at)
	master := g.NewGain()
	master.Gain.SetValueAtTime(vol, at)
	master.Connect(g.Destination())

	// Sub thud
	sub := g.NewOscillator(core.WaveSine)
	sub.Frequency.SetValueAtTime(80, at)
	sub.Frequency.ExponentialRampToValueAtTime(40, at+0.08)
	subAmp := g.NewGain()
	subAmp.Gain.SetValueAtTime(0.8, at)
	subAmp.Gain.ExponentialRampToValueAtTime(0.01, at+0.1)
	sub.Connect(subAmp)
	subAmp.Connect(master)
	sub.Start(at)
	sub.Stop(at + 0.15)

	// Knock
	if pitch := p.Hoof.KnockPitch; pitch > 0 {
		knock := g.NewOscillator(core.WaveSquare)
		knock.Frequency.SetValueAtTime(pitch, at)
		band := g.NewFilter(core.FilterBandpass)
		band.Frequency.SetValueAtTime(pitch, at)
		knockAmp := g.NewGain()
		knockAmp.Gain.SetValueAtTime(0.3, at)
		knockAmp.Gain.ExponentialRampToValueAtTime(0.01, at+0.05)
		knock.Connect(band)
		band.Connect(knockAmp)
		knockAmp.Connect(master)
		knock.Start(at)
		knock.Stop(at + 0.1)
	}

	// Dirt
	dirt := g.NewBufferSource(s.noise.Get(rate))
	hp := g.NewFilter(core.FilterHighpass)
	hp.Frequency.SetValueAtTime(800, at)
	dirtAmp := g.NewGain()
	dirtAmp.Gain.SetValueAtTime(0.4, at)
	dirtAmp.Gain.ExponentialRampToValueAtTime(0.01, at+0.08)
	dirt.Connect(hp)
	hp.Connect(dirtAmp)
	dirtAmp.Connect(master)
	dirt.Start(at)
	dirt.Stop(at + 0.1)

	return g
}

// Gong plays a two-operator FM strike; scale stretches its envelope
func (s *Synth) Gong(dst Target, at, vol float64, theme core.Theme, scale float64) error {
	return start(dst, s.gong(at, vol, theme, scale))
}

func (s *Synth) gong(at, vol float64, theme core.Theme, scale float64) *graph.Graph {
	p := s.profiles.Get(theme).Gong

	g := graph.New(at)
	carrier := g.NewOscillator(core.WaveSine)
	carrier.Frequency.SetValueAtTime(p.Base, at)

	mod := g.NewOscillator(core.WaveSine)
	mod.Frequency.SetValueAtTime(p.Base*p.Ratio, at)
	depth := g.NewGain()
	depth.Gain.SetValueAtTime(p.Base*2, at)
	depth.Gain.ExponentialRampToValueAtTime(1, at+2*scale)
	mod.Connect(depth)
	depth.Connect(carrier.Frequency)

	out := g.NewGain()
	out.Gain.SetValueAtTime(0, at)
	out.Gain.LinearRampToValueAtTime(vol, at+0.05)
	out.Gain.ExponentialRampToValueAtTime(floor, at+3*scale)
	carrier.Connect(out)
	out.Connect(g.Destination())

	end := at + 3.5*scale
	carrier.Start(at)
	mod.Start(at)
	carrier.Stop(end)
	mod.Stop(end)
	return g
}

// Arpeggio plays the rising five-note success figure
func (s *Synth) Arpeggio(dst Target, at, vol float64, theme core.Theme) error {
	return start(dst, s.arpeggio(at, vol, theme))
}

func (s *Synth) arpeggio(at, vol float64, theme core.Theme) *graph.Graph {
	p := s.profiles.Get(theme).Arpeggio

	g := graph.New(at)
	for i, freq := range p.Notes {
		t := at + float64(i)*p.Stride
		osc := g.NewOscillator(p.Wave)
		osc.Frequency.SetValueAtTime(freq, t)
		amp := g.NewGain()
		amp.Gain.SetValueAtTime(0, t)
		amp.Gain.LinearRampToValueAtTime(vol*0.2, t+0.02)
		amp.Gain.ExponentialRampToValueAtTime(floor, t+1.0)
		osc.Connect(amp)
		amp.Connect(g.Destination())
		osc.Start(t)
		osc.Stop(t + 1.2)
	}
	return g
}

// Swish plays a band-pass noise sweep
func (s *Synth) Swish(dst Target, at, vol float64, theme core.Theme) error {
	return start(dst, s.swish(dst.SampleRate(), at, vol, theme))
}

func (s *Synth) swish(rate int, at, vol float64, theme core.Theme) *graph.Graph {
	p := s.profiles.Get(theme).Swish

	g := graph.New(at)
	src := g.NewBufferSource(s.noise.Get(rate))
	band := g.NewFilter(core.FilterBandpass)
	band.Frequency.SetValueAtTime(p.From, at)
	band.Frequency.LinearRampToValueAtTime(p.To, at+0.15)
	amp := g.NewGain()
	amp.Gain.SetValueAtTime(0, at)
	amp.Gain.LinearRampToValueAtTime(vol*0.3, at+0.05)
	amp.Gain.LinearRampToValueAtTime(0, at+0.15)
	src.Connect(band)
	band.Connect(amp)
	amp.Connect(g.Destination())
	src.Start(at)
	src.Stop(at + 0.2)
	return g
}

// Paper plays a short high-passed rustle
func (s *Synth) Paper(dst Target, at, vol float64) error {
	return start(dst, s.paper(dst.SampleRate(), at, vol))
}

func (s *Synth) paper(rate int, at, vol float64) *graph.Graph {
	g := graph.New(at)
	src := g.NewBufferSource(s.noise.Get(rate))
	hp := g.NewFilter(core.FilterHighpass)
	hp.Frequency.SetValueAtTime(1000, at)
	amp := g.NewGain()
	amp.Gain.SetValueAtTime(0, at)
	amp.Gain.LinearRampToValueAtTime(vol*0.2, at+0.02)
	amp.Gain.ExponentialRampToValueAtTime(floor, at+0.12)
	src.Connect(hp)
	hp.Connect(amp)
	amp.Connect(g.Destination())
	src.Start(at)
	src.Stop(at + 0.15)
	return g
}

// Thud plays a low pitch-dropping impact
func (s *Synth) Thud(dst Target, at, vol float64) error {
	return start(dst, s.thud(at, vol))
}

func (s *Synth) thud(at, vol float64) *graph.Graph {
	g := graph.New(at)
	osc := g.NewOscillator(core.WaveSine)
	osc.Frequency.SetValueAtTime(80, at)
	osc.Frequency.ExponentialRampToValueAtTime(10, at+0.1)
	amp := g.NewGain()
	amp.Gain.SetValueAtTime(vol, at)
	amp.Gain.ExponentialRampToValueAtTime(floor, at+0.15)
	osc.Connect(amp)
	amp.Connect(g.Destination())
	osc.Start(at)
	osc.Stop(at + 0.2)
	return g
}

// Buzz plays the low sawtooth error tone
func (s *Synth) Buzz(dst Target, at, vol float64) error {
	return start(dst, s.buzz(at, vol))
}

func (s *Synth) buzz(at, vol float64) *graph.Graph {
	g := graph.New(at)
	osc := g.NewOscillator(core.WaveSawtooth)
	osc.Frequency.SetValueAtTime(100, at)
	amp := g.NewGain()
	amp.Gain.SetValueAtTime(vol*0.5, at)
	amp.Gain.LinearRampToValueAtTime(0, at+0.2)
	osc.Connect(amp)
	amp.Connect(g.Destination())
	osc.Start(at)
	osc.Stop(at + 0.25)
	return g
}

// Whinny plays a vibrato sawtooth neigh that rises then falls
func (s *Synth) Whinny(dst Target, at, vol float64) error {
	return start(dst, s.whinny(at, vol))
}

func (s *Synth) whinny(at, vol float64) *graph.Graph {
	g := graph.New(at)

	voice := g.NewOscillator(core.WaveSawtooth)
	voice.Frequency.SetValueAtTime(1200, at)
	voice.Frequency.LinearRampToValueAtTime(1500, at+0.1)
	voice.Frequency.ExponentialRampToValueAtTime(600, at+1.2)

	vibrato := g.NewOscillator(core.WaveSine)
	vibrato.Frequency.SetValueAtTime(12, at)
	vibrato.Frequency.LinearRampToValueAtTime(6, at+1.2)
	depth := g.NewGain()
	depth.Gain.SetValueAtTime(100, at)
	depth.Gain.LinearRampToValueAtTime(50, at+1.0)
	vibrato.Connect(depth)
	depth.Connect(voice.Frequency)

	lp := g.NewFilter(core.FilterLowpass)
	lp.Frequency.SetValueAtTime(3000, at)
	lp.Frequency.LinearRampToValueAtTime(2000, at+1.0)

	amp := g.NewGain()
	amp.Gain.SetValueAtTime(0, at)
	amp.Gain.LinearRampToValueAtTime(vol*0.4, at+0.05)
	amp.Gain.ExponentialRampToValueAtTime(0.01, at+1.3)

	voice.Connect(lp)
	lp.Connect(amp)
	amp.Connect(g.Destination())

	voice.Start(at)
	vibrato.Start(at)
	voice.Stop(at + 1.5)
	vibrato.Stop(at + 1.5)
	return g
}
