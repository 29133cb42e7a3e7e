//go:build js

package device

import (
	"fmt"
	"sync"

	"github.com/gopherjs/gopherjs/js"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/graph"
)

// WebAudio maps graphs onto the page's AudioContext
type WebAudio struct {
	mu      sync.Mutex
	ctx     *js.Object
	buffers map[*float64]*js.Object
}

// NewWebAudio creates the AudioContext, falling back to the prefixed constructor
func NewWebAudio() (dev *WebAudio, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNoAudioBackend, r)
		}
	}()
	ctor := js.Global.Get("AudioContext")
	if ctor == js.Undefined || ctor == nil {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == js.Undefined || ctor == nil {
		return nil, ErrNoAudioBackend
	}
	return &WebAudio{
		ctx:     ctor.New(),
		buffers: make(map[*float64]*js.Object),
	}, nil
}

// NewWebAudioFactory adapts NewWebAudio to Factory
func NewWebAudioFactory() Factory {
	return func() (Device, error) { return NewWebAudio() }
}

func (w *WebAudio) CurrentTime() float64 { return w.ctx.Get("currentTime").Float() }

func (w *WebAudio) SampleRate() int { return w.ctx.Get("sampleRate").Int() }

func (w *WebAudio) State() State {
	switch w.ctx.Get("state").String() {
	case "running":
		return StateRunning
	case "closed":
		return StateClosed
	default:
		return StateSuspended
	}
}

// Resume asks the browser to start the context; the returned promise is not awaited
func (w *WebAudio) Resume() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resume: %v", r)
		}
	}()
	w.ctx.Call("resume")
	return nil
}

func (w *WebAudio) Close() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("close: %v", r)
		}
	}()
	w.ctx.Call("close")
	return nil
}

// Start builds browser nodes for every graph node, wires them, and schedules the sources
func (w *WebAudio) Start(g *graph.Graph) (err error) {
	if err := g.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("web audio graph: %v", r)
		}
	}()

	nodes := make(map[graph.Node]*js.Object, len(g.Nodes()))
	for _, n := range g.Nodes() {
		nodes[n] = w.create(n)
	}

	for _, n := range g.Nodes() {
		src := nodes[n]
		for _, out := range n.Outputs() {
			switch dst := out.(type) {
			case *graph.Destination:
				src.Call("connect", w.ctx.Get("destination"))
			case *graph.Param:
				src.Call("connect", nodes[dst.Node()].Get(dst.Name()))
			case graph.Node:
				src.Call("connect", nodes[dst])
			}
		}
	}

	for _, s := range g.Sources() {
		start, stop, _ := s.Span()
		nodes[s].Call("start", start)
		nodes[s].Call("stop", stop)
	}
	return nil
}

func (w *WebAudio) create(n graph.Node) *js.Object {
	switch n := n.(type) {
	case *graph.Oscillator:
		o := w.ctx.Call("createOscillator")
		o.Set("type", n.Type.String())
		automate(o.Get("frequency"), n.Frequency)
		return o
	case *graph.BufferSource:
		s := w.ctx.Call("createBufferSource")
		s.Set("buffer", w.buffer(n.Buffer))
		return s
	case *graph.Filter:
		if n.Kind == core.FilterNone {
			return w.ctx.Call("createGain")
		}
		f := w.ctx.Call("createBiquadFilter")
		f.Set("type", n.Kind.String())
		automate(f.Get("frequency"), n.Frequency)
		automate(f.Get("Q"), n.Q)
		return f
	case *graph.Gain:
		gn := w.ctx.Call("createGain")
		automate(gn.Get("gain"), n.Gain)
		return gn
	}
	panic(fmt.Sprintf("unsupported node %T", n))
}

func automate(target *js.Object, p *graph.Param) {
	target.Set("value", p.Default())
	for _, e := range p.Events() {
		switch e.Kind {
		case graph.RampLinear:
			target.Call("linearRampToValueAtTime", e.Value, e.Time)
		case graph.RampExponential:
			target.Call("exponentialRampToValueAtTime", e.Value, e.Time)
		default:
			target.Call("setValueAtTime", e.Value, e.Time)
		}
	}
}

// buffer uploads samples once per backing array; the noise buffer is shared by many cues
func (w *WebAudio) buffer(samples []float64) *js.Object {
	if len(samples) == 0 {
		return w.ctx.Call("createBuffer", 1, 1, w.SampleRate())
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	key := &samples[0]
	if b, ok := w.buffers[key]; ok {
		return b
	}
	b := w.ctx.Call("createBuffer", 1, len(samples), w.SampleRate())
	data := b.Call("getChannelData", 0)
	for i, v := range samples {
		data.SetIndex(i, v)
	}
	w.buffers[key] = b
	return b
}
