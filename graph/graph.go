// Package graph models short-lived audio node graphs and renders them sample by sample
//
// The node model follows the browser audio graph: sources (oscillators, buffer
// players) feed processors (filters, gains) that end at the graph destination.
// Node outputs may also drive automation parameters, which is how FM is built.
// All times are absolute device seconds.
package graph

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/parameter"
)

// Sentinel errors
var (
	ErrNonPositiveRamp = errors.New("exponential ramp target must be positive")
	ErrBadTime         = errors.New("automation time must be finite and non-negative")
	ErrStopBeforeStart = errors.New("source stop time precedes start time")
	ErrNotStarted      = errors.New("source was never started")
	ErrUnbounded       = errors.New("source has no stop time")
	ErrEmptyGraph      = errors.New("graph has no sources")
	ErrForeignNode     = errors.New("node belongs to another graph")
)

// Node is anything that produces a signal
type Node interface {
	// Connect routes this node's output into a processor, the destination, or a parameter
	Connect(dst Receiver)
	Outputs() []Receiver
	ID() int

	base() *nodeBase
	compute(rc *renderCtx) float64
	reset()
}

// Receiver accepts signal inputs
type Receiver interface {
	Inputs() []Node
	owner() *Graph
	addInput(n Node)
}

// Source is a node with a playback window
type Source interface {
	Node
	// Span reports the playback window; ok is false until Start is called
	Span() (start, stop float64, ok bool)
}

// Graph owns every node created through it
type Graph struct {
	origin  float64
	nodes   []Node
	sources []Source
	dest    *Destination
	err     error
}

// New creates an empty graph whose automation starts at origin
func New(origin float64) *Graph {
	g := &Graph{origin: origin}
	g.dest = &Destination{g: g}
	return g
}

// Origin is the time ramps without a preceding event start from
func (g *Graph) Origin() float64 { return g.origin }

// Destination is the graph output
func (g *Graph) Destination() *Destination { return g.dest }

// Nodes returns every node in creation order
func (g *Graph) Nodes() []Node { return g.nodes }

// Sources returns every oscillator and buffer source
func (g *Graph) Sources() []Source { return g.sources }

func (g *Graph) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *Graph) register(n Node) {
	b := n.base()
	b.g = g
	b.id = len(g.nodes)
	b.self = n
	b.frame = -1
	g.nodes = append(g.nodes, n)
	if s, ok := n.(Source); ok {
		g.sources = append(g.sources, s)
	}
}

// NewOscillator adds a periodic source with a frequency parameter
func (g *Graph) NewOscillator(w core.Waveform) *Oscillator {
	o := &Oscillator{Type: w}
	g.register(o)
	o.Frequency = newParam(g, o, "frequency", 440)
	return o
}

// NewBufferSource adds a one-shot player for mono samples at the render rate
func (g *Graph) NewBufferSource(buf []float64) *BufferSource {
	s := &BufferSource{Buffer: buf}
	g.register(s)
	return s
}

// NewFilter adds a biquad filter
func (g *Graph) NewFilter(k core.FilterKind) *Filter {
	f := &Filter{Kind: k}
	g.register(f)
	f.Frequency = newParam(g, f, "frequency", 350)
	f.Q = newParam(g, f, "Q", parameter.FilterDefaultQ)
	return f
}

// NewGain adds an amplifier with unity default gain
func (g *Graph) NewGain() *Gain {
	n := &Gain{}
	g.register(n)
	n.Gain = newParam(g, n, "gain", 1)
	return n
}

// Err returns the first construction error, or a validation error
func (g *Graph) Err() error {
	if g.err != nil {
		return g.err
	}
	if len(g.sources) == 0 {
		return ErrEmptyGraph
	}
	for _, s := range g.sources {
		start, stop, ok := s.Span()
		if !ok {
			return fmt.Errorf("%w: node %d", ErrNotStarted, s.ID())
		}
		if stop < start {
			return fmt.Errorf("%w: node %d (%.3f < %.3f)", ErrStopBeforeStart, s.ID(), stop, start)
		}
		if isInf(stop) {
			return fmt.Errorf("%w: node %d", ErrUnbounded, s.ID())
		}
	}
	return nil
}

// Span returns the earliest source start and latest source stop
func (g *Graph) Span() (start, end float64) {
	first := true
	for _, s := range g.sources {
		a, b, ok := s.Span()
		if !ok {
			continue
		}
		if first || a < start {
			start = a
		}
		if first || b > end {
			end = b
		}
		first = false
	}
	return start, end
}

// Duration is the length of the playback window in seconds
func (g *Graph) Duration() float64 {
	a, b := g.Span()
	return b - a
}

// nodeBase carries identity, routing and per-frame memoization
type nodeBase struct {
	g       *Graph
	id      int
	self    Node
	outputs []Receiver

	frame int64
	value float64
	busy  bool
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) ID() int { return b.id }

func (b *nodeBase) Outputs() []Receiver { return b.outputs }

func (b *nodeBase) owner() *Graph { return b.g }

func (b *nodeBase) Connect(dst Receiver) {
	if dst == nil || dst.owner() != b.g {
		b.g.fail(fmt.Errorf("%w: connect from node %d", ErrForeignNode, b.id))
		return
	}
	b.outputs = append(b.outputs, dst)
	dst.addInput(b.self)
}

// mixIn sums connected inputs
type mixIn struct {
	ins []Node
}

func (m *mixIn) Inputs() []Node { return m.ins }

func (m *mixIn) addInput(n Node) { m.ins = append(m.ins, n) }

func (m *mixIn) sum(rc *renderCtx) float64 {
	var v float64
	for _, n := range m.ins {
		v += eval(n, rc)
	}
	return v
}

// Destination is the graph output sink
type Destination struct {
	mixIn
	g *Graph
}

func (d *Destination) owner() *Graph { return d.g }
