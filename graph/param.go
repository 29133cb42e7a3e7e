package graph

import (
	"fmt"
	"math"
	"sort"
)

// RampKind identifies an automation event type
type RampKind int

const (
	RampSet RampKind = iota
	RampLinear
	RampExponential
)

func (k RampKind) String() string {
	switch k {
	case RampLinear:
		return "linear"
	case RampExponential:
		return "exponential"
	default:
		return "set"
	}
}

// Event is one scheduled automation point
type Event struct {
	Kind  RampKind
	Time  float64
	Value float64
}

// Param is an automatable node parameter
// Its value is the automation curve plus the sum of any connected node outputs
type Param struct {
	g      *Graph
	node   Node
	name   string
	def    float64
	events []Event
	ins    []Node
}

func newParam(g *Graph, node Node, name string, def float64) *Param {
	return &Param{g: g, node: node, name: name, def: def}
}

// Node returns the node this parameter belongs to
func (p *Param) Node() Node { return p.node }

// Name is the parameter's attribute name on its node
func (p *Param) Name() string { return p.name }

// Default is the value used before the first automation event
func (p *Param) Default() float64 { return p.def }

// SetDefault changes the value used before the first automation event
func (p *Param) SetDefault(v float64) *Param {
	p.def = v
	return p
}

// Events returns the automation timeline in time order
func (p *Param) Events() []Event { return p.events }

func (p *Param) Inputs() []Node { return p.ins }

func (p *Param) owner() *Graph { return p.g }

func (p *Param) addInput(n Node) { p.ins = append(p.ins, n) }

// SetValueAtTime jumps to v at t
func (p *Param) SetValueAtTime(v, t float64) *Param {
	return p.insert(Event{Kind: RampSet, Time: t, Value: v})
}

// LinearRampToValueAtTime ramps linearly from the previous event to v at t
func (p *Param) LinearRampToValueAtTime(v, t float64) *Param {
	return p.insert(Event{Kind: RampLinear, Time: t, Value: v})
}

// ExponentialRampToValueAtTime ramps geometrically from the previous event to v at t
// v must be positive
func (p *Param) ExponentialRampToValueAtTime(v, t float64) *Param {
	if !(v > 0) {
		p.g.fail(fmt.Errorf("%w: %s=%v at %.3f", ErrNonPositiveRamp, p.name, v, t))
		return p
	}
	return p.insert(Event{Kind: RampExponential, Time: t, Value: v})
}

func (p *Param) insert(e Event) *Param {
	if math.IsNaN(e.Time) || isInf(e.Time) || e.Time < 0 || math.IsNaN(e.Value) {
		p.g.fail(fmt.Errorf("%w: %s %s at %v", ErrBadTime, p.name, e.Kind, e.Time))
		return p
	}
	// Events at equal times keep insertion order
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > e.Time })
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
	return p
}

// ValueAt evaluates the automation curve at t, ignoring connected inputs
func (p *Param) ValueAt(t float64) float64 {
	if len(p.events) == 0 {
		return p.def
	}

	// next is the first event strictly after t
	next := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t })

	t0, v0 := p.g.origin, p.def
	if next > 0 {
		prev := p.events[next-1]
		t0, v0 = prev.Time, prev.Value
	}
	if next == len(p.events) {
		return v0
	}

	e := p.events[next]
	if t <= t0 {
		return v0
	}
	switch e.Kind {
	case RampLinear:
		if e.Time <= t0 {
			return v0
		}
		return v0 + (e.Value-v0)*(t-t0)/(e.Time-t0)
	case RampExponential:
		// A zero or sign-changing start holds until the ramp ends
		if e.Time <= t0 || v0*e.Value <= 0 {
			return v0
		}
		return v0 * math.Pow(e.Value/v0, (t-t0)/(e.Time-t0))
	default:
		return v0
	}
}

func (p *Param) value(rc *renderCtx) float64 {
	v := p.ValueAt(rc.t)
	for _, n := range p.ins {
		v += eval(n, rc)
	}
	return v
}

func isInf(v float64) bool { return math.IsInf(v, 0) }
