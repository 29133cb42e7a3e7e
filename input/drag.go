// Package input turns pointer and key input into sound engine calls
package input

import (
	"math"
	"sync"
	"time"

	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/parameter"
)

// DragTracker converts successive scale positions into a normalized drag speed
type DragTracker struct {
	mu     sync.Mutex
	clock  clock.Clock
	value  float64
	at     time.Time
	active bool
}

// NewDragTracker creates an idle tracker
func NewDragTracker(c clock.Clock) *DragTracker {
	return &DragTracker{clock: c}
}

// Begin starts a drag at value
func (d *DragTracker) Begin(value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = ClampScale(value)
	d.at = d.clock.Now()
	d.active = true
}

// Move records a new position and returns the speed since the previous one
// ok is false when no drag is active or the position did not change
func (d *DragTracker) Move(value float64) (speed float64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return 0, false
	}
	value = ClampScale(value)
	delta := math.Abs(value - d.value)
	if delta == 0 {
		return 0, false
	}
	now := d.clock.Now()
	ms := float64(now.Sub(d.at)) / float64(time.Millisecond)
	d.value, d.at = value, now
	return math.Min(1, delta/(ms+1)*parameter.DragSpeedGain), true
}

// End finishes the drag; it reports whether one was active
func (d *DragTracker) End() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	was := d.active
	d.active = false
	return was
}

// Active reports whether a drag is in progress
func (d *DragTracker) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Value returns the last recorded position
func (d *DragTracker) Value() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// StepTrigger fires once per fixed distance of slider travel
type StepTrigger struct {
	distance float64
	anchor   float64
}

// NewStepTrigger creates a trigger anchored at start
func NewStepTrigger(distance, start float64) *StepTrigger {
	return &StepTrigger{distance: distance, anchor: start}
}

// Move reports whether value is at least one step from the last firing position
func (s *StepTrigger) Move(value float64) bool {
	if math.Abs(value-s.anchor) < s.distance {
		return false
	}
	s.anchor = value
	return true
}

// Reset re-anchors without firing
func (s *StepTrigger) Reset(value float64) { s.anchor = value }

// ClampScale bounds v to the horse scale range
func ClampScale(v float64) float64 {
	switch {
	case math.IsNaN(v), v < parameter.ScaleMin:
		return parameter.ScaleMin
	case v > parameter.ScaleMax:
		return parameter.ScaleMax
	}
	return v
}

// ScaleAt maps a cell offset within a track of length cells onto the scale
func ScaleAt(offset, length int) float64 {
	if length <= 1 {
		return parameter.ScaleMin
	}
	frac := float64(offset) / float64(length-1)
	return ClampScale(parameter.ScaleMin + frac*(parameter.ScaleMax-parameter.ScaleMin))
}
