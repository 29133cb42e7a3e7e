// Package device schedules audio graphs onto an output clock
package device

import (
	"errors"

	"github.com/lixenwraith/gallop/graph"
)

// Sentinel errors
var (
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrPipeClosed     = errors.New("audio pipe closed")
	ErrClosed         = errors.New("audio device closed")
	ErrUnavailable    = errors.New("audio device unavailable")
	ErrUnknownOutput  = errors.New("unknown audio output")
)

// State mirrors the lifecycle of a platform audio context
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "suspended"
	}
}

// Device is a shared audio output with its own clock
type Device interface {
	// CurrentTime is the device clock in seconds; graph times are expressed on it
	CurrentTime() float64
	SampleRate() int
	State() State
	// Resume starts or restarts output after creation or suspension
	Resume() error
	// Start schedules a finished graph; the device keeps no handle after it plays
	Start(g *graph.Graph) error
	Close() error
}

// Factory creates a device on first use
type Factory func() (Device, error)
