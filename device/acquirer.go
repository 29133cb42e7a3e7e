package device

import (
	"fmt"
	"log"
	"sync"
)

// Acquirer creates the process-wide device lazily and hands out the same instance
// A failed creation is remembered and never retried
type Acquirer struct {
	mu      sync.Mutex
	factory Factory
	dev     Device
	err     error
	logger  *log.Logger
}

// NewAcquirer wraps factory; nothing is created until Acquire
func NewAcquirer(factory Factory, logger *log.Logger) *Acquirer {
	if logger == nil {
		logger = log.Default()
	}
	return &Acquirer{factory: factory, logger: logger}
}

// Acquire returns the shared device, creating it on first call and resuming it if suspended
func (a *Acquirer) Acquire() (Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	if a.dev == nil {
		dev, err := a.create()
		if err != nil {
			a.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
			a.logger.Printf("audio: %v", a.err)
			return nil, a.err
		}
		a.dev = dev
	}

	switch a.dev.State() {
	case StateClosed:
		return nil, ErrClosed
	case StateSuspended:
		if err := a.dev.Resume(); err != nil {
			// The device stays usable; graphs queue until output starts
			a.logger.Printf("audio: resume: %v", err)
		}
	}
	return a.dev, nil
}

func (a *Acquirer) create() (dev Device, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("device factory panic: %v", r)
		}
	}()
	if a.factory == nil {
		return nil, ErrNoAudioBackend
	}
	return a.factory()
}

// Current returns the device if one exists, without creating or resuming it
func (a *Acquirer) Current() Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev == nil || a.dev.State() == StateClosed {
		return nil
	}
	return a.dev
}

// Close releases the device if it was created
func (a *Acquirer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev == nil {
		return nil
	}
	return a.dev.Close()
}
