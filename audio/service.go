package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/status"
)

// Service wraps Engine for the service hub
// The engine is built in Init so it can share the status registry
type Service struct {
	opts    Options
	stat    *status.Service
	engine  *Engine
	stopped atomic.Bool
}

// NewService creates the audio service; stat supplies the metrics registry
func NewService(opts Options, stat *status.Service) *Service {
	return &Service{opts: opts, stat: stat}
}

func (s *Service) Name() string { return "audio" }

func (s *Service) Dependencies() []string {
	if s.stat != nil {
		return []string{s.stat.Name()}
	}
	return nil
}

// Init builds the engine
// Accepted args: bool mutes for this session without persisting;
// config.Patch is applied as a session overlay
func (s *Service) Init(args ...any) error {
	opts := s.opts
	if s.stat != nil && opts.Status == nil {
		opts.Status = s.stat.Registry()
	}
	s.engine = New(opts)

	for _, arg := range args {
		switch v := arg.(type) {
		case bool:
			if v {
				s.engine.Store().Overlay(config.Patch{}.WithEnabled(false))
			}
		case config.Patch:
			s.engine.Store().Overlay(v)
		case nil:
		default:
			return fmt.Errorf("audio service: unsupported init arg %T", arg)
		}
	}
	return nil
}

// Start is a no-op; the device opens on the first cue
func (s *Service) Start() error { return nil }

// Stop halts the loop and closes the device
func (s *Service) Stop() error {
	if s.engine == nil || !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	return s.engine.Close()
}

// Engine returns the engine, nil before Init
func (s *Service) Engine() *Engine { return s.engine }
