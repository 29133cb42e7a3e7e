package config

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gallop/parameter"
)

// Store holds the current settings and writes every change through to storage
type Store struct {
	mu      sync.RWMutex
	cfg     SoundConfig
	overlay Patch
	storage Storage
	key     string
	logger  *log.Logger
}

// NewStore loads the persisted record; anything missing or unreadable yields defaults
func NewStore(storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		storage: storage,
		key:     parameter.ConfigStorageKey,
		logger:  logger,
	}
	s.cfg = s.load()
	return s
}

func (s *Store) load() SoundConfig {
	data, err := s.storage.Load(s.key)
	if errors.Is(err, ErrNotFound) {
		return Default()
	}
	if err != nil {
		s.logger.Printf("config: %v, using defaults", err)
		return Default()
	}
	cfg, err := Decode(data)
	if err != nil {
		s.logger.Printf("config: %v, using defaults", err)
		return Default()
	}
	return cfg
}

// Get returns the effective settings, including any overlay
func (s *Store) Get() SoundConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Apply(s.overlay)
}

// Persisted returns the settings as stored, ignoring the overlay
func (s *Store) Persisted() SoundConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set merges p into the settings and persists the result immediately
// The in-memory value is updated even when persistence fails
func (s *Store) Set(p Patch) error {
	s.mu.Lock()
	s.cfg = s.cfg.Apply(p)
	// An explicit change supersedes the overlay for the same field
	s.overlay = clearFields(s.overlay, p)
	cfg := s.cfg
	s.mu.Unlock()

	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := s.storage.Save(s.key, data); err != nil {
		return fmt.Errorf("persist sound config: %w", err)
	}
	return nil
}

// Overlay applies p on top of the persisted settings without saving it
// Used for environment and command line overrides
func (s *Store) Overlay(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = s.overlay.Merge(p)
}

func clearFields(overlay, p Patch) Patch {
	if p.Enabled != nil {
		overlay.Enabled = nil
	}
	if p.Volume != nil {
		overlay.Volume = nil
	}
	if p.Theme != nil {
		overlay.Theme = nil
	}
	return overlay
}

// Encode serializes a settings record
func Encode(cfg SoundConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode sound config: %w", err)
	}
	return data, nil
}

// Decode parses a settings record onto the defaults
// JSON records from the web client parse as YAML flow mappings
func Decode(data []byte) (SoundConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg.Normalize(), nil
}
