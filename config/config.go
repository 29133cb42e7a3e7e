// Package config owns the persisted user sound settings
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/parameter"
)

// Sentinel errors
var (
	ErrNotFound      = errors.New("config record not found")
	ErrInvalidConfig = errors.New("invalid sound config")
)

// SoundConfig is the user-facing sound settings record
type SoundConfig struct {
	Enabled bool       `yaml:"enabled"`
	Volume  float64    `yaml:"volume"`
	Theme   core.Theme `yaml:"theme"`
}

// Default returns the settings used when nothing valid is persisted
func Default() SoundConfig {
	theme, _ := core.ParseTheme(parameter.DefaultSoundTheme)
	return SoundConfig{
		Enabled: parameter.DefaultSoundEnabled,
		Volume:  parameter.DefaultSoundVolume,
		Theme:   theme,
	}
}

// Patch is a partial update; nil fields keep their current value
type Patch struct {
	Enabled *bool
	Volume  *float64
	Theme   *core.Theme
}

// Empty reports whether the patch changes nothing
func (p Patch) Empty() bool {
	return p.Enabled == nil && p.Volume == nil && p.Theme == nil
}

// WithEnabled returns a copy of p that sets Enabled
func (p Patch) WithEnabled(v bool) Patch {
	p.Enabled = &v
	return p
}

// WithVolume returns a copy of p that sets Volume
func (p Patch) WithVolume(v float64) Patch {
	p.Volume = &v
	return p
}

// WithTheme returns a copy of p that sets Theme
func (p Patch) WithTheme(t core.Theme) Patch {
	p.Theme = &t
	return p
}

// Merge returns p with every field set in other taking precedence
func (p Patch) Merge(other Patch) Patch {
	if other.Enabled != nil {
		p.Enabled = other.Enabled
	}
	if other.Volume != nil {
		p.Volume = other.Volume
	}
	if other.Theme != nil {
		p.Theme = other.Theme
	}
	return p
}

// Apply performs a shallow merge and normalizes the result
func (c SoundConfig) Apply(p Patch) SoundConfig {
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Volume != nil {
		c.Volume = *p.Volume
	}
	if p.Theme != nil && p.Theme.Valid() {
		c.Theme = *p.Theme
	}
	return c.Normalize()
}

// Normalize clamps volume to [0,1]; NaN becomes the default volume
func (c SoundConfig) Normalize() SoundConfig {
	switch {
	case math.IsNaN(c.Volume):
		c.Volume = parameter.DefaultSoundVolume
	case c.Volume < 0:
		c.Volume = 0
	case c.Volume > 1:
		c.Volume = 1
	}
	return c
}

// Validate rejects records that cannot be normalized into meaning
func (c SoundConfig) Validate() error {
	if !c.Theme.Valid() {
		return fmt.Errorf("%w: theme %d", ErrInvalidConfig, int(c.Theme))
	}
	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) {
		return fmt.Errorf("%w: volume %v", ErrInvalidConfig, c.Volume)
	}
	return nil
}

// Audible reports whether cues should produce sound at all
func (c SoundConfig) Audible() bool {
	return c.Enabled && c.Volume > 0
}
