package config

import (
	"os"
	"strconv"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/parameter"
)

// LoadEnvPatch reads sound overrides from environment variables
// Unparseable values are ignored
func LoadEnvPatch() Patch {
	return envPatch(os.LookupEnv)
}

func envPatch(lookup func(string) (string, bool)) Patch {
	var p Patch

	if enabled, ok := lookup(parameter.EnvSoundEnabled); ok && enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			p = p.WithEnabled(val)
		}
	}

	// Volume is given as 0-100 and converted to 0.0-1.0
	if volume, ok := lookup(parameter.EnvSoundVolume); ok && volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			v := float64(val) / 100.0
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			p = p.WithVolume(v)
		}
	}

	if theme, ok := lookup(parameter.EnvSoundTheme); ok && theme != "" {
		if val, err := core.ParseTheme(theme); err == nil {
			p = p.WithTheme(val)
		}
	}

	return p
}

// LoadEnvSampleRate returns the sample rate override, or def when unset or out of range
func LoadEnvSampleRate(def int) int {
	if sr := os.Getenv(parameter.EnvSampleRate); sr != "" {
		if val, err := strconv.Atoi(sr); err == nil &&
			val >= parameter.AudioMinSampleRate && val <= parameter.AudioMaxSampleRate {
			return val
		}
	}
	return def
}

// LoadEnvOutput returns the output backend override, or def when unset
func LoadEnvOutput(def string) string {
	if out := os.Getenv(parameter.EnvOutput); out != "" {
		return out
	}
	return def
}
