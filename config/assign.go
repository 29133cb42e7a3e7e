package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/gallop/core"
)

// ParseAssignments builds a patch from key=value pairs
// Keys: enabled (bool), volume (0..1), theme (name)
func ParseAssignments(pairs []string) (Patch, error) {
	var p Patch
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Patch{}, fmt.Errorf("%w: %q is not key=value", ErrInvalidConfig, pair)
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)

		switch key {
		case "enabled":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return Patch{}, fmt.Errorf("%w: enabled: %v", ErrInvalidConfig, err)
			}
			p = p.WithEnabled(v)
		case "volume":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Patch{}, fmt.Errorf("%w: volume: %v", ErrInvalidConfig, err)
			}
			p = p.WithVolume(v)
		case "theme":
			t, err := core.ParseTheme(value)
			if err != nil {
				return Patch{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			p = p.WithTheme(t)
		default:
			return Patch{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
		}
	}
	return p, nil
}
