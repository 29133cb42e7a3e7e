package core

import "fmt"

// Theme selects the timbre family used by every synthesizer
type Theme int

const (
	ThemeEpic Theme = iota
	ThemeInk
	ThemeJade
	ThemeBamboo
	ThemeZen
	ThemeRetro
	ThemeCount
)

var themeNames = [...]string{"epic", "ink", "jade", "bamboo", "zen", "retro"}

func (t Theme) String() string {
	if t >= 0 && int(t) < len(themeNames) {
		return themeNames[t]
	}
	return "unknown"
}

// Valid reports whether t is one of the known themes
func (t Theme) Valid() bool {
	return t >= 0 && t < ThemeCount
}

// ParseTheme resolves a theme name
func ParseTheme(s string) (Theme, error) {
	for i, name := range themeNames {
		if name == s {
			return Theme(i), nil
		}
	}
	return ThemeEpic, fmt.Errorf("%w: theme %q", ErrUnknownName, s)
}

// Themes returns all themes in declaration order
func Themes() []Theme {
	out := make([]Theme, ThemeCount)
	for i := range out {
		out[i] = Theme(i)
	}
	return out
}

func (t Theme) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: theme %d", ErrUnknownName, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Theme) UnmarshalText(b []byte) error {
	v, err := ParseTheme(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
