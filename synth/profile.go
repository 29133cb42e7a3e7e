package synth

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gallop/core"
)

//go:embed themes.yaml
var defaultThemes []byte

// ErrInvalidProfile is returned for theme tables that cannot drive the voices
var ErrInvalidProfile = errors.New("invalid theme profile")

// Material shapes the short UI click
type Material struct {
	Wave        core.Waveform   `yaml:"wave"`
	TapFreq     float64         `yaml:"tap_freq"`
	SelectFreq  float64         `yaml:"select_freq"`
	TapDecay    float64         `yaml:"tap_decay"`
	SelectDecay float64         `yaml:"select_decay"`
	Filter      core.FilterKind `yaml:"filter"`
	Cutoff      float64         `yaml:"cutoff,omitempty"`
	Q           float64         `yaml:"q,omitempty"`
	Glide       float64         `yaml:"glide,omitempty"`
	GlideTime   float64         `yaml:"glide_time,omitempty"`
}

// Hoof configures the optional knock layer of a hoof impact
type Hoof struct {
	KnockPitch float64 `yaml:"knock_pitch"`
}

// Gong configures the two-operator FM gong
type Gong struct {
	Base  float64 `yaml:"base"`
	Ratio float64 `yaml:"ratio"`
}

// Arpeggio configures the ascending celebration figure
type Arpeggio struct {
	Wave   core.Waveform `yaml:"wave"`
	Stride float64       `yaml:"stride"`
	Notes  []float64     `yaml:"notes,flow"`
}

// Swish configures the band-pass noise sweep
type Swish struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

// Profile is the full parameter set for one theme
type Profile struct {
	Material Material `yaml:"material"`
	Hoof     Hoof     `yaml:"hoof"`
	Gong     Gong     `yaml:"gong"`
	Arpeggio Arpeggio `yaml:"arpeggio"`
	Swish    Swish    `yaml:"swish"`
}

// Validate checks every value a voice divides by or ramps toward
func (p Profile) Validate() error {
	m := p.Material
	switch {
	case m.TapFreq <= 0 || m.SelectFreq <= 0:
		return fmt.Errorf("%w: material frequencies must be positive", ErrInvalidProfile)
	case m.TapDecay <= 0 || m.SelectDecay <= 0:
		return fmt.Errorf("%w: material decays must be positive", ErrInvalidProfile)
	case m.Glide < 0 || (m.Glide > 0 && m.GlideTime <= 0):
		return fmt.Errorf("%w: glide needs a positive ratio and time", ErrInvalidProfile)
	case p.Hoof.KnockPitch < 0:
		return fmt.Errorf("%w: knock pitch must not be negative", ErrInvalidProfile)
	case p.Gong.Base <= 0 || p.Gong.Ratio <= 0:
		return fmt.Errorf("%w: gong base and ratio must be positive", ErrInvalidProfile)
	case len(p.Arpeggio.Notes) == 0 || p.Arpeggio.Stride < 0:
		return fmt.Errorf("%w: arpeggio needs notes and a non-negative stride", ErrInvalidProfile)
	case p.Swish.From <= 0 || p.Swish.To <= 0:
		return fmt.Errorf("%w: swish band must be positive", ErrInvalidProfile)
	}
	for _, n := range p.Arpeggio.Notes {
		if n <= 0 {
			return fmt.Errorf("%w: arpeggio note %v", ErrInvalidProfile, n)
		}
	}
	return nil
}

// Profiles maps every theme to its parameters
type Profiles map[core.Theme]Profile

type profileFile struct {
	Themes map[string]yaml.Node `yaml:"themes"`
}

// DefaultProfiles returns the built-in theme table
func DefaultProfiles() Profiles {
	p, err := decodeProfiles(defaultThemes, nil)
	if err != nil {
		panic(fmt.Sprintf("built-in theme table: %v", err))
	}
	return p
}

// LoadProfiles overlays the YAML document in r onto base
// Fields absent from the document keep their base value
func LoadProfiles(r io.Reader, base Profiles) (Profiles, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read theme table: %w", err)
	}
	return decodeProfiles(data, base)
}

func decodeProfiles(data []byte, base Profiles) (Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	out := make(Profiles, core.ThemeCount)
	for k, v := range base {
		out[k] = v.clone()
	}
	for name, node := range file.Themes {
		theme, err := core.ParseTheme(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		p := out[theme]
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, err)
		}
		out[theme] = p
	}

	for _, theme := range core.Themes() {
		p, ok := out[theme]
		if !ok {
			return nil, fmt.Errorf("%w: theme %s missing", ErrInvalidProfile, theme)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", theme, err)
		}
	}
	return out, nil
}

// Get returns the profile for theme, falling back to epic for unknown themes
func (ps Profiles) Get(theme core.Theme) Profile {
	if p, ok := ps[theme]; ok {
		return p
	}
	return ps[core.ThemeEpic]
}

// MarshalYAML writes the table in the same shape LoadProfiles reads
func (ps Profiles) MarshalYAML() (any, error) {
	themes := make(map[string]Profile, len(ps))
	for k, v := range ps {
		themes[k.String()] = v
	}
	return map[string]any{"themes": themes}, nil
}

// Names returns the theme names present in the table, sorted
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for k := range ps {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return names
}

func (p Profile) clone() Profile {
	p.Arpeggio.Notes = append([]float64(nil), p.Arpeggio.Notes...)
	return p
}
