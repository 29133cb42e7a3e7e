// Usage examples:
//
// # Play a few cues on the default output
// gallop-sfx play ui.tap ui.select result.success
//
// # Render the success cue in the jade theme to a WAV file
// gallop-sfx render -theme jade -o success.wav result.success
//
// # Simulate a drag that speeds up over three seconds and render it
// gallop-sfx gallop -sweep -duration 3s -o gallop.wav
//
// # Persist a quieter volume
// gallop-sfx config -set volume=0.3 -set theme=zen
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/parameter"
	"github.com/lixenwraith/gallop/synth"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"play", "play cues on the audio output", runPlay},
	{"render", "render cues offline to WAV and report levels", runRender},
	{"gallop", "drive the gallop loop with synthetic drag input", runGallop},
	{"config", "show or edit the persisted sound settings", runConfig},
	{"themes", "print the theme table as YAML", runThemes},
	{"events", "list event ids and throttle windows", runEvents},
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: gallop-sfx <command> [options]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(os.Stderr, "\nRun 'gallop-sfx <command> -h' for command options")
}

func main() {
	log.SetPrefix("gallop-sfx: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(os.Args[2:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				os.Exit(0)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	usage()
	os.Exit(2)
}

// common holds the options shared by the sound producing commands
type common struct {
	theme    string
	volume   float64
	output   string
	rate     int
	profiles string
	stats    bool
	memory   bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.theme, "theme", "", "Theme override: "+strings.Join(themeNames(), ", "))
	fs.Float64Var(&c.volume, "volume", -1, "Volume override 0..1 (negative keeps the setting)")
	fs.StringVar(&c.output, "output", config.LoadEnvOutput(device.OutputAuto),
		"Audio output: "+strings.Join(device.OutputNames(), ", "))
	fs.IntVar(&c.rate, "rate", config.LoadEnvSampleRate(parameter.AudioSampleRate), "Sample rate in Hz")
	fs.StringVar(&c.profiles, "profiles", "", "YAML theme table overlay")
	fs.BoolVar(&c.stats, "stats", false, "Print engine counters on exit")
	fs.BoolVar(&c.memory, "memory", false, "Ignore persisted settings")
}

// overlay is the session patch from environment and flags; flags win
func (c *common) overlay() (config.Patch, error) {
	p := config.LoadEnvPatch()
	if c.theme != "" {
		t, err := core.ParseTheme(c.theme)
		if err != nil {
			return config.Patch{}, err
		}
		p = p.WithTheme(t)
	}
	if c.volume >= 0 {
		p = p.WithVolume(c.volume)
	}
	return p, nil
}

func (c *common) validate() error {
	if c.rate < parameter.AudioMinSampleRate || c.rate > parameter.AudioMaxSampleRate {
		return fmt.Errorf("sample rate %d outside %d..%d",
			c.rate, parameter.AudioMinSampleRate, parameter.AudioMaxSampleRate)
	}
	return nil
}

// store opens the settings store with the session overlay applied
func (c *common) store(logger *log.Logger) (*config.Store, error) {
	var st *config.Store
	if c.memory {
		st = config.NewStore(config.NewMemoryStorage(), logger)
	} else {
		st = openStore(logger)
	}
	p, err := c.overlay()
	if err != nil {
		return nil, err
	}
	st.Overlay(p)
	return st, nil
}

func (c *common) synth() (*synth.Synth, error) {
	profiles := synth.DefaultProfiles()
	if c.profiles != "" {
		f, err := os.Open(c.profiles)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if profiles, err = synth.LoadProfiles(f, profiles); err != nil {
			return nil, err
		}
	}
	return synth.New(profiles, nil), nil
}

// openStore uses the per-user settings file, or memory when no config directory exists
func openStore(logger *log.Logger) *config.Store {
	fs, err := config.NewFileStorage()
	if err != nil {
		logger.Printf("settings not persisted: %v", err)
		return config.NewStore(config.NewMemoryStorage(), logger)
	}
	return config.NewStore(fs, logger)
}

func parseEvents(args []string) ([]core.EventID, error) {
	if len(args) == 0 {
		return nil, errors.New("no events given (see 'gallop-sfx events')")
	}
	out := make([]core.EventID, 0, len(args))
	for _, a := range args {
		id, err := core.ParseEvent(a)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func themeNames() []string {
	var names []string
	for _, t := range core.Themes() {
		names = append(names, t.String())
	}
	return names
}

// stringList collects a repeatable flag
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }
