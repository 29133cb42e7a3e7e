package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gallop/audio"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/parameter"
)

func newLogger() *log.Logger { return log.New(os.Stderr, "gallop-sfx: ", 0) }

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	var c common
	c.register(fs)
	gap := fs.Duration("gap", 400*time.Millisecond, "Pause between cues")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}
	events, err := parseEvents(fs.Args())
	if err != nil {
		return err
	}

	logger := newLogger()
	store, err := c.store(logger)
	if err != nil {
		return err
	}
	s, err := c.synth()
	if err != nil {
		return err
	}
	if !store.Get().Enabled {
		fmt.Fprintln(os.Stderr, "Sound is disabled (gallop-sfx config -set enabled=true)")
	}

	eng := audio.New(audio.Options{
		Store:   store,
		Factory: device.NewBeepFactory(c.output, c.rate),
		Synth:   s,
		Logger:  logger,
	})
	defer eng.Close()

	for i, id := range events {
		if i > 0 {
			time.Sleep(*gap)
		}
		eng.Play(id)
	}
	if bd, ok := eng.Device().(*device.BeepDevice); ok {
		fmt.Fprintf(os.Stderr, "Output: %s\n", bd.Output())
	}
	time.Sleep(parameter.CueMaxDuration + parameter.AudioDrainTail)

	if c.stats {
		eng.Status().WriteTo(os.Stdout)
	}
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var c common
	c.register(fs)
	gap := fs.Duration("gap", 400*time.Millisecond, "Spacing between cues")
	out := fs.String("o", "", "Write the mix to this WAV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}
	events, err := parseEvents(fs.Args())
	if err != nil {
		return err
	}

	logger := newLogger()
	store, err := c.store(logger)
	if err != nil {
		return err
	}
	// Rendering ignores the persisted mute
	store.Overlay(config.Patch{}.WithEnabled(true))
	s, err := c.synth()
	if err != nil {
		return err
	}

	rig := newOfflineRig(store, s, c.rate, logger)
	rig.playSequence(events, *gap)
	if err := report(rig.dev, *out); err != nil {
		return err
	}
	if c.stats {
		rig.eng.Status().WriteTo(os.Stdout)
	}
	return nil
}

func runGallop(args []string) error {
	fs := flag.NewFlagSet("gallop", flag.ContinueOnError)
	var c common
	c.register(fs)
	speed := fs.Float64("speed", 0.6, "Constant drag speed 0..1")
	sweep := fs.Bool("sweep", false, "Ramp speed from 0 to 1 instead of holding -speed")
	duration := fs.Duration("duration", 2*time.Second, "Length of the drag")
	hold := fs.Duration("hold", 0, "Hold the pointer still this long before release")
	out := fs.String("o", "", "Render offline to this WAV file instead of playing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	curve := constantSpeed(*speed)
	if *sweep {
		curve = sweepSpeed
	}

	logger := newLogger()
	store, err := c.store(logger)
	if err != nil {
		return err
	}
	s, err := c.synth()
	if err != nil {
		return err
	}

	if *out != "" {
		store.Overlay(config.Patch{}.WithEnabled(true))
		rig := newOfflineRig(store, s, c.rate, logger)
		rig.gallop(curve, *duration, *hold, parameter.DragSampleInterval)
		if err := report(rig.dev, *out); err != nil {
			return err
		}
		if c.stats {
			rig.eng.Status().WriteTo(os.Stdout)
		}
		return nil
	}

	eng := audio.New(audio.Options{
		Store:   store,
		Factory: device.NewBeepFactory(c.output, c.rate),
		Synth:   s,
		Logger:  logger,
	})
	defer eng.Close()

	ticker := time.NewTicker(parameter.DragSampleInterval)
	defer ticker.Stop()
	start := time.Now()
	done := time.After(*duration)

	eng.StartGallop()
drag:
	for {
		select {
		case <-ticker.C:
			eng.UpdateGallop(curve(time.Since(start), *duration))
		case <-done:
			break drag
		}
	}
	time.Sleep(*hold)
	eng.StopGallop()
	time.Sleep(parameter.AudioDrainTail)

	if c.stats {
		eng.Status().WriteTo(os.Stdout)
	}
	return nil
}

// report prints levels and optionally writes the mix
func report(dev *device.Offline, path string) error {
	lvl := device.Measure(dev.Samples())
	fmt.Printf("duration %.3fs  peak %.1f dBFS  rms %.1f dBFS\n", dev.Duration(), lvl.PeakDB(), lvl.RMSDB())
	if lvl.Peak > 1 {
		fmt.Fprintln(os.Stderr, "Warning: mix exceeds full scale and will be limited")
	}
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dev.WriteWAV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var sets stringList
	fs.Var(&sets, "set", "Change a setting: enabled=BOOL, volume=0..1, theme=NAME (repeatable)")
	reset := fs.Bool("reset", false, "Restore the defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger()
	store := openStore(logger)

	patch, err := config.ParseAssignments(sets)
	if err != nil {
		return err
	}
	if *reset {
		d := config.Default()
		patch = config.Patch{}.WithEnabled(d.Enabled).WithVolume(d.Volume).WithTheme(d.Theme).Merge(patch)
	}
	if !patch.Empty() {
		if err := store.Set(patch); err != nil {
			return err
		}
	}

	store.Overlay(config.LoadEnvPatch())
	data, err := config.Encode(store.Get())
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	if store.Get() != store.Persisted() {
		fmt.Fprintln(os.Stderr, "(environment overrides are active)")
	}
	return nil
}

func runThemes(args []string) error {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	var c common
	fs.StringVar(&c.profiles, "profiles", "", "YAML theme table overlay")
	names := fs.Bool("names", false, "Print theme names only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.synth()
	if err != nil {
		return err
	}
	if *names {
		for _, n := range s.Profiles().Names() {
			fmt.Println(n)
		}
		return nil
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(s.Profiles()); err != nil {
		return err
	}
	return enc.Close()
}

func runEvents(args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, id := range core.Events() {
		w := audio.ThrottleWindow(id)
		if w > 0 {
			fmt.Printf("%-16s throttle %v\n", id, w)
		} else {
			fmt.Printf("%-16s\n", id)
		}
	}
	return nil
}
