// gallop-scale is a terminal horse scale: drag the horse along the track with
// the mouse to hear the gallop loop, or use the keys to fire individual cues
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gallop/audio"
	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/input"
	"github.com/lixenwraith/gallop/parameter"
	"github.com/lixenwraith/gallop/service"
	"github.com/lixenwraith/gallop/status"
)

const (
	trackMargin  = 4
	volumeStep   = 0.1
	messageTTL   = 2 * time.Second
	horseGlyph   = '♞'
	trackGlyph   = '─'
	tickInterval = 10
)

var (
	styleTrack = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHorse = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDrag  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleLabel = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMuted = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Scale is the demo state; all fields are owned by the run loop
type Scale struct {
	screen        tcell.Screen
	width, height int

	engine  *audio.Engine
	keys    *input.KeyMap
	drag    *input.DragTracker
	steps   *input.StepTrigger
	value   float64
	message string
	msgAt   time.Time
}

func newScale(screen tcell.Screen, eng *audio.Engine, keys *input.KeyMap, clk clock.Clock) *Scale {
	s := &Scale{
		screen: screen,
		engine: eng,
		keys:   keys,
		drag:   input.NewDragTracker(clk),
		value:  (parameter.ScaleMin + parameter.ScaleMax) / 2,
	}
	s.steps = input.NewStepTrigger(parameter.SliderStepDistance, s.value)
	s.width, s.height = screen.Size()
	return s
}

// track returns the first cell and length of the scale track
func (s *Scale) track() (x0, length, y int) {
	length = s.width - 2*trackMargin
	if length < 2 {
		length = 2
	}
	return trackMargin, length, s.height / 2
}

func (s *Scale) say(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.msgAt = time.Now()
}

func (s *Scale) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	x0, length, ty := s.track()
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !s.drag.Active():
		if y < ty-1 || y > ty+1 || x < x0 || x >= x0+length {
			return
		}
		s.value = input.ScaleAt(x-x0, length)
		s.drag.Begin(s.value)
		s.steps.Reset(s.value)
		s.engine.StartGallop()
	case pressed:
		v := input.ScaleAt(x-x0, length)
		if speed, ok := s.drag.Move(v); ok {
			s.value = v
			s.engine.UpdateGallop(speed)
		}
	case s.drag.End():
		s.engine.StopGallop()
		s.say("weight %.0f", s.value)
	}
}

// nudge moves the horse one unit from the keyboard, with a hoof every step distance
func (s *Scale) nudge(dir float64) {
	s.value = input.ClampScale(s.value + dir)
	if s.steps.Move(s.value) {
		s.engine.Play(core.EventGallopStep)
	}
}

func (s *Scale) handleKey(ev *tcell.EventKey) bool {
	b := s.keys.Lookup(ev)
	cfg := s.engine.Config()

	switch b.Action {
	case input.ActionQuit:
		return false
	case input.ActionPlay:
		s.engine.Play(b.Event)
		s.say("%s", b.Event)
	case input.ActionThemeNext:
		next := core.Theme((int(cfg.Theme) + 1) % int(core.ThemeCount))
		s.engine.SetConfig(config.Patch{}.WithTheme(next))
		s.engine.Play(core.EventSelect)
		s.say("theme %s", next)
	case input.ActionVolumeUp, input.ActionVolumeDown:
		step := volumeStep
		if b.Action == input.ActionVolumeDown {
			step = -step
		}
		vol := math.Round((cfg.Volume+step)*10) / 10
		s.engine.SetConfig(config.Patch{}.WithVolume(vol))
		s.engine.Play(core.EventTap)
		s.say("volume %.0f%%", s.engine.Config().Volume*100)
	case input.ActionToggleMute:
		s.engine.SetConfig(config.Patch{}.WithEnabled(!cfg.Enabled))
		if !cfg.Enabled {
			s.engine.Play(core.EventSelect)
		}
	case input.ActionNudgeLeft:
		s.nudge(-1)
	case input.ActionNudgeRight:
		s.nudge(1)
	}
	return true
}

func (s *Scale) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventResize:
		s.width, s.height = s.screen.Size()
		s.screen.Sync()
	}
	return true
}

func (s *Scale) text(x, y int, style tcell.Style, str string) {
	for _, r := range str {
		if x >= s.width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (s *Scale) draw() {
	s.screen.Clear()
	x0, length, y := s.track()

	s.text(x0, y-3, styleLabel, "Horse scale")

	for i := 0; i < length; i++ {
		glyph := trackGlyph
		if i%tickInterval == 0 {
			glyph = '┼'
		}
		s.screen.SetContent(x0+i, y, glyph, nil, styleTrack)
	}
	pos := int(math.Round((s.value - parameter.ScaleMin) / (parameter.ScaleMax - parameter.ScaleMin) * float64(length-1)))
	horse := styleHorse
	if s.drag.Active() {
		horse = styleDrag
	}
	s.screen.SetContent(x0+pos, y-1, horseGlyph, nil, horse)
	s.text(x0, y+1, styleDim, fmt.Sprintf("%3.0f", parameter.ScaleMin))
	s.text(x0+length-3, y+1, styleDim, fmt.Sprintf("%3.0f", parameter.ScaleMax))

	cfg := s.engine.Config()
	state := fmt.Sprintf("theme %-6s volume %3.0f%%", cfg.Theme, cfg.Volume*100)
	s.text(x0, y+3, styleLabel, state)
	if !cfg.Enabled {
		s.text(x0+len(state)+2, y+3, styleMuted, "muted")
	}

	g := s.engine.Gallop()
	loop := "idle"
	switch {
	case g.Running() && g.Coasting():
		loop = "coasting"
	case g.Running():
		loop = fmt.Sprintf("galloping  speed %.2f  interval %v", g.Speed(), audio.GallopInterval(g.Speed()))
	}
	s.text(x0, y+4, styleDim, "loop "+loop)

	if s.message != "" && time.Since(s.msgAt) < messageTTL {
		s.text(x0, y+6, styleLabel, s.message)
	}
	s.text(x0, s.height-1, styleDim, "drag the horse | 1-9,0 cues | t theme | +/- volume | m mute | h/l nudge | q quit")

	s.screen.Show()
}

func (s *Scale) run() {
	ticker := time.NewTicker(parameter.DragSampleInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	core.Go(func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	for {
		select {
		case ev := <-eventChan:
			if !s.handleInput(ev) {
				return
			}
		case <-ticker.C:
			s.draw()
		}
	}
}

func loadKeyMap(path string) (*input.KeyMap, error) {
	keys := input.DefaultKeyMap()
	if path == "" {
		return keys, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	override, err := input.LoadKeyMap(data)
	if err != nil {
		return nil, err
	}
	return input.MergeKeyMap(keys, override), nil
}

func main() {
	keymapPath := flag.String("keymap", "", "YAML key binding overrides")
	output := flag.String("output", config.LoadEnvOutput(device.OutputAuto), "Audio output")
	mute := flag.Bool("mute", false, "Start muted without changing saved settings")
	memory := flag.Bool("memory", false, "Ignore persisted settings")
	logPath := flag.String("log", "", "Write diagnostics to this file")
	flag.Parse()

	keys, err := loadKeyMap(*keymapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load keymap: %v\n", err)
		os.Exit(1)
	}

	// The terminal owns stdout and stderr while running
	logger := log.New(os.Stderr, "gallop-scale: ", log.LstdFlags)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	var storage config.Storage = config.NewMemoryStorage()
	if !*memory {
		if fs, err := config.NewFileStorage(); err == nil {
			storage = fs
		} else {
			logger.Printf("settings not persisted: %v", err)
		}
	}

	clk := clock.NewReal()
	stat := status.NewService()
	snd := audio.NewService(audio.Options{
		Store:   config.NewStore(storage, logger),
		Factory: device.NewBeepFactory(*output, config.LoadEnvSampleRate(parameter.AudioSampleRate)),
		Clock:   clk,
		Logger:  logger,
	}, stat)

	hub := service.NewHub()
	for _, svc := range []service.Service{stat, snd} {
		if err := hub.Register(svc); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register %s: %v\n", svc.Name(), err)
			os.Exit(1)
		}
	}
	if err := hub.InitAll(*mute, config.LoadEnvPatch()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()

	core.SetCrashHandler(func(r any) {
		screen.Fini()
		hub.StopAll()
		fmt.Fprintf(os.Stderr, "gallop-scale crashed: %v\n", r)
		os.Exit(1)
	})

	scale := newScale(screen, service.MustGet[*audio.Service](hub, snd.Name()).Engine(), keys, clk)
	func() {
		defer func() {
			if r := recover(); r != nil {
				core.HandleCrash(r)
			}
		}()
		scale.run()
	}()

	screen.Fini()
	if err := hub.StopAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown: %v\n", err)
	}
	stat.Registry().WriteTo(logger.Writer())
}
