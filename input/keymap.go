package input

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gallop/core"
)

// Action is what a key does in the terminal demo
type Action uint8

const (
	ActionNone Action = iota
	ActionQuit
	ActionPlay
	ActionThemeNext
	ActionVolumeUp
	ActionVolumeDown
	ActionToggleMute
	ActionNudgeLeft
	ActionNudgeRight
)

var actionNames = map[string]Action{
	"none":        ActionNone,
	"quit":        ActionQuit,
	"theme_next":  ActionThemeNext,
	"volume_up":   ActionVolumeUp,
	"volume_down": ActionVolumeDown,
	"toggle_mute": ActionToggleMute,
	"nudge_left":  ActionNudgeLeft,
	"nudge_right": ActionNudgeRight,
}

// playPrefix introduces a cue binding, e.g. "play:ui.tap"
const playPrefix = "play:"

// Binding is the resolved action for a key; Event is set for ActionPlay
type Binding struct {
	Action Action
	Event  core.EventID
}

// Rune aliases for keys that are awkward as bare YAML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"colon":     ':',
}

// KeyMap binds special keys and runes to actions
type KeyMap struct {
	Keys  map[tcell.Key]Binding
	Runes map[rune]Binding
}

// DefaultKeyMap returns the built-in bindings
func DefaultKeyMap() *KeyMap {
	play := func(id core.EventID) Binding { return Binding{Action: ActionPlay, Event: id} }
	return &KeyMap{
		Keys: map[tcell.Key]Binding{
			tcell.KeyEscape: {Action: ActionQuit},
			tcell.KeyCtrlC:  {Action: ActionQuit},
			tcell.KeyLeft:   {Action: ActionNudgeLeft},
			tcell.KeyRight:  {Action: ActionNudgeRight},
			tcell.KeyEnter:  play(core.EventSelect),
			tcell.KeyTab:    play(core.EventNavigate),
		},
		Runes: map[rune]Binding{
			'q': {Action: ActionQuit},
			't': {Action: ActionThemeNext},
			'+': {Action: ActionVolumeUp},
			'=': {Action: ActionVolumeUp},
			'-': {Action: ActionVolumeDown},
			'm': {Action: ActionToggleMute},
			'h': {Action: ActionNudgeLeft},
			'l': {Action: ActionNudgeRight},
			' ': play(core.EventTap),
			'1': play(core.EventTap),
			'2': play(core.EventSelect),
			'3': play(core.EventNavigate),
			'4': play(core.EventHomeEnter),
			'5': play(core.EventSuccess),
			'6': play(core.EventPageTurn),
			'7': play(core.EventStamp),
			'8': play(core.EventError),
			'9': play(core.EventWhinny),
			'0': play(core.EventGallopStep),
		},
	}
}

// Lookup resolves a key event; unbound keys return ActionNone
func (km *KeyMap) Lookup(ev *tcell.EventKey) Binding {
	if ev.Key() == tcell.KeyRune {
		return km.Runes[ev.Rune()]
	}
	return km.Keys[ev.Key()]
}

// Clone returns a deep copy
func (km *KeyMap) Clone() *KeyMap {
	out := &KeyMap{
		Keys:  make(map[tcell.Key]Binding, len(km.Keys)),
		Runes: make(map[rune]Binding, len(km.Runes)),
	}
	for k, v := range km.Keys {
		out.Keys[k] = v
	}
	for r, v := range km.Runes {
		out.Runes[r] = v
	}
	return out
}

type keyMapFile struct {
	Keys  map[string]string `yaml:"keys"`
	Runes map[string]string `yaml:"runes"`
}

// LoadKeyMap parses YAML overrides into a sparse KeyMap
//
//	keys:
//	  enter: play:result.success
//	runes:
//	  space: play:ui.select
//	  x: none
//
// Only listed keys are populated; "none" unbinds when merged
func LoadKeyMap(data []byte) (*KeyMap, error) {
	var raw keyMapFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keymap parse: %w", err)
	}

	km := &KeyMap{
		Keys:  make(map[tcell.Key]Binding, len(raw.Keys)),
		Runes: make(map[rune]Binding, len(raw.Runes)),
	}
	names := keyNames()
	for name, action := range raw.Keys {
		k, ok := names[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("[keys] unknown key name: %q", name)
		}
		b, err := resolveAction(action)
		if err != nil {
			return nil, fmt.Errorf("[keys] key %q: %w", name, err)
		}
		km.Keys[k] = b
	}
	for name, action := range raw.Runes {
		r, err := resolveRune(name)
		if err != nil {
			return nil, fmt.Errorf("[runes] %w", err)
		}
		b, err := resolveAction(action)
		if err != nil {
			return nil, fmt.Errorf("[runes] key %q: %w", name, err)
		}
		km.Runes[r] = b
	}
	return km, nil
}

// MergeKeyMap returns base with override applied; ActionNone entries delete the key
func MergeKeyMap(base, override *KeyMap) *KeyMap {
	out := base.Clone()
	for k, v := range override.Keys {
		if v.Action == ActionNone {
			delete(out.Keys, k)
		} else {
			out.Keys[k] = v
		}
	}
	for r, v := range override.Runes {
		if v.Action == ActionNone {
			delete(out.Runes, r)
		} else {
			out.Runes[r] = v
		}
	}
	return out
}

// keyNames indexes tcell's key names case-insensitively
func keyNames() map[string]tcell.Key {
	out := make(map[string]tcell.Key, len(tcell.KeyNames)+1)
	for k, name := range tcell.KeyNames {
		out[strings.ToLower(name)] = k
	}
	out["escape"] = tcell.KeyEscape
	return out
}

// resolveRune accepts a single character or a named alias
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return 0, fmt.Errorf("invalid rune key: %q (expected single character or alias)", s)
}

// resolveAction converts an action name to a Binding
func resolveAction(name string) (Binding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if id, ok := strings.CutPrefix(name, playPrefix); ok {
		ev, err := core.ParseEvent(id)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Action: ActionPlay, Event: ev}, nil
	}
	a, ok := actionNames[name]
	if !ok {
		return Binding{}, fmt.Errorf("unknown action: %q", name)
	}
	return Binding{Action: a}, nil
}
