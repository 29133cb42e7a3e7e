//go:build js

// gallop-web exposes the sound engine to page scripts as window.gallopSfx
//
//	gallopSfx.play("ui.tap")
//	gallopSfx.startGallop(); gallopSfx.updateGallop(0.7); gallopSfx.stopGallop()
//	gallopSfx.setConfig({volume: 0.3, theme: "zen"})
//
// No method throws; failures are logged to the console
package main

import (
	"log"
	"strings"

	"github.com/gopherjs/gopherjs/js"

	"github.com/lixenwraith/gallop/audio"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/core"
)

const globalName = "gallopSfx"

// guard keeps a panic inside a page callback from reaching the caller
func guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()
	fn()
}

func present(o *js.Object) bool { return o != nil && o != js.Undefined }

// patchFrom reads the recognized fields of a plain JS object
// Unknown themes and non-numeric volumes are skipped
func patchFrom(o *js.Object) config.Patch {
	var p config.Patch
	if !present(o) {
		return p
	}
	if v := o.Get("enabled"); present(v) {
		p = p.WithEnabled(v.Bool())
	}
	if v := o.Get("volume"); present(v) && js.Global.Get("Number").Call("isFinite", v).Bool() {
		p = p.WithVolume(v.Float())
	}
	if v := o.Get("theme"); present(v) {
		if t, err := core.ParseTheme(v.String()); err == nil {
			p = p.WithTheme(t)
		}
	}
	return p
}

// console writes log lines to console.warn
type console struct{}

func (console) Write(p []byte) (int, error) {
	js.Global.Get("console").Call("warn", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func configObject(cfg config.SoundConfig) map[string]any {
	return map[string]any{
		"enabled": cfg.Enabled,
		"volume":  cfg.Volume,
		"theme":   cfg.Theme.String(),
	}
}

func main() {
	logger := log.New(console{}, "gallop: ", 0)
	eng := audio.New(audio.Options{
		Store:  config.NewStore(config.NewLocalStorage(), logger),
		Logger: logger,
	})

	api := map[string]any{
		"play": func(id string) {
			guard(func() { eng.Play(core.EventID(id)) })
		},
		"startGallop": func() {
			guard(eng.StartGallop)
		},
		"updateGallop": func(speed float64) {
			guard(func() { eng.UpdateGallop(speed) })
		},
		"stopGallop": func() {
			guard(eng.StopGallop)
		},
		"getConfig": func() map[string]any {
			return configObject(eng.Config())
		},
		"setConfig": func(o *js.Object) {
			guard(func() { eng.SetConfig(patchFrom(o)) })
		},
		"events": func() []string {
			var out []string
			for _, id := range core.Events() {
				out = append(out, id.String())
			}
			return out
		},
	}
	js.Global.Set(globalName, api)
}
