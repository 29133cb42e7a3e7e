//go:build js

package clock

import (
	"time"

	"github.com/gopherjs/gopherjs/js"
)

// Browser schedules callbacks on the page event loop through setTimeout
type Browser struct{}

// NewBrowser creates a setTimeout backed clock
func NewBrowser() Browser {
	return Browser{}
}

func (Browser) Now() time.Time {
	return time.Now()
}

func (Browser) AfterFunc(d time.Duration, fn func()) Timer {
	t := &browserTimer{}
	t.id = js.Global.Call("setTimeout", func() {
		t.fired = true
		fn()
	}, int(d/time.Millisecond))
	return t
}

type browserTimer struct {
	id    *js.Object
	fired bool
}

// Stop clears the timeout; the page loop is single threaded so no locking is needed
func (t *browserTimer) Stop() bool {
	if t.fired || t.id == nil {
		return false
	}
	js.Global.Call("clearTimeout", t.id)
	t.id = nil
	return true
}
