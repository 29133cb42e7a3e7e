//go:build js

package audio

import (
	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/device"
)

func defaultFactory() device.Factory { return device.NewWebAudioFactory() }

func defaultClock() clock.Clock { return clock.NewBrowser() }
