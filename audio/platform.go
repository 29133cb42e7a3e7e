//go:build !js

package audio

import (
	"github.com/lixenwraith/gallop/clock"
	"github.com/lixenwraith/gallop/config"
	"github.com/lixenwraith/gallop/device"
	"github.com/lixenwraith/gallop/parameter"
)

// defaultFactory opens the output named by the environment, auto-detected otherwise
func defaultFactory() device.Factory {
	return device.NewBeepFactory(
		config.LoadEnvOutput(device.OutputAuto),
		config.LoadEnvSampleRate(parameter.AudioSampleRate),
	)
}

func defaultClock() clock.Clock { return clock.NewReal() }
