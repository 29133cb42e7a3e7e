package parameter

import "time"

// Gallop Loop Timing
const (
	// GallopMinInterval is the tick spacing at full speed
	GallopMinInterval = 120 * time.Millisecond

	// GallopMaxInterval is the tick spacing at rest
	GallopMaxInterval = 350 * time.Millisecond

	// GallopCoastThreshold is the input silence after which the loop stops sounding
	GallopCoastThreshold = 300 * time.Millisecond

	// GallopCoastPoll is the re-check period while coasting
	GallopCoastPoll = 100 * time.Millisecond
)

// Gallop Loudness
const (
	// GallopBaseVolume is the fraction of master volume at speed 0
	GallopBaseVolume = 0.3
	// GallopSpeedVolume is the fraction added linearly up to speed 1
	GallopSpeedVolume = 0.7
	// GallopSettleVolume scales the settling tap played on stop
	GallopSettleVolume = 0.3
)

// Event Throttle Windows
const (
	ThrottleTap      = 40 * time.Millisecond
	ThrottleNavigate = 80 * time.Millisecond
)

// Success cue timing
const (
	// SuccessArpeggioDelay offsets the arpeggio after the success gong, in seconds
	SuccessArpeggioDelay = 0.2
	// HomeGongScale and SuccessGongScale stretch the gong envelope
	HomeGongScale    = 0.5
	SuccessGongScale = 1.0
)

// Drag Input
const (
	// DragSpeedGain maps scale units per millisecond to normalized speed
	DragSpeedGain = 4.0
	// DragSampleInterval is how often demos sample pointer position
	DragSampleInterval = 16 * time.Millisecond
	// SliderStepDistance is the travel between legacy slider hoof cues
	SliderStepDistance = 3.0
	// ScaleMin and ScaleMax bound the horse scale slider
	ScaleMin = 0.0
	ScaleMax = 100.0
)
