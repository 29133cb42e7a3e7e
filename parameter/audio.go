package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes

	// AudioMinSampleRate and AudioMaxSampleRate bound env/flag overrides
	AudioMinSampleRate = 8000
	AudioMaxSampleRate = 192000
)

// Output Timing
const (
	// AudioBufferDuration is the output chunk size for the speaker and pipe outputs
	AudioBufferDuration = 50 * time.Millisecond

	// AudioDrainTail is the wait after the last cue before a one-shot CLI exits
	AudioDrainTail = 300 * time.Millisecond

	// CueMaxDuration is the longest one-shot cue, the success gong
	CueMaxDuration = 3500 * time.Millisecond
)

// Noise Buffer
const (
	// NoiseBufferSeconds is the length of the shared brown noise buffer
	NoiseBufferSeconds = 2.0
	// NoiseLeak is the integrator coefficient: out = (prev + NoiseLeak*white) / (1 + NoiseLeak)
	NoiseLeak = 0.02
	// NoiseGain restores level lost to the leaky integrator
	NoiseGain = 3.5
)

// Biquad Defaults
const (
	// FilterDefaultQ matches the browser default for a bare filter node
	FilterDefaultQ = 1.0
	// FilterMaxFrequency stands in for an open filter
	FilterMaxFrequency = 20000.0
)

// Rendering
const (
	// SilenceFloor is the target of exponential fades; exponential ramps cannot reach zero
	SilenceFloor = 0.001
	// MeterFloorDB is reported for digital silence
	MeterFloorDB = -120.0
)
