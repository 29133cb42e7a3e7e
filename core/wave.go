package core

import "fmt"

// Waveform is an oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSawtooth
)

var waveNames = [...]string{"sine", "triangle", "square", "sawtooth"}

func (w Waveform) String() string {
	if w >= 0 && int(w) < len(waveNames) {
		return waveNames[w]
	}
	return "unknown"
}

func (w Waveform) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Waveform) UnmarshalText(b []byte) error {
	for i, name := range waveNames {
		if name == string(b) {
			*w = Waveform(i)
			return nil
		}
	}
	return fmt.Errorf("%w: waveform %q", ErrUnknownName, string(b))
}

// FilterKind is a biquad response type
// FilterNone means the signal path has no filter stage
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLowpass
	FilterHighpass
	FilterBandpass
)

var filterNames = [...]string{"none", "lowpass", "highpass", "bandpass"}

func (f FilterKind) String() string {
	if f >= 0 && int(f) < len(filterNames) {
		return filterNames[f]
	}
	return "unknown"
}

func (f FilterKind) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FilterKind) UnmarshalText(b []byte) error {
	for i, name := range filterNames {
		if name == string(b) {
			*f = FilterKind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: filter %q", ErrUnknownName, string(b))
}
