package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gopxl/beep"
)

// Output pulls a stereo stream and plays it
type Output interface {
	Name() string
	Start(s beep.Streamer, rate beep.SampleRate) error
	Close() error
}

// Output names accepted by NewOutput
const (
	OutputAuto    = "auto"
	OutputSpeaker = "speaker"
	OutputOto     = "oto"
	OutputPipe    = "pipe"
	OutputNull    = "null"
)

// OutputNames lists the selectable backends
func OutputNames() []string {
	return []string{OutputAuto, OutputSpeaker, OutputOto, OutputPipe, OutputNull}
}

// NewOutput returns the named backend
func NewOutput(name string) (Output, error) {
	switch strings.ToLower(name) {
	case "", OutputAuto:
		return NewAutoOutput(NewSpeakerOutput(), NewPipeOutput(), NewNullOutput()), nil
	case OutputSpeaker:
		return NewSpeakerOutput(), nil
	case OutputOto:
		return NewOtoOutput(), nil
	case OutputPipe:
		return NewPipeOutput(), nil
	case OutputNull:
		return NewNullOutput(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
}

// AutoOutput starts the first candidate that succeeds
type AutoOutput struct {
	candidates []Output
	active     Output
}

// NewAutoOutput tries candidates in order
func NewAutoOutput(candidates ...Output) *AutoOutput {
	return &AutoOutput{candidates: candidates}
}

func (a *AutoOutput) Name() string {
	if a.active != nil {
		return a.active.Name()
	}
	return OutputAuto
}

func (a *AutoOutput) Start(s beep.Streamer, rate beep.SampleRate) error {
	var errs []error
	for _, c := range a.candidates {
		if err := c.Start(s, rate); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		a.active = c
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNoAudioBackend, errors.Join(errs...))
}

func (a *AutoOutput) Close() error {
	if a.active == nil {
		return nil
	}
	return a.active.Close()
}
