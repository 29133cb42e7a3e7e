package device

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/gallop/parameter"
)

// SpeakerOutput plays through beep's speaker package
// The speaker is process-global, so only one SpeakerOutput may be started
type SpeakerOutput struct{}

func NewSpeakerOutput() *SpeakerOutput { return &SpeakerOutput{} }

func (o *SpeakerOutput) Name() string { return OutputSpeaker }

func (o *SpeakerOutput) Start(s beep.Streamer, rate beep.SampleRate) error {
	if err := speaker.Init(rate, rate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(s)
	return nil
}

func (o *SpeakerOutput) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
