package device

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/gallop/parameter"
)

// OtoOutput plays through an oto context with float32 samples
// oto supports one context per process; do not combine with SpeakerOutput
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewOtoOutput() *OtoOutput { return &OtoOutput{} }

func (o *OtoOutput) Name() string { return OutputOto }

func (o *OtoOutput) Start(s beep.Streamer, rate beep.SampleRate) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(rate),
		ChannelCount: parameter.AudioChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   parameter.AudioBufferDuration,
	})
	if err != nil {
		return fmt.Errorf("oto.NewContext failed: %w", err)
	}
	<-ready
	o.ctx = ctx
	o.player = ctx.NewPlayer(&streamReader{s: s})
	o.player.Play()
	return nil
}

func (o *OtoOutput) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	if serr := o.ctx.Suspend(); err == nil {
		err = serr
	}
	return err
}

// streamReader encodes a streamer as interleaved float32 little endian frames
type streamReader struct {
	s   beep.Streamer
	buf [][2]float64
}

func (r *streamReader) Read(p []byte) (int, error) {
	const frameSize = 8
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]
	n, ok := r.s.Stream(buf)
	if !ok {
		// Keep the player alive with silence
		n = 0
	}
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}
	for i, f := range buf {
		binary.LittleEndian.PutUint32(p[i*frameSize:], math.Float32bits(float32(f[0])))
		binary.LittleEndian.PutUint32(p[i*frameSize+4:], math.Float32bits(float32(f[1])))
	}
	return frames * frameSize, nil
}
