package device

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/parameter"
)

// PipeOutput feeds s16le stereo PCM to an external player process,
// or straight into the OSS device node
type PipeOutput struct {
	backend *BackendConfig
	sink    io.WriteCloser
	proc    *exec.Cmd

	cancel    context.CancelFunc
	done      chan struct{}
	failure   atomic.Pointer[error]
	closeOnce sync.Once
	closeErr  error
}

func NewPipeOutput() *PipeOutput { return &PipeOutput{} }

func (o *PipeOutput) Name() string {
	if o.backend == nil {
		return OutputPipe
	}
	return OutputPipe + ":" + o.backend.Name
}

func (o *PipeOutput) Start(s beep.Streamer, rate beep.SampleRate) error {
	backend, err := DetectBackend(int(rate))
	if err != nil {
		return err
	}
	sink, proc, err := openSink(backend)
	if err != nil {
		return err
	}
	o.backend, o.sink, o.proc = backend, sink, proc

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.done = make(chan struct{})
	core.Go(func() {
		defer close(o.done)
		o.pump(ctx, s, rate)
	})
	return nil
}

func openSink(b *BackendConfig) (io.WriteCloser, *exec.Cmd, error) {
	if b.Type == BackendOSS {
		f, err := os.OpenFile(b.Path, os.O_WRONLY, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", b.Path, err)
		}
		return f, nil, nil
	}
	cmd := exec.Command(b.Path, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%s stdin: %w", b.Name, err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, nil, fmt.Errorf("start %s: %w", b.Name, err)
	}
	return stdin, cmd, nil
}

// Err returns the write failure that stopped the pump, if any
func (o *PipeOutput) Err() error {
	if p := o.failure.Load(); p != nil {
		return *p
	}
	return nil
}

// pump writes one buffer of the stream per tick until cancelled or the pipe breaks
func (o *PipeOutput) pump(ctx context.Context, s beep.Streamer, rate beep.SampleRate) {
	frames := rate.N(parameter.AudioBufferDuration)
	buf := make([][2]float64, frames)
	pcm := make([]byte, frames*parameter.AudioBytesPerFrame)

	ticker := time.NewTicker(parameter.AudioBufferDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, _ := s.Stream(buf)
		clear(buf[n:])
		floatToBytes(buf, pcm)
		if _, err := o.sink.Write(pcm); err != nil {
			err = fmt.Errorf("%w: %v", ErrPipeClosed, err)
			o.failure.Store(&err)
			return
		}
	}
}

func (o *PipeOutput) Close() error {
	o.closeOnce.Do(func() {
		if o.cancel == nil {
			return
		}
		o.cancel()
		<-o.done
		o.closeErr = o.sink.Close()
		if o.proc != nil && o.proc.Process != nil {
			o.proc.Process.Kill()
			o.proc.Wait()
		}
	})
	return o.closeErr
}

// softClip passes |v| <= 0.8 unchanged and bends the rest toward full scale
func softClip(v float64) float64 {
	const knee = 0.8
	a := math.Abs(v)
	if a > knee {
		a = knee + (1-knee)*(1-1/(1+(a-knee)*5))
	}
	return math.Copysign(math.Min(a, 1), v)
}

// floatToBytes writes interleaved int16 little endian frames
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(int16(softClip(frame[0])*32767)))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(int16(softClip(frame[1])*32767)))
	}
}
