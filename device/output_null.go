package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/gallop/core"
	"github.com/lixenwraith/gallop/parameter"
)

// NullOutput consumes the stream in real time and discards it
// The device clock keeps advancing, so scheduling behaves as with a real backend
type NullOutput struct {
	stopChan chan struct{}
	stopped  atomic.Bool
	wg       sync.WaitGroup
}

func NewNullOutput() *NullOutput {
	return &NullOutput{stopChan: make(chan struct{})}
}

func (o *NullOutput) Name() string { return OutputNull }

func (o *NullOutput) Start(s beep.Streamer, rate beep.SampleRate) error {
	o.wg.Add(1)
	core.Go(func() {
		defer o.wg.Done()
		ticker := time.NewTicker(parameter.AudioBufferDuration)
		defer ticker.Stop()
		samples := make([][2]float64, rate.N(parameter.AudioBufferDuration))
		for {
			select {
			case <-o.stopChan:
				return
			case <-ticker.C:
				s.Stream(samples)
			}
		}
	})
	return nil
}

func (o *NullOutput) Close() error {
	if o.stopped.CompareAndSwap(false, true) {
		close(o.stopChan)
		o.wg.Wait()
	}
	return nil
}
