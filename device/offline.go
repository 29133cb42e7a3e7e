package device

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/viterin/vek"

	"github.com/lixenwraith/gallop/graph"
)

// Offline renders graphs into memory instead of playing them
// Its clock is either driven by a caller-supplied function or set manually
type Offline struct {
	mu    sync.Mutex
	rate  int
	now   func() float64
	time  float64
	buf   []float64
	state State
}

// NewOffline creates an offline device; now may be nil for a manual clock
func NewOffline(sampleRate int, now func() float64) *Offline {
	return &Offline{rate: sampleRate, now: now, state: StateSuspended}
}

func (o *Offline) SampleRate() int { return o.rate }

func (o *Offline) CurrentTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.now != nil {
		return o.now()
	}
	return o.time
}

// SetTime moves the manual clock
func (o *Offline) SetTime(t float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.time = t
}

func (o *Offline) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Offline) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateClosed {
		return ErrClosed
	}
	o.state = StateRunning
	return nil
}

// Start renders g and mixes it into the buffer at its scheduled position
func (o *Offline) Start(g *graph.Graph) error {
	out, err := graph.Render(g, o.rate)
	if err != nil {
		return err
	}
	start, _ := g.Span()
	off := int(math.Round(start * float64(o.rate)))
	if off < 0 {
		return fmt.Errorf("%w: graph starts before time zero", graph.ErrBadTime)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateClosed {
		return ErrClosed
	}
	if need := off + len(out); need > len(o.buf) {
		o.buf = append(o.buf, make([]float64, need-len(o.buf))...)
	}
	if len(out) > 0 {
		vek.Add_Inplace(o.buf[off:off+len(out)], out)
	}
	return nil
}

func (o *Offline) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateClosed
	return nil
}

// Samples returns a copy of the mono mix
func (o *Offline) Samples() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]float64(nil), o.buf...)
}

// Duration is the length of the mix in seconds
func (o *Offline) Duration() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(len(o.buf)) / float64(o.rate)
}

// Streamer plays the current mix as stereo
func (o *Offline) Streamer() beep.Streamer {
	mono := o.Samples()
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(mono) {
			return 0, false
		}
		n := copy2(samples, mono[pos:])
		pos += n
		return n, true
	})
}

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// WriteWAV encodes the mix as 16-bit stereo WAV
func (o *Offline) WriteWAV(w io.WriteSeeker) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(o.rate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, o.Streamer(), format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
