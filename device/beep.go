package device

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/gallop/graph"
)

// BeepDevice mixes graphs with a beep.Mixer and counts streamed frames as its clock
// It starts suspended; the output is opened on the first Resume
type BeepDevice struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	out    Output
	state  State
	frames atomic.Int64
	graphs atomic.Int64
}

// NewBeepDevice creates a device that will stream into out at sampleRate
func NewBeepDevice(out Output, sampleRate int) *BeepDevice {
	return &BeepDevice{
		rate:  beep.SampleRate(sampleRate),
		mixer: &beep.Mixer{},
		out:   out,
	}
}

// NewBeepFactory returns a Factory building a BeepDevice over the named output
func NewBeepFactory(output string, sampleRate int) Factory {
	return func() (Device, error) {
		out, err := NewOutput(output)
		if err != nil {
			return nil, err
		}
		return NewBeepDevice(out, sampleRate), nil
	}
}

func (d *BeepDevice) SampleRate() int { return int(d.rate) }

func (d *BeepDevice) CurrentTime() float64 {
	return float64(d.frames.Load()) / float64(d.rate)
}

func (d *BeepDevice) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Output returns the backend name
func (d *BeepDevice) Output() string { return d.out.Name() }

// Scheduled returns the number of graphs accepted so far
func (d *BeepDevice) Scheduled() int64 { return d.graphs.Load() }

func (d *BeepDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateClosed:
		return ErrClosed
	case StateRunning:
		return nil
	}
	if err := d.out.Start(beep.StreamerFunc(d.stream), d.rate); err != nil {
		return fmt.Errorf("start %s output: %w", d.out.Name(), err)
	}
	d.state = StateRunning
	return nil
}

// Start queues g behind enough silence to begin at its scheduled time
// Graphs scheduled in the past start immediately
func (d *BeepDevice) Start(g *graph.Graph) error {
	s, err := graph.NewStreamer(g, d.rate)
	if err != nil {
		return err
	}
	start, _ := g.Span()
	delay := int(math.Round((start - d.CurrentTime()) * float64(d.rate)))

	var st beep.Streamer = s
	if delay > 0 {
		st = beep.Seq(beep.Silence(delay), s)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateClosed {
		return ErrClosed
	}
	d.mixer.Add(st)
	d.graphs.Add(1)
	return nil
}

// stream is pulled by the output; it always fills the whole buffer so the clock advances in real time
func (d *BeepDevice) stream(samples [][2]float64) (int, bool) {
	d.mu.Lock()
	n, _ := d.mixer.Stream(samples)
	d.mu.Unlock()
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	d.frames.Add(int64(len(samples)))
	return len(samples), true
}

func (d *BeepDevice) Close() error {
	d.mu.Lock()
	if d.state == StateClosed {
		d.mu.Unlock()
		return nil
	}
	wasRunning := d.state == StateRunning
	d.state = StateClosed
	d.mixer.Clear()
	d.mu.Unlock()

	if wasRunning {
		return d.out.Close()
	}
	return nil
}
