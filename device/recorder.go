package device

import (
	"sync"

	"github.com/lixenwraith/gallop/graph"
)

// Recorded is one graph accepted by a Recorder
type Recorded struct {
	// At is the device time when Start was called
	At    float64
	Graph *graph.Graph
}

// Recorder accepts graphs without playing them
type Recorder struct {
	mu      sync.Mutex
	rate    int
	now     func() float64
	state   State
	entries []Recorded
	fail    error
	resumes int
}

// NewRecorder creates a recorder; now may be nil for a clock fixed at zero
func NewRecorder(sampleRate int, now func() float64) *Recorder {
	if now == nil {
		now = func() float64 { return 0 }
	}
	return &Recorder{rate: sampleRate, now: now}
}

func (r *Recorder) SampleRate() int      { return r.rate }
func (r *Recorder) CurrentTime() float64 { return r.now() }

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateClosed {
		return ErrClosed
	}
	r.resumes++
	r.state = StateRunning
	return nil
}

func (r *Recorder) Start(g *graph.Graph) error {
	if err := g.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateClosed {
		return ErrClosed
	}
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, Recorded{At: r.now(), Graph: g})
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateClosed
	return nil
}

// FailWith makes every later Start return err; nil restores normal operation
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.entries...)
}

// Len returns the number of recorded graphs
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Resumes returns how many times Resume was called
func (r *Recorder) Resumes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resumes
}

// Reset drops recorded graphs
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
