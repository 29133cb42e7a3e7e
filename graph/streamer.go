package graph

import (
	"github.com/gopxl/beep"
)

// Streamer adapts a graph render to beep, duplicating the mono signal to both channels
type Streamer struct {
	r    *Renderer
	mono []float64
}

// NewStreamer prepares g for streaming at the given rate
func NewStreamer(g *Graph, sr beep.SampleRate) (*Streamer, error) {
	r, err := NewRenderer(g, int(sr))
	if err != nil {
		return nil, err
	}
	return &Streamer{r: r}, nil
}

// Stream implements beep.Streamer
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if cap(s.mono) < len(samples) {
		s.mono = make([]float64, len(samples))
	}
	mono := s.mono[:len(samples)]
	n = s.r.Read(mono)
	for i := 0; i < n; i++ {
		samples[i][0] = mono[i]
		samples[i][1] = mono[i]
	}
	return n, n > 0
}

// Err implements beep.Streamer
func (s *Streamer) Err() error { return nil }

// Len returns the total frame count
func (s *Streamer) Len() int { return s.r.Len() }

// Position returns the frames already streamed
func (s *Streamer) Position() int { return s.r.Position() }
