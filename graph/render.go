package graph

import "math"

// renderCtx is the clock shared by one pull through the graph
type renderCtx struct {
	frame int64
	t     float64
	rate  float64
}

// eval returns a node's output for the current frame, computing it at most once
// A node reached again while computing (a feedback loop) yields its previous sample
func eval(n Node, rc *renderCtx) float64 {
	b := n.base()
	if b.frame == rc.frame {
		return b.value
	}
	if b.busy {
		return b.value
	}
	b.busy = true
	v := n.compute(rc)
	b.busy = false
	b.frame = rc.frame
	b.value = v
	return v
}

// Renderer pulls mono samples from a graph across its playback window
type Renderer struct {
	g     *Graph
	rc    renderCtx
	start float64
	total int64
}

// NewRenderer validates g and prepares it for rendering from the start of its window
// A graph is rendered by at most one Renderer at a time
func NewRenderer(g *Graph, sampleRate int) (*Renderer, error) {
	if err := g.Err(); err != nil {
		return nil, err
	}
	for _, n := range g.nodes {
		n.reset()
		b := n.base()
		b.frame = -1
		b.value = 0
		b.busy = false
	}
	start, end := g.Span()
	rate := float64(sampleRate)
	return &Renderer{
		g:     g,
		rc:    renderCtx{frame: 0, rate: rate},
		start: start,
		total: int64(math.Ceil((end-start)*rate - 1e-6)),
	}, nil
}

// Start is the device time of the first rendered frame
func (r *Renderer) Start() float64 { return r.start }

// Len is the total number of frames in the window
func (r *Renderer) Len() int { return int(r.total) }

// Position is the number of frames already rendered
func (r *Renderer) Position() int { return int(r.rc.frame) }

// Read renders up to len(dst) frames and returns how many were written
func (r *Renderer) Read(dst []float64) int {
	n := 0
	for n < len(dst) && r.rc.frame < r.total {
		r.rc.t = r.start + float64(r.rc.frame)/r.rc.rate
		dst[n] = r.g.dest.sum(&r.rc)
		r.rc.frame++
		n++
	}
	return n
}

// Render validates g and returns its full mono output
func Render(g *Graph, sampleRate int) ([]float64, error) {
	r, err := NewRenderer(g, sampleRate)
	if err != nil {
		return nil, err
	}
	out := make([]float64, r.Len())
	r.Read(out)
	return out, nil
}
