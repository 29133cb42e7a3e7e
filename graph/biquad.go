package graph

import (
	"math"

	"github.com/lixenwraith/gallop/core"
)

// biquad is a direct form I second-order section with RBJ cookbook coefficients
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64

	kind     core.FilterKind
	freq, q  float64
	rate     float64
	prepared bool
}

// tune recomputes coefficients only when an input changed
func (bq *biquad) tune(kind core.FilterKind, freq, q, rate float64) {
	if bq.prepared && kind == bq.kind && freq == bq.freq && q == bq.q && rate == bq.rate {
		return
	}
	bq.kind, bq.freq, bq.q, bq.rate = kind, freq, q, rate
	bq.prepared = true

	nyquist := rate / 2
	f := math.Min(math.Max(freq, 1), nyquist*0.99)
	if q < 1e-4 {
		q = 1e-4
	}

	w0 := 2 * math.Pi * f / rate
	cosw, sinw := math.Cos(w0), math.Sin(w0)
	alpha := sinw / (2 * q)

	var b0, b1, b2 float64
	switch kind {
	case core.FilterHighpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case core.FilterBandpass:
		// Constant 0 dB peak gain
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	a0 := 1 + alpha
	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = -2 * cosw / a0
	bq.a2 = (1 - alpha) / a0
}

func (bq *biquad) process(x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1 + bq.b2*bq.x2 - bq.a1*bq.y1 - bq.a2*bq.y2
	// Flush denormals on decaying tails
	if math.Abs(y) < 1e-20 {
		y = 0
	}
	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y
	return y
}
