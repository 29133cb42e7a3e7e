package synth

// Mulberry32 is a small seeded PRNG; the same seed always yields the same noise
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a generator from seed
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Float returns the next value in [0, 1)
func (r *Mulberry32) Float() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// White returns the next value in [-1, 1)
func (r *Mulberry32) White() float64 {
	return r.Float()*2 - 1
}
