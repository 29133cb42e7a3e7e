package status

import (
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// Gauge is a float64 stored as its bit pattern; the zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Store(v float64) { g.bits.Store(math.Float64bits(v)) }

func (g *Gauge) Load() float64 { return math.Float64frombits(g.bits.Load()) }

// Add applies delta with a CAS loop and returns the result
func (g *Gauge) Add(delta float64) float64 {
	for {
		old := g.bits.Load()
		sum := math.Float64frombits(old) + delta
		if g.bits.CompareAndSwap(old, math.Float64bits(sum)) {
			return sum
		}
	}
}

// table hands out one stable *T per key
// Callers keep the pointer, so only registration takes the lock
type table[T any] struct {
	mu    sync.Mutex
	items map[string]*T
}

func (t *table[T]) get(key string) *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.items == nil {
		t.items = make(map[string]*T)
	}
	ptr, ok := t.items[key]
	if !ok {
		ptr = new(T)
		t.items[key] = ptr
	}
	return ptr
}

func (t *table[T]) find(key string) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ptr, ok := t.items[key]
	return ptr, ok
}

func (t *table[T]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// each visits entries in key order without holding the lock
func (t *table[T]) each(fn func(key string, ptr *T)) {
	t.mu.Lock()
	snap := maps.Clone(t.items)
	t.mu.Unlock()
	for _, k := range slices.Sorted(maps.Keys(snap)) {
		fn(k, snap[k])
	}
}
