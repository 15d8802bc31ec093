package ministl

import (
	"sync"
	"weak"
)

// VectorPool recycles heap-backed vectors across request-scoped uses.
//
// Pooled vectors are held through weak pointers, so the GC may reclaim them
// at any time before the next Acquire; the pool sizes itself automatically to
// available memory and GC pressure. Per-key capacity statistics over the last
// 50 releases let Acquire pre-reserve a sensible capacity for a known use
// case. Only heap-backed vectors belong in a pool: a PoolAllocator is tied to
// the pointers it handed out and cannot be shared.
type VectorPool[T any] struct {
	pool  []weak.Pointer[Vector[T]]
	sizes map[uint64]*vectorPoolSize
	mu    sync.Mutex
}

// vectorPoolSize tracks the capacity needed across recent releases for one
// use case key.
type vectorPoolSize struct {
	count    int
	totalCap int
}

// NewVectorPool creates an empty VectorPool.
func NewVectorPool[T any]() *VectorPool[T] {
	return &VectorPool[T]{sizes: make(map[uint64]*vectorPoolSize)}
}

// Acquire returns a vector from the pool, or a fresh heap-backed one reserved
// to the average capacity previously observed for key.
func (p *VectorPool[T]) Acquire(key uint64) *Vector[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.pool) > 0 {
		last := len(p.pool) - 1
		wp := p.pool[last]
		p.pool = p.pool[:last]

		if v := wp.Value(); v != nil {
			return v
		}
		// Weak pointer was collected, try the next one.
	}

	v := New[T]()
	if hint := p.sizeHint(key); hint > 0 {
		_ = v.Reserve(hint)
	}
	return v
}

// Release clears v and returns it to the pool, recording its capacity so
// future Acquire calls for the same key reserve an appropriate size.
func (p *VectorPool[T]) Release(key uint64, v *Vector[T]) {
	c := v.Cap()
	v.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sizes[key]; ok {
		if s.count == 50 {
			s.count = 1
			s.totalCap = s.totalCap / 50
		}
		s.count++
		s.totalCap += c
	} else {
		p.sizes[key] = &vectorPoolSize{count: 1, totalCap: c}
	}

	p.pool = append(p.pool, weak.Make(v))
}

// sizeHint returns the average capacity recorded for key, or 0 when the key
// has not been seen.
func (p *VectorPool[T]) sizeHint(key uint64) int {
	if s, ok := p.sizes[key]; ok {
		return s.totalCap / s.count
	}
	return 0
}
