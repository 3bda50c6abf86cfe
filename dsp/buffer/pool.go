package buffer

import "sync"

// Pool provides sync.Pool-based Buffer reuse to reduce GC pressure
// when the same chunk size is analyzed over and over.
type Pool[T Sample] struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool[T Sample]() *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return &Buffer[T]{}
			},
		},
	}
}

// Get returns a Buffer with the requested length. The buffer is zeroed.
// Callers must return it via Put when done.
func (p *Pool[T]) Get(length int) *Buffer[T] {
	b := p.pool.Get().(*Buffer[T])
	b.Resize(length)
	b.Zero()
	return b
}

// Put returns a Buffer to the pool for reuse.
// The caller must not use the buffer after calling Put.
func (p *Pool[T]) Put(b *Buffer[T]) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}

// Arena hands out several buffers from a pair of pools and releases them
// together. It is the scratch space of one analysis call or one worker.
// An Arena is not safe for concurrent use.
type Arena struct {
	realPool    *Pool[float64]
	complexPool *Pool[complex128]

	reals     []*Buffer[float64]
	complexes []*Buffer[complex128]
}

// NewArena returns an arena drawing from the given pools.
func NewArena(realPool *Pool[float64], complexPool *Pool[complex128]) *Arena {
	return &Arena{realPool: realPool, complexPool: complexPool}
}

// Real returns a zeroed float64 slice of length n owned by the arena.
func (a *Arena) Real(n int) []float64 {
	b := a.realPool.Get(n)
	a.reals = append(a.reals, b)
	return b.Samples()
}

// Complex returns a zeroed complex128 slice of length n owned by the arena.
func (a *Arena) Complex(n int) []complex128 {
	b := a.complexPool.Get(n)
	a.complexes = append(a.complexes, b)
	return b.Samples()
}

// Release returns every buffer handed out since the last Release.
// Slices obtained from the arena must not be used afterwards.
func (a *Arena) Release() {
	for i, b := range a.reals {
		a.realPool.Put(b)
		a.reals[i] = nil
	}
	for i, b := range a.complexes {
		a.complexPool.Put(b)
		a.complexes[i] = nil
	}
	a.reals = a.reals[:0]
	a.complexes = a.complexes[:0]
}

// Outstanding reports how many buffers are currently held by the arena.
func (a *Arena) Outstanding() int {
	return len(a.reals) + len(a.complexes)
}
