package buffer

// Sample is the element type a Buffer can hold.
type Sample interface {
	~float64 | ~complex128
}

// Buffer wraps a sample slice with reuse-friendly semantics.
// DSP functions accept raw slices; use Samples() to bridge.
type Buffer[T Sample] struct {
	samples []T
}

// New returns a zero-filled Buffer of the given length.
func New[T Sample](length int) *Buffer[T] {
	if length < 0 {
		length = 0
	}
	return &Buffer[T]{samples: make([]T, length)}
}

// Samples returns the underlying slice.
func (b *Buffer[T]) Samples() []T {
	return b.samples
}

// Resize sets the length to n, reusing existing capacity when possible.
// New elements beyond the previous length are zeroed.
func (b *Buffer[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]T, n)
		copy(s, b.samples)
		b.samples = s
	}
	// The backing array may hold stale data from a previous chunk.
	if n > oldLen {
		clear(b.samples[oldLen:n])
	}
}

// Zero sets all samples to 0.
func (b *Buffer[T]) Zero() {
	clear(b.samples)
}
