// Package ring implements a fixed-capacity sample window used for telemetry
// smoothing. Capacity is set at construction and never changes; once full,
// new samples overwrite the oldest.
package ring

type Buffer struct {
	samples []float64
	next    int
	count   int
}

func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}

	return &Buffer{
		samples: make([]float64, capacity),
	}
}

// Push appends a sample, evicting the oldest when full.
func (b *Buffer) Push(v float64) {
	b.samples[b.next] = v
	b.next = (b.next + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
}

// Mean returns the unweighted average of the stored samples,
// or 0 when empty.
func (b *Buffer) Mean() float64 {
	if b.count == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < b.count; i++ {
		sum += b.samples[i]
	}

	return sum / float64(b.count)
}

// Len returns the number of samples currently stored.
func (b *Buffer) Len() int {
	return b.count
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.samples)
}

// Reset discards all samples without changing capacity.
func (b *Buffer) Reset() {
	b.next = 0
	b.count = 0
}
