// Package bufferpool provides a pre-sized pool of reusable []float32
// scratch buffers for recursive track/group rendering, so the mixing
// pass never allocates in steady state.
package bufferpool

import "sync/atomic"

// Pool hands out fixed-size []float32 buffers. Acquire/Release are called
// from the audio thread only; it is not safe to share a Pool across
// concurrent renders.
type Pool struct {
	buffers    [][]float32
	available  []int
	bufferSize int

	allocations atomic.Uint64
	peakUsage   atomic.Uint64
}

// New pre-allocates initialCapacity buffers of bufferSize samples each.
func New(initialCapacity, bufferSize int) *Pool {
	p := &Pool{
		buffers:    make([][]float32, 0, initialCapacity),
		available:  make([]int, 0, initialCapacity),
		bufferSize: bufferSize,
	}
	for i := 0; i < initialCapacity; i++ {
		p.buffers = append(p.buffers, make([]float32, bufferSize))
		p.available = append(p.available, i)
	}
	return p
}

// Acquire returns a zeroed buffer. If the pool is exhausted it allocates a
// fresh one and bumps the allocation counter; this should never happen
// during steady-state playback if the pool was sized correctly.
func (p *Pool) Acquire() []float32 {
	inUse := uint64(len(p.buffers)-len(p.available)) + 1
	if inUse > p.peakUsage.Load() {
		p.peakUsage.Store(inUse)
	}

	n := len(p.available)
	if n == 0 {
		p.allocations.Add(1)
		return make([]float32, p.bufferSize)
	}
	idx := p.available[n-1]
	p.available = p.available[:n-1]
	buf := p.buffers[idx]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Release returns a buffer to the pool. Buffers of the wrong size are
// dropped rather than pooled, since that indicates a caller bug, not a
// condition the pool should silently mask.
func (p *Pool) Release(buf []float32) {
	if len(buf) != p.bufferSize {
		return
	}
	if len(buf) > 0 {
		for i, b := range p.buffers {
			if &b[0] == &buf[0] {
				p.available = append(p.available, i)
				return
			}
		}
	}
	idx := len(p.buffers)
	p.buffers = append(p.buffers, buf)
	p.available = append(p.available, idx)
}

// BufferSize returns the configured per-buffer sample count.
func (p *Pool) BufferSize() int { return p.bufferSize }

// Stats is a snapshot of pool utilisation, surfaced as realtime warnings
// on the next controller drain when Allocations is nonzero.
type Stats struct {
	TotalBuffers     int
	AvailableBuffers int
	InUseBuffers     int
	PeakUsage        uint64
	Allocations      uint64
}

// Stats returns a point-in-time snapshot of pool usage.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalBuffers:     len(p.buffers),
		AvailableBuffers: len(p.available),
		InUseBuffers:     len(p.buffers) - len(p.available),
		PeakUsage:        p.peakUsage.Load(),
		Allocations:      p.allocations.Load(),
	}
}

// ResetStats zeroes the allocation and peak-usage counters, useful after a
// warmup period.
func (p *Pool) ResetStats() {
	p.allocations.Store(0)
	p.peakUsage.Store(0)
}
