package memory

import "sync"

// SizeClass is a buffer size category for pooling.
type SizeClass int

const (
	// SmallBuffer for buffers < 4KB.
	SmallBuffer SizeClass = iota
	// MediumBuffer for buffers 4KB-1MB.
	MediumBuffer
	// LargeBuffer for buffers > 1MB.
	LargeBuffer
)

const (
	// Size thresholds for buffer categories.
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
)

// classify determines the size category for a buffer.
func classify(size int) SizeClass {
	if size < smallThreshold {
		return SmallBuffer
	}
	if size < mediumThreshold {
		return MediumBuffer
	}
	return LargeBuffer
}

// pooled wraps a raw device allocation with its capacity.
type pooled[B any] struct {
	raw      B
	capacity int
}

// Pool manages reuse of raw device allocations to reduce allocation overhead.
// Released allocations are kept per size category, up to capacity per category.
type Pool[B any] struct {
	create  func(size int) (B, error)
	destroy func(B)

	classes  [3][]pooled[B]
	capacity int

	mu sync.Mutex

	// Statistics
	created   uint64
	destroyed uint64
	hits      uint64
	misses    uint64
}

// PoolStats are the pool counters.
type PoolStats struct {
	Created   uint64
	Destroyed uint64
	Hits      uint64
	Misses    uint64
	Pooled    int
}

// NewPool creates a pool that calls create on a miss and destroy when a
// released allocation does not fit in the pool.
func NewPool[B any](capacity int, create func(size int) (B, error), destroy func(B)) *Pool[B] {
	return &Pool[B]{
		create:   create,
		destroy:  destroy,
		capacity: capacity,
	}
}

// Acquire returns a pooled allocation of at least size bytes, or creates one.
// The returned capacity is the real size of the allocation.
func (p *Pool[B]) Acquire(size int) (raw B, capacity int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	for i, pb := range p.classes[class] {
		if pb.capacity >= size {
			p.classes[class] = append(p.classes[class][:i], p.classes[class][i+1:]...)
			p.hits++
			return pb.raw, pb.capacity, nil
		}
	}

	p.misses++
	raw, err = p.create(size)
	if err != nil {
		return raw, 0, err
	}
	p.created++
	return raw, size, nil
}

// Release returns an allocation to the pool. If the category is full the
// allocation is destroyed immediately.
func (p *Pool[B]) Release(raw B, capacity int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(capacity)
	if len(p.classes[class]) >= p.capacity {
		p.destroyed++
		p.destroy(raw)
		return
	}
	p.classes[class] = append(p.classes[class], pooled[B]{raw: raw, capacity: capacity})
}

// Clear destroys all pooled allocations.
func (p *Pool[B]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for class := range p.classes {
		for _, pb := range p.classes[class] {
			p.destroyed++
			p.destroy(pb.raw)
		}
		p.classes[class] = p.classes[class][:0]
	}
}

// Stats returns statistics about pool usage.
func (p *Pool[B]) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Created:   p.created,
		Destroyed: p.destroyed,
		Hits:      p.hits,
		Misses:    p.misses,
		Pooled:    len(p.classes[SmallBuffer]) + len(p.classes[MediumBuffer]) + len(p.classes[LargeBuffer]),
	}
}
