// Package memory implements the allocator backends behind tensor storage:
// an aligned host allocator and device allocators keyed by device id.
package memory

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// HostAlignment is the byte alignment of every host allocation.
const HostAlignment = 16

// Stats is a snapshot of allocator counters.
type Stats struct {
	Allocs    uint64
	Frees     uint64
	LiveBytes int64
	PeakBytes int64
}

// Host is an aligned host memory allocator. Memory is owned by the Go heap;
// Free drops the allocator's accounting so that leaks and double frees show up
// in Stats and in precondition failures.
type Host struct {
	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
	peakBytes atomic.Int64

	mu   sync.Mutex
	live map[uintptr]int // start address -> requested size
}

// NewHost creates an empty host allocator.
func NewHost() *Host {
	return &Host{live: make(map[uintptr]int)}
}

var (
	defaultHost     *Host
	defaultHostOnce sync.Once
)

// DefaultHost returns the process-wide host allocator.
func DefaultHost() *Host {
	defaultHostOnce.Do(func() { defaultHost = NewHost() })
	return defaultHost
}

// Alloc returns size zeroed bytes whose first byte is HostAlignment aligned.
func (h *Host) Alloc(size int) []byte {
	if size <= 0 {
		exceptions.Panicf("memory: host allocation size must be positive, got %d", size)
	}
	raw := make([]byte, size+HostAlignment)
	//nolint:gosec // address arithmetic only, the slice keeps the block alive
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int((HostAlignment - base%HostAlignment) % HostAlignment)
	buf := raw[pad : pad+size : pad+size]

	h.mu.Lock()
	h.live[base+uintptr(pad)] = size
	h.mu.Unlock()

	h.allocs.Add(1)
	live := h.liveBytes.Add(int64(size))
	for {
		peak := h.peakBytes.Load()
		if live <= peak || h.peakBytes.CompareAndSwap(peak, live) {
			break
		}
	}
	if klog.V(3).Enabled() {
		klog.Infof("memory: host alloc %s", humanize.IBytes(uint64(size)))
	}
	return buf
}

// Free returns buf, which must be a slice previously returned by Alloc on h
// and not yet freed.
func (h *Host) Free(buf []byte) {
	if cap(buf) == 0 {
		exceptions.Panicf("memory: host free of an empty buffer")
	}
	//nolint:gosec // identity only
	key := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	h.mu.Lock()
	size, ok := h.live[key]
	if ok {
		delete(h.live, key)
	}
	h.mu.Unlock()
	if !ok {
		exceptions.Panicf("memory: host free of %d bytes not allocated by this allocator (or already freed)", len(buf))
	}
	h.frees.Add(1)
	h.liveBytes.Add(-int64(size))
	if klog.V(3).Enabled() {
		klog.Infof("memory: host free %s", humanize.IBytes(uint64(size)))
	}
}

// Stats returns the allocator counters.
func (h *Host) Stats() Stats {
	return Stats{
		Allocs:    h.allocs.Load(),
		Frees:     h.frees.Load(),
		LiveBytes: h.liveBytes.Load(),
		PeakBytes: h.peakBytes.Load(),
	}
}
