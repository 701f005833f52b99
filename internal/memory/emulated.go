package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// EmulatedDevice keeps device memory in a private host arena. Tensors cannot
// address it directly, so it behaves like real device memory for everything
// that goes through Buffer. It is used where no GPU runtime is available.
type EmulatedDevice struct {
	id     int
	pool   *Pool[[]byte]
	closed atomic.Bool

	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
	peakBytes atomic.Int64
}

var _ Device = (*EmulatedDevice)(nil)

// NewEmulatedDevice creates an emulated device with the given id and pool capacity.
func NewEmulatedDevice(id, poolCapacity int) *EmulatedDevice {
	return &EmulatedDevice{
		id: id,
		pool: NewPool(poolCapacity,
			func(size int) ([]byte, error) { return make([]byte, size), nil },
			func([]byte) {}),
	}
}

// ID implements Device.
func (d *EmulatedDevice) ID() int { return d.id }

// Name implements Device.
func (d *EmulatedDevice) Name() string { return fmt.Sprintf("emulated:%d", d.id) }

// Alloc implements Device.
func (d *EmulatedDevice) Alloc(size int) (Buffer, error) {
	if d.closed.Load() {
		return nil, errors.Errorf("memory: %s is closed", d.Name())
	}
	if size <= 0 {
		return nil, errors.Errorf("memory: device allocation size must be positive, got %d", size)
	}
	raw, capacity, err := d.pool.Acquire(size)
	if err != nil {
		return nil, errors.Wrapf(err, "memory: %s alloc %d bytes", d.Name(), size)
	}
	d.allocs.Add(1)
	live := d.liveBytes.Add(int64(size))
	for {
		peak := d.peakBytes.Load()
		if live <= peak || d.peakBytes.CompareAndSwap(peak, live) {
			break
		}
	}
	klog.V(3).Infof("memory: %s alloc %s", d.Name(), humanize.IBytes(uint64(size)))
	return &emulatedBuffer{device: d, raw: raw[:capacity], size: size}, nil
}

// Free implements Device.
func (d *EmulatedDevice) Free(buf Buffer) error {
	eb, ok := buf.(*emulatedBuffer)
	if !ok || eb.device != d {
		return errors.Errorf("memory: %s cannot free a buffer from another device", d.Name())
	}
	if eb.raw == nil {
		return errors.Errorf("memory: %s double free", d.Name())
	}
	d.pool.Release(eb.raw, cap(eb.raw))
	eb.raw = nil
	d.frees.Add(1)
	d.liveBytes.Add(-int64(eb.size))
	klog.V(3).Infof("memory: %s free %s", d.Name(), humanize.IBytes(uint64(eb.size)))
	return nil
}

// Stats implements Device.
func (d *EmulatedDevice) Stats() Stats {
	return Stats{
		Allocs:    d.allocs.Load(),
		Frees:     d.frees.Load(),
		LiveBytes: d.liveBytes.Load(),
		PeakBytes: d.peakBytes.Load(),
	}
}

// PoolStats returns the statistics of the device buffer pool.
func (d *EmulatedDevice) PoolStats() PoolStats {
	return d.pool.Stats()
}

// Close implements Device.
func (d *EmulatedDevice) Close() error {
	d.closed.Store(true)
	d.pool.Clear()
	return nil
}

type emulatedBuffer struct {
	device *EmulatedDevice
	raw    []byte
	size   int
}

func (b *emulatedBuffer) DeviceID() int { return b.device.id }

func (b *emulatedBuffer) Size() int { return b.size }

func (b *emulatedBuffer) live() error {
	if b.raw == nil {
		return errors.Errorf("memory: %s buffer used after free", b.device.Name())
	}
	return nil
}

func (b *emulatedBuffer) Write(offset int, src []byte) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := checkRange(offset, len(src), b.size); err != nil {
		return err
	}
	copy(b.raw[offset:], src)
	return nil
}

func (b *emulatedBuffer) Read(offset int, dst []byte) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := checkRange(offset, len(dst), b.size); err != nil {
		return err
	}
	copy(dst, b.raw[offset:offset+len(dst)])
	return nil
}

func (b *emulatedBuffer) Clear(offset, size int) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := checkRange(offset, size, b.size); err != nil {
		return err
	}
	clear(b.raw[offset : offset+size])
	return nil
}
