//go:build windows

package memory

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Storage buffers used for tensors: copyable both ways so that Read, Write and
// Clear can go through staging buffers.
const tensorBufferUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// WebGPUDevice allocates tensor storage as WebGPU storage buffers.
type WebGPUDevice struct {
	id       int
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     *wgpu.AdapterInfo

	pool *Pool[*wgpu.Buffer]
	mu   sync.Mutex // serializes queue submissions

	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
	peakBytes atomic.Int64
}

var _ Device = (*WebGPUDevice)(nil)

// NewWebGPUDevice opens the default high performance adapter.
// Returns an error if WebGPU is not available or initialization fails.
func NewWebGPUDevice(id, poolCapacity int) (dev *WebGPUDevice, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = errors.Errorf("memory: webgpu native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(err, "memory: webgpu request adapter")
	}
	adapterInfo := adapter.GetInfo()

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "memory: webgpu request device")
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.New("memory: webgpu failed to get queue")
	}

	d := &WebGPUDevice{
		id:       id,
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		info:     &adapterInfo,
	}
	d.pool = NewPool(poolCapacity, d.createBuffer, func(b *wgpu.Buffer) { b.Release() })
	return d, nil
}

// ID implements Device.
func (d *WebGPUDevice) ID() int { return d.id }

// Name implements Device.
func (d *WebGPUDevice) Name() string {
	if d.info != nil {
		return fmt.Sprintf("webgpu:%d (%s %s)", d.id, d.info.Name, d.info.VendorName)
	}
	return fmt.Sprintf("webgpu:%d", d.id)
}

func (d *WebGPUDevice) createBuffer(size int) (*wgpu.Buffer, error) {
	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: tensorBufferUsage,
		Size:  uint64(alignUp(size)),
	})
	if buf == nil {
		return nil, errors.Errorf("memory: %s failed to create buffer of %d bytes", d.Name(), size)
	}
	return buf, nil
}

// Alloc implements Device.
func (d *WebGPUDevice) Alloc(size int) (Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("memory: device allocation size must be positive, got %d", size)
	}
	raw, capacity, err := d.pool.Acquire(alignUp(size))
	if err != nil {
		return nil, err
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
	return &webgpuBuffer{device: d, raw: raw, size: size, capacity: capacity}, nil
}

// Free implements Device.
func (d *WebGPUDevice) Free(buf Buffer) error {
	wb, ok := buf.(*webgpuBuffer)
	if !ok || wb.device != d {
		return errors.Errorf("memory: %s cannot free a buffer from another device", d.Name())
	}
	if wb.raw == nil {
		return errors.Errorf("memory: %s double free", d.Name())
	}
	d.pool.Release(wb.raw, wb.capacity)
	wb.raw = nil
	d.frees.Add(1)
	d.liveBytes.Add(-int64(wb.size))
	klog.V(3).Infof("memory: %s free %s", d.Name(), humanize.IBytes(uint64(wb.size)))
	return nil
}

// Stats implements Device.
func (d *WebGPUDevice) Stats() Stats {
	return Stats{
		Allocs:    d.allocs.Load(),
		Frees:     d.frees.Load(),
		LiveBytes: d.liveBytes.Load(),
		PeakBytes: d.peakBytes.Load(),
	}
}

// Close releases pooled buffers and all WebGPU objects.
func (d *WebGPUDevice) Close() error {
	d.pool.Clear()
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	return nil
}

// upload copies data into dst at offset through a mapped staging buffer.
func (d *WebGPUDevice) upload(dst *wgpu.Buffer, offset int, data []byte) {
	size := uint64(len(data))
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mapped := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mapped), size), data)
	staging.Unmap()

	d.mu.Lock()
	defer d.mu.Unlock()
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, dst, uint64(offset), size)
	d.queue.Submit(encoder.Finish(nil))
}

// download reads len(dst) bytes at offset from src through a staging buffer.
func (d *WebGPUDevice) download(src *wgpu.Buffer, offset int, dst []byte) error {
	size := uint64(len(dst))
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	d.mu.Lock()
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, uint64(offset), staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))
	d.mu.Unlock()

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		return errors.Wrap(err, "memory: webgpu map staging buffer")
	}
	mapped := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(dst, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()
	return nil
}

type webgpuBuffer struct {
	device   *WebGPUDevice
	raw      *wgpu.Buffer
	size     int
	capacity int
}

func (b *webgpuBuffer) DeviceID() int { return b.device.id }

func (b *webgpuBuffer) Size() int { return b.size }

var _ wordIO = (*webgpuBuffer)(nil)

func (b *webgpuBuffer) check(offset, size int) error {
	if b.raw == nil {
		return errors.Errorf("memory: %s buffer used after free", b.device.Name())
	}
	return checkRange(offset, size, b.size)
}

// readWords and writeWords are the raw copies; the buffer is allocated with a
// size rounded up to copyAlignment so word spans never leave it.
func (b *webgpuBuffer) readWords(offset int, dst []byte) error {
	return b.device.download(b.raw, offset, dst)
}

func (b *webgpuBuffer) writeWords(offset int, src []byte) error {
	b.device.upload(b.raw, offset, src)
	return nil
}

func (b *webgpuBuffer) Write(offset int, src []byte) error {
	if err := b.check(offset, len(src)); err != nil {
		return err
	}
	return writeBytes(b, offset, src)
}

func (b *webgpuBuffer) Read(offset int, dst []byte) error {
	if err := b.check(offset, len(dst)); err != nil {
		return err
	}
	return readBytes(b, offset, dst)
}

func (b *webgpuBuffer) Clear(offset, size int) error {
	if err := b.check(offset, size); err != nil {
		return err
	}
	return writeBytes(b, offset, make([]byte, size))
}

// WebGPUAvailable checks if a WebGPU adapter can be opened on this system.
func WebGPUAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

func openWebGPU(id, poolCapacity int) (Device, error) {
	d, err := NewWebGPUDevice(id, poolCapacity)
	if err != nil {
		return nil, err
	}
	return d, nil
}
