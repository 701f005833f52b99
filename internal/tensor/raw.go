package tensor

import (
	"fmt"

	"github.com/born-ml/tensormem/internal/matrix"
	"github.com/born-ml/tensormem/internal/memory"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Tensor is a typed, shaped descriptor paired with a data buffer.
//
// Host storage is a byte slice; device storage is a memory.Buffer plus a byte
// offset, and is not host addressable. Descriptors are not safe for concurrent
// use.
type Tensor struct {
	tag      Tag
	refCount int32  // advisory, always 1
	sig      uint64 // content signature, unused
	cfg      Config

	host      []byte        // host storage, nil for device tensors
	device    memory.Buffer // device storage, nil for host tensors
	devOffset int           // byte offset into device

	hostAlloc *memory.Host  // allocator that owns host, if Owned
	devAlloc  memory.Device // allocator that owns device, if Owned
	released  bool
}

// Descriptor is implemented by *Tensor and *View.
type Descriptor interface {
	// Desc returns the descriptor record (a view's own record, not its base).
	Desc() *Tensor
	IsView() bool
}

// New allocates a tensor for cfg. Host tensors come from the default host
// allocator, 16-byte aligned and zeroed; device tensors come from the device
// allocator registered for cfg.DeviceID and have undefined contents.
//
// flags must not contradict cfg.Location. Any violation, including a failed
// device allocation, is a fatal precondition.
func New(cfg Config, flags Residency) *Tensor {
	return NewWith(nil, nil, cfg, flags)
}

// NewWith is New with explicit allocator backends. A nil host or devices
// selects memory.DefaultHost or memory.DefaultRegistry, looked up only when
// cfg needs it.
func NewWith(host *memory.Host, devices *memory.Registry, cfg Config, flags Residency) *Tensor {
	cfg.validate()
	cfg.checkResidency(flags)
	cfg.Step = cfg.legacyStep()

	t := &Tensor{refCount: 1}
	switch cfg.Location {
	case Device:
		if devices == nil {
			devices = memory.DefaultRegistry()
		}
		dev, err := devices.Get(cfg.DeviceID)
		if err != nil {
			exceptions.Panicf("tensor: %s: %v", cfg, err)
		}
		size := cfg.ByteSize()
		buf, err := dev.Alloc(size)
		if err != nil {
			exceptions.Panicf("tensor: allocating %s on %s: %v", humanize.IBytes(uint64(size)), dev.Name(), err)
		}
		t.device = buf
		t.devAlloc = dev
	case Host:
		if host == nil {
			host = memory.DefaultHost()
		}
		t.host = host.Alloc(cfg.StorageSize())
		t.hostAlloc = host
	}
	t.cfg = cfg
	t.tag = newTag(cfg, Owned)
	klog.V(2).Infof("tensor: new %s", t)
	return t
}

// Wrap returns a descriptor that borrows host memory data. data must hold at
// least cfg.StorageSize() bytes; Free never releases it.
func Wrap(data []byte, cfg Config, flags Residency) *Tensor {
	t := WrapInline(data, cfg, flags)
	t.tag.Ownership = Borrowed
	return &t
}

// WrapInline is Wrap returning the descriptor by value, for short lived wraps
// of externally owned memory. It needs no Free.
func WrapInline(data []byte, cfg Config, flags Residency) Tensor {
	cfg.validate()
	cfg.checkResidency(flags)
	if cfg.Location != Host {
		exceptions.Panicf("tensor: Wrap of host memory with a %s config, use WrapDevice", cfg)
	}
	if data == nil {
		exceptions.Panicf("tensor: Wrap of nil data")
	}
	cfg.Step = cfg.legacyStep()
	size := cfg.StorageSize()
	if len(data) < size {
		exceptions.Panicf("tensor: Wrap of %d bytes for %s which needs %d", len(data), cfg, size)
	}
	return Tensor{
		tag:      newTag(cfg, BorrowedInline),
		refCount: 1,
		cfg:      cfg,
		host:     data[:size:size],
	}
}

// WrapDevice returns a descriptor that borrows the device buffer buf.
func WrapDevice(buf memory.Buffer, cfg Config, flags Residency) *Tensor {
	cfg.validate()
	cfg.checkResidency(flags)
	if cfg.Location != Device {
		exceptions.Panicf("tensor: WrapDevice with a %s config", cfg)
	}
	if buf == nil {
		exceptions.Panicf("tensor: WrapDevice of nil buffer")
	}
	if buf.DeviceID() != cfg.DeviceID {
		exceptions.Panicf("tensor: WrapDevice of a buffer on device %d for %s", buf.DeviceID(), cfg)
	}
	if buf.Size() < cfg.ByteSize() {
		exceptions.Panicf("tensor: WrapDevice of %d bytes for %s which needs %d", buf.Size(), cfg, cfg.ByteSize())
	}
	return &Tensor{
		tag:      newTag(cfg, Borrowed),
		refCount: 1,
		cfg:      cfg,
		device:   buf,
	}
}

// Free releases owned storage and invalidates the descriptor. Borrowed
// storage is left untouched. Views of t must not be used afterwards.
func (t *Tensor) Free() {
	if t.tag.Kind == KindView {
		exceptions.Panicf("tensor: Free called on a view, use (*View).Free")
	}
	t.assertLive()
	if t.tag.Ownership == Owned {
		switch t.cfg.Location {
		case Device:
			if err := t.devAlloc.Free(t.device); err != nil {
				klog.Warningf("tensor: releasing %s: %v", t, err)
			}
		case Host:
			t.hostAlloc.Free(t.host)
		}
	}
	klog.V(2).Infof("tensor: free %s", t)
	t.released = true
	t.host = nil
	t.device = nil
}

func (t *Tensor) assertLive() {
	if t == nil {
		exceptions.Panicf("tensor: nil tensor")
	}
	if t.released {
		exceptions.Panicf("tensor: %s used after Free", t.cfg)
	}
}

// Desc implements Descriptor.
func (t *Tensor) Desc() *Tensor { return t }

// IsView reports whether t is a strided view.
func (t *Tensor) IsView() bool { return t.tag.Kind == KindView }

// Config returns the tensor's configuration.
func (t *Tensor) Config() Config { return t.cfg }

// Tag returns the tensor's type record.
func (t *Tensor) Tag() Tag { return t.tag }

// Dims returns the tensor's logical extents.
func (t *Tensor) Dims() Dims { return t.cfg.Dims }

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType { return t.cfg.DType }

// Location returns where the tensor's data lives.
func (t *Tensor) Location() Location { return t.cfg.Location }

// IsBridged reports whether the storage also satisfies the legacy dense
// matrix layout.
func (t *Tensor) IsBridged() bool { return t.tag.Bridged }

// RefCount returns the advisory reference count. It is never adjusted.
func (t *Tensor) RefCount() int32 { return t.refCount }

// Signature returns the content signature slot (always 0).
func (t *Tensor) Signature() uint64 { return t.sig }

// IsReleased reports whether Free was called.
func (t *Tensor) IsReleased() bool { return t.released }

// ByteSize returns the dense payload size in bytes.
func (t *Tensor) ByteSize() int { return t.cfg.ByteSize() }

// DeviceBuffer returns the device storage and the byte offset where the
// tensor starts. It panics for host tensors.
func (t *Tensor) DeviceBuffer() (memory.Buffer, int) {
	t.assertLive()
	if t.cfg.Location != Device {
		exceptions.Panicf("tensor: DeviceBuffer of %s", t.cfg)
	}
	return t.device, t.devOffset
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	kind := "dense"
	if t.tag.Kind == KindView {
		kind = "view"
	}
	return fmt.Sprintf("Tensor(%s %s %s %s)", t.cfg, kind, t.tag.Ownership, humanize.IBytes(uint64(t.cfg.ByteSize())))
}

// MatrixHeader returns t as a legacy dense matrix: rows are axis 2, cols axis
// 1 and channels axis 0. t must be bridged.
func (t *Tensor) MatrixHeader() matrix.Header {
	t.assertLive()
	if !t.tag.Bridged {
		exceptions.Panicf("tensor: %s does not bridge to a dense matrix", t.cfg)
	}
	return matrix.Header{
		Type: t.tag.Pack(),
		Rows: t.cfg.Dims[2],
		Cols: t.cfg.Dims[1],
		Step: t.cfg.Step,
		Data: t.host,
	}
}
