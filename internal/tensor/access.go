package tensor

import (
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"
)

// hostData returns the dense host payload of t, panicking for views, device
// tensors and released tensors.
func (t *Tensor) hostData(want DataType) []byte {
	t.assertLive()
	if t.tag.Kind == KindView {
		exceptions.Panicf("tensor: typed access to a view is not contiguous, read through the base tensor")
	}
	if t.cfg.Location != Host {
		exceptions.Panicf("tensor: %s is not host addressable", t.cfg)
	}
	if want != InvalidDType && t.cfg.DType != want {
		exceptions.Panicf("tensor: dtype is %s, not %s", t.cfg.DType, want)
	}
	return t.host
}

// Data returns the raw payload bytes of a dense host tensor, StorageSize
// bytes long. Bridged tensors with padded rows include the padding: element
// (c, x, y) starts at byte y*Step + (x*channels+c)*elementSize.
// WARNING: Direct access to underlying memory. Use with caution.
func (t *Tensor) Data() []byte {
	return t.hostData(InvalidDType)
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	data := t.hostData(Float32)
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounded by len(data)
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (t *Tensor) AsFloat64() []float64 {
	data := t.hostData(Float64)
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounded by len(data)
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// AsFloat16 interprets the data as []float16.Float16. Like Data, the slice
// includes the row padding of bridged tensors.
// Panics if the tensor's dtype is not Float16.
func (t *Tensor) AsFloat16() []float16.Float16 {
	data := t.hostData(Float16)
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounded by len(data)
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&data[0])), len(data)/2)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (t *Tensor) AsInt32() []int32 {
	data := t.hostData(Int32)
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounded by len(data)
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (t *Tensor) AsInt64() []int64 {
	data := t.hostData(Int64)
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounded by len(data)
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// AsUint8 interprets the data as []uint8, row padding included.
// Panics if the tensor's dtype is not Uint8.
func (t *Tensor) AsUint8() []uint8 {
	return t.hostData(Uint8)
}
