// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensormem/internal/tensor"
)

// Tensor is a dense tensor descriptor.
//
// Tensor provides:
//   - Shape and type information via Config(), Dims(), DType()
//   - Type-safe host data access via AsFloat32(), AsInt64(), etc.
//   - The packed legacy type via Tag().Pack()
//   - Zero-copy legacy matrix access via MatrixHeader() when bridged
//
// Example:
//
//	x := tensor.New(tensor.HostConfig(tensor.Float32, 2, 3), 0)
//	defer x.Free()
//	data := x.AsFloat32() // len 6
type Tensor = tensor.Tensor

// View is a zero-copy window onto a region of a dense tensor.
type View = tensor.View

// Descriptor is implemented by *Tensor and *View.
type Descriptor = tensor.Descriptor

// Tag is the type record of a descriptor.
type Tag = tensor.Tag

// Result is the outcome of Compare.
type Result = tensor.Result

// Compare outcomes.
const (
	Equal        Result = tensor.Equal
	NotEqual     Result = tensor.NotEqual
	Incomparable Result = tensor.Incomparable
)

// New allocates a tensor on the default host allocator or device registry.
// The payload of a host tensor is 16-byte aligned.
func New(cfg Config, flags Residency) *Tensor {
	return tensor.New(cfg, flags)
}

// NewWith is New with an explicit host allocator and device registry. A nil
// host or devices selects the process-wide default.
func NewWith(host *Host, devices *Registry, cfg Config, flags Residency) *Tensor {
	return tensor.NewWith(host, devices, cfg, flags)
}

// Wrap describes caller owned host memory of at least cfg.StorageSize()
// bytes. Free never releases data.
func Wrap(data []byte, cfg Config, flags Residency) *Tensor {
	return tensor.Wrap(data, cfg, flags)
}

// WrapInline is Wrap returning the descriptor by value.
func WrapInline(data []byte, cfg Config, flags Residency) Tensor {
	return tensor.WrapInline(data, cfg, flags)
}

// WrapDevice describes caller owned device memory.
func WrapDevice(buf Buffer, cfg Config, flags Residency) *Tensor {
	return tensor.WrapDevice(buf, cfg, flags)
}

// NewView returns a view of the region of base at offset with extents dims.
//
// Example:
//
//	base := tensor.New(tensor.HostConfig(tensor.Float32, 4, 4), 0)
//	inner := tensor.NewView(base, tensor.MakeDims(1, 1), tensor.MakeDims(2, 2))
func NewView(base *Tensor, offset, dims Dims) *View {
	return tensor.NewView(base, offset, dims)
}

// MakeView is NewView returning the view by value.
func MakeView(base *Tensor, offset, dims Dims) View {
	return tensor.MakeView(base, offset, dims)
}

// ComposeView returns a view of a region of v, expressed on v's base.
func ComposeView(v *View, offset, dims Dims) *View {
	return tensor.ComposeView(v, offset, dims)
}

// Zero sets every logical element of d to zero.
func Zero(d Descriptor) {
	tensor.Zero(d)
}

// Compare compares two dense host tensors element by element.
func Compare(a, b *Tensor) Result {
	return tensor.Compare(a, b)
}
