package tensor

import (
	"github.com/born-ml/tensormem/internal/memory"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// View aliases a hyper-rectangular region of a dense tensor's buffer without
// copying. Its Dims are the logical extents of the region; Strides are the
// extents of the base, and ElementStrides the distance in elements between
// neighbours along each axis of the base buffer.
//
// A View holds a non-owning reference to its base: the base must outlive it.
// Using a view after its base was freed is a fatal precondition.
type View struct {
	Tensor

	inc     Dims // base extents
	strides Dims // base element strides
	offset  Dims // offset of the region within the base
	start  int  // element offset of the first element within the base
	base   *Tensor
}

var _ Descriptor = (*View)(nil)

// NewView returns a view of the region of base starting at offset with the
// given extents. base must be a live dense tensor: views do not chain (see
// ComposeView). For every axis with a positive extent,
// 0 <= offset[axis] and offset[axis]+dims[axis] <= base extent.
func NewView(base *Tensor, offset, dims Dims) *View {
	v := MakeView(base, offset, dims)
	return &v
}

// MakeView is NewView returning the view by value, for short lived views.
func MakeView(base *Tensor, offset, dims Dims) View {
	if base == nil {
		exceptions.Panicf("tensor: view of nil tensor")
	}
	if base.IsView() {
		exceptions.Panicf("tensor: view of a view, views do not chain: use ComposeView")
	}
	base.assertLive()
	dims.validate("view dims")

	inc, strides := base.cfg.Dims, base.cfg.strides()
	for axis := 0; axis < dims.Rank(); axis++ {
		if offset[axis] < 0 || offset[axis]+dims[axis] > inc[axis] {
			exceptions.Panicf("tensor: view offset %v dims %v out of bounds of %v at axis %d",
				offset.Slice(), dims, inc, axis)
		}
	}

	cfg := base.cfg
	cfg.Dims = dims
	cfg.Step = 0
	v := View{
		Tensor: Tensor{
			tag:      viewTag(base.tag),
			refCount: 1,
			cfg:      cfg,
		},
		inc:     inc,
		strides: strides,
		offset:  offset,
		start:   viewStart(strides, offset, dims),
		base:    base,
	}
	elem := cfg.DType.Size()
	switch cfg.Location {
	case Host:
		v.host = base.host[v.start*elem:]
	case Device:
		v.device = base.device
		v.devOffset = base.devOffset + v.start*elem
	}
	klog.V(3).Infof("tensor: view %v+%v of %s", dims, offset.Slice(), base)
	return v
}

// viewStart computes the element offset of a view's first element: axes are
// walked fastest first while the view extent is positive, each offset scaled
// by the element stride of its axis. For a dense base the stride is the
// product of the base extents of the faster axes.
func viewStart(strides, offset, dims Dims) int {
	start := 0
	for axis := 0; axis < MaxDims && dims[axis] > 0; axis++ {
		start += offset[axis] * strides[axis]
	}
	return start
}

// ComposeView returns a view of the region of v starting at offset with the
// given extents, expressed directly on v's base.
func ComposeView(v *View, offset, dims Dims) *View {
	v.assertLive()
	dims.validate("view dims")
	var abs Dims
	for axis := 0; axis < dims.Rank(); axis++ {
		if offset[axis] < 0 || offset[axis]+dims[axis] > v.cfg.Dims[axis] {
			exceptions.Panicf("tensor: composed offset %v dims %v out of bounds of view %v at axis %d",
				offset.Slice(), dims, v.cfg.Dims, axis)
		}
		abs[axis] = v.offset[axis] + offset[axis]
	}
	return NewView(v.base, abs, dims)
}

func (v *View) assertLive() {
	if v == nil {
		exceptions.Panicf("tensor: nil view")
	}
	if v.released {
		exceptions.Panicf("tensor: view %v used after Free", v.cfg.Dims)
	}
	if v.base.released {
		exceptions.Panicf("tensor: view %v used after its base %s was freed", v.cfg.Dims, v.base.cfg)
	}
}

// Free invalidates the view. The base storage is never released, and the base
// may already be freed.
func (v *View) Free() {
	if v.released {
		exceptions.Panicf("tensor: view %v freed twice", v.cfg.Dims)
	}
	v.released = true
	v.host = nil
	v.device = nil
}

// Desc implements Descriptor.
func (v *View) Desc() *Tensor { return &v.Tensor }

// Base returns the tensor v aliases.
func (v *View) Base() *Tensor { return v.base }

// Strides returns the base extents used to step through v's region.
func (v *View) Strides() Dims { return v.inc }

// ElementStrides returns the element distance between neighbours along each
// axis of the base buffer.
func (v *View) ElementStrides() Dims { return v.strides }

// Offset returns the offset of v's region within the base.
func (v *View) Offset() Dims { return v.offset }

// Start returns the element offset of v's first element within the base buffer.
func (v *View) Start() int { return v.start }

// DeviceBuffer returns the base's device storage and the byte offset of v's
// first element.
func (v *View) DeviceBuffer() (memory.Buffer, int) {
	v.assertLive()
	return v.Tensor.DeviceBuffer()
}
