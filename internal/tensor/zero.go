package tensor

import (
	"github.com/gomlx/exceptions"
)

// Zero sets every logical element of d to zero. For views only the declared
// region is written; padding and elements outside the view keep their values.
func Zero(d Descriptor) {
	switch x := d.(type) {
	case *View:
		x.Zero()
	case *Tensor:
		x.Zero()
	default:
		exceptions.Panicf("tensor: Zero of unsupported descriptor %T", d)
	}
}

// Zero clears the whole payload in one pass, including the row padding of
// bridged tensors.
func (t *Tensor) Zero() {
	t.assertLive()
	if t.tag.Kind == KindView {
		exceptions.Panicf("tensor: dense Zero called on a view")
	}
	switch t.cfg.Location {
	case Host:
		clear(t.host)
	case Device:
		if err := t.device.Clear(t.devOffset, t.cfg.ByteSize()); err != nil {
			exceptions.Panicf("tensor: zeroing %s: %v", t, err)
		}
	}
}

// Zero clears the view's region row by row, never touching the gaps between
// rows and planes of the base.
func (v *View) Zero() {
	v.assertLive()
	elem := v.cfg.DType.Size()
	rowBytes := v.cfg.Dims[0] * elem
	switch v.cfg.Location {
	case Host:
		walkRows(v.cfg.Dims, v.strides, func(off int) {
			start := off * elem
			clear(v.host[start : start+rowBytes])
		})
	case Device:
		walkRows(v.cfg.Dims, v.strides, func(off int) {
			if err := v.device.Clear(v.devOffset+off*elem, rowBytes); err != nil {
				exceptions.Panicf("tensor: zeroing view of %s: %v", v.base, err)
			}
		})
	}
}

// walkRows calls row with the element offset (relative to the region start)
// of every contiguous run of dims[0] elements in the region dims of a buffer
// with the given element strides.
//
// Axis 1 is walked directly within each plane. Axes 2 and up are walked with
// an odometer: the lowest axis is incremented, and when an axis completes its
// extent it resets and carries into the next one. Extents of 0 or 1 make the
// corresponding loop a single pass.
func walkRows(dims, strides Dims, row func(off int)) {
	rank := dims.Rank()
	rows := 1
	if rank > 1 {
		rows = dims[1]
	}

	var idx Dims
	plane := 0
	for {
		off := plane
		for r := 0; r < rows; r++ {
			row(off)
			off += strides[1]
		}

		k := 2
		for ; k < rank; k++ {
			idx[k]++
			plane += strides[k]
			if idx[k] < dims[k] {
				break
			}
			// Axis k completed: rewind it and carry.
			plane -= idx[k] * strides[k]
			idx[k] = 0
		}
		if k >= rank {
			return
		}
	}
}
