// Package matrix describes the binary layout of the legacy dense matrix type.
//
// A tensor that is host resident, channel-fastest and has exactly three
// meaningful axes (channels, cols, rows) can be read by legacy consumers as a
// dense matrix without copying. The constants and the step rule here must stay
// bit-exact with that library.
package matrix

import (
	"math"

	"github.com/gomlx/exceptions"
)

// MaxChannels is the largest channel count a dense matrix can carry.
const MaxChannels = 0xFFF

// Data type codes, stored in bits 12..19 of a matrix type.
const (
	U8  uint32 = 0x01000
	S32 uint32 = 0x02000
	F32 uint32 = 0x04000
	S64 uint32 = 0x08000
	F64 uint32 = 0x10000
	F16 uint32 = 0x20000
)

// Matrix kind and ownership flags.
const (
	Dense       uint32 = 0x00100000
	Sparse      uint32 = 0x00200000
	NoDataAlloc uint32 = 0x10000000
	Unmanaged   uint32 = 0x20000000
)

const (
	channelMask  = 0xFFF
	dataTypeMask = 0xFF000
)

// Channel returns the channel count packed in t.
func Channel(t uint32) int {
	return int(t & channelMask)
}

// DataType returns the data type code packed in t.
func DataType(t uint32) uint32 {
	return t & dataTypeMask
}

// DataTypeSize returns the element size in bytes of the data type packed in t.
// Unknown codes are a fatal precondition.
func DataTypeSize(t uint32) int {
	switch DataType(t) {
	case U8:
		return 1
	case F16:
		return 2
	case S32, F32:
		return 4
	case S64, F64:
		return 8
	}
	exceptions.Panicf("matrix: unknown data type code %#x", DataType(t))
	return 0
}

// Step returns the padded row stride in bytes for a row of cols elements of
// type t: rows are rounded up to a multiple of 4 bytes.
func Step(cols int, t uint32) int {
	return (cols*DataTypeSize(t)*Channel(t) + 3) &^ 3
}

// Header is the dense matrix header as seen by legacy consumers. Data aliases
// the tensor buffer.
type Header struct {
	Type uint32
	Rows int
	Cols int
	Step int
	Data []byte
}

// RowBytes is the number of meaningful bytes in one row.
func (h Header) RowBytes() int {
	return h.Cols * Channel(h.Type) * DataTypeSize(h.Type)
}

func (h Header) assertReadable() {
	if h.Rows <= 0 || h.Cols <= 0 {
		exceptions.Panicf("matrix: invalid header %dx%d", h.Rows, h.Cols)
	}
	if need := (h.Rows-1)*h.Step + h.RowBytes(); len(h.Data) < need {
		exceptions.Panicf("matrix: %dx%d matrix with step %d needs %d bytes, buffer has %d",
			h.Rows, h.Cols, h.Step, need, len(h.Data))
	}
}

// Tolerances shared with the tensor comparator.
const (
	ULPs32     = 128
	ULPs64     = 128
	Epsilon32  = float32(0x1p-23)
	Epsilon64  = float64(0x1p-52)
	signFlip32 = uint32(0x80000000)
	signFlip64 = uint64(0x8000000000000000)
)

// OrderedBits32 maps the bit pattern of a float32 to an integer whose ordering
// matches the floating point ordering.
func OrderedBits32(bits uint32) int64 {
	i := int32(bits)
	if i < 0 {
		i = int32(signFlip32 - bits)
	}
	return int64(i)
}

// OrderedBits64 is OrderedBits32 for float64.
func OrderedBits64(bits uint64) int64 {
	i := int64(bits)
	if i < 0 {
		i = int64(signFlip64 - bits)
	}
	return i
}

// Close32 reports whether a and b are within ULPs32 and within Epsilon32.
func Close32(a, b float32) bool {
	ia, ib := OrderedBits32(math.Float32bits(a)), OrderedBits32(math.Float32bits(b))
	d := ia - ib
	if d < 0 {
		d = -d
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return d <= ULPs32 && diff <= Epsilon32
}

// Close64 reports whether a and b are within ULPs64 and within Epsilon64.
func Close64(a, b float64) bool {
	ia, ib := OrderedBits64(math.Float64bits(a)), OrderedBits64(math.Float64bits(b))
	// The unsigned difference cannot overflow.
	var d uint64
	if ia > ib {
		d = uint64(ia) - uint64(ib)
	} else {
		d = uint64(ib) - uint64(ia)
	}
	return d <= ULPs64 && math.Abs(a-b) <= Epsilon64
}
