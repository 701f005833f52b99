package matrix

import (
	"encoding/binary"
	"math"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"
)

// Eq compares two dense matrices the way legacy consumers do: 0 if equal,
// -1 otherwise. Type, channel count, rows and cols must match. Floating point
// elements are compared with Close32/Close64, everything else bit for bit.
func Eq(a, b Header) int {
	if DataType(a.Type) != DataType(b.Type) || Channel(a.Type) != Channel(b.Type) ||
		a.Rows != b.Rows || a.Cols != b.Cols {
		return -1
	}
	a.assertReadable()
	b.assertReadable()
	rowBytes := a.RowBytes()
	for r := 0; r < a.Rows; r++ {
		ra := a.Data[r*a.Step : r*a.Step+rowBytes]
		rb := b.Data[r*b.Step : r*b.Step+rowBytes]
		if !rowEq(DataType(a.Type), ra, rb) {
			return -1
		}
	}
	return 0
}

func rowEq(dtype uint32, a, b []byte) bool {
	switch dtype {
	case F32:
		for i := 0; i < len(a); i += 4 {
			fa := math.Float32frombits(binary.NativeEndian.Uint32(a[i:]))
			fb := math.Float32frombits(binary.NativeEndian.Uint32(b[i:]))
			if !Close32(fa, fb) {
				return false
			}
		}
		return true
	case F64:
		for i := 0; i < len(a); i += 8 {
			fa := math.Float64frombits(binary.NativeEndian.Uint64(a[i:]))
			fb := math.Float64frombits(binary.NativeEndian.Uint64(b[i:]))
			if !Close64(fa, fb) {
				return false
			}
		}
		return true
	case F16:
		for i := 0; i < len(a); i += 2 {
			fa := float16.Frombits(binary.NativeEndian.Uint16(a[i:])).Float32()
			fb := float16.Frombits(binary.NativeEndian.Uint16(b[i:])).Float32()
			if !Close32(fa, fb) {
				return false
			}
		}
		return true
	case U8, S32, S64:
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	exceptions.Panicf("matrix: unknown data type code %#x", dtype)
	return false
}
