// Package tensor implements tensor descriptors over host and device memory:
// allocation, zero-copy strided views, region-aware zero fill and tolerance
// based equality.
package tensor

import (
	"github.com/born-ml/tensormem/internal/matrix"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	InvalidDType DataType = iota
	Float32
	Float64
	Float16
	Int32
	Int64
	Uint8
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16:
		return 2
	case Uint8:
		return 1
	default:
		exceptions.Panicf("tensor: unknown data type %d", int(dt))
		return 0
	}
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt >= Float32 && dt <= Uint8
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// MatrixCode returns the legacy dense matrix code for dt.
func (dt DataType) MatrixCode() uint32 {
	switch dt {
	case Float32:
		return matrix.F32
	case Float64:
		return matrix.F64
	case Float16:
		return matrix.F16
	case Int32:
		return matrix.S32
	case Int64:
		return matrix.S64
	case Uint8:
		return matrix.U8
	default:
		exceptions.Panicf("tensor: unknown data type %d", int(dt))
		return 0
	}
}

// DataTypeFromMatrixCode is the inverse of MatrixCode.
func DataTypeFromMatrixCode(code uint32) DataType {
	switch matrix.DataType(code) {
	case matrix.F32:
		return Float32
	case matrix.F64:
		return Float64
	case matrix.F16:
		return Float16
	case matrix.S32:
		return Int32
	case matrix.S64:
		return Int64
	case matrix.U8:
		return Uint8
	}
	return InvalidDType
}

// ParseDataType returns the data type named by String.
func ParseDataType(name string) (DataType, error) {
	for dt := Float32; dt <= Uint8; dt++ {
		if dt.String() == name {
			return dt, nil
		}
	}
	return InvalidDType, errors.Errorf("unknown data type %q", name)
}
