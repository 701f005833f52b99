package tensor

import (
	"github.com/born-ml/tensormem/internal/matrix"
	"github.com/gomlx/exceptions"
)

// Result is the outcome of Equal.
type Result int

// Equal outcomes.
const (
	// Equal: same shape, and every element within tolerance.
	Equal Result = iota
	// NotEqual: shapes differ or some element is out of tolerance.
	NotEqual
	// Incomparable: the data types (or legacy layouts) differ.
	Incomparable
)

// String returns the outcome name.
func (r Result) String() string {
	switch r {
	case Equal:
		return "equal"
	case NotEqual:
		return "not-equal"
	case Incomparable:
		return "incomparable"
	default:
		return "unknown"
	}
}

// Code returns the legacy comparator result: 0 if equal, -1 otherwise.
func (r Result) Code() int {
	if r == Equal {
		return 0
	}
	return -1
}

// Tolerances of the element comparison.
const (
	ULPs    = matrix.ULPs32
	Epsilon = matrix.Epsilon32
)

// Compare compares two dense host tensors.
//
// Bridged tensors are compared as legacy dense matrices. Otherwise the data
// types must match and only Float32 is supported (anything else is a fatal
// precondition); extents are compared up to the first axis where both are 0;
// and each pair of elements must be within ULPs units in the last place and
// within Epsilon.
func Compare(a, b *Tensor) Result {
	for _, t := range []*Tensor{a, b} {
		t.assertLive()
		if t.tag.Kind == KindView {
			exceptions.Panicf("tensor: Equal of a view")
		}
		if t.cfg.Location != Host {
			exceptions.Panicf("tensor: Equal of %s, only host tensors are comparable", t.cfg)
		}
	}

	if a.tag.Bridged {
		return equalMatrix(a, b)
	}

	if a.cfg.DType != b.cfg.DType {
		return Incomparable
	}
	if a.cfg.DType != Float32 {
		exceptions.Panicf("tensor: Equal supports only float32, got %s", a.cfg.DType)
	}
	for i := 0; i < MaxDims; i++ {
		if a.cfg.Dims[i] == 0 && b.cfg.Dims[i] == 0 {
			break
		}
		if a.cfg.Dims[i] != b.cfg.Dims[i] {
			return NotEqual
		}
	}

	fa, fb := a.AsFloat32(), b.AsFloat32()
	for i := range fa {
		if !matrix.Close32(fa[i], fb[i]) {
			return NotEqual
		}
	}
	return Equal
}

func equalMatrix(a, b *Tensor) Result {
	if !b.tag.Bridged {
		return Incomparable
	}
	ha, hb := a.MatrixHeader(), b.MatrixHeader()
	if matrix.DataType(ha.Type) != matrix.DataType(hb.Type) || matrix.Channel(ha.Type) != matrix.Channel(hb.Type) {
		return Incomparable
	}
	if matrix.Eq(ha, hb) != 0 {
		return NotEqual
	}
	return Equal
}

// Equal compares t with other, see Compare.
func (t *Tensor) Equal(other *Tensor) Result {
	return Compare(t, other)
}
