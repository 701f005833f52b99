package tensor

import "github.com/born-ml/tensormem/internal/matrix"

// Kind distinguishes dense tensors from strided views.
type Kind int

// Tensor kinds.
const (
	KindDense Kind = iota
	KindView
)

// Ownership says who releases a tensor's storage.
type Ownership int

// Ownership modes.
const (
	// Owned storage was allocated for the tensor and is released by Free.
	Owned Ownership = iota
	// Borrowed storage belongs to the caller and is never released.
	Borrowed
	// BorrowedInline is Borrowed for descriptors built by value with WrapInline.
	BorrowedInline
)

// String returns the ownership name.
func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case BorrowedInline:
		return "borrowed-inline"
	default:
		return "unknown"
	}
}

// Legacy tag bit reserved for views.
const viewBit uint32 = 0x08000000

// Tag is the type record of a tensor descriptor.
type Tag struct {
	Kind      Kind
	Ownership Ownership
	DType     DataType
	Channels  int  // set only for bridged tensors
	Bridged   bool // storage also satisfies the legacy dense matrix layout
}

// Pack returns the legacy packed integer for t. This is the only place where
// the bit layout exists; it must match the legacy dense matrix flags.
func (t Tag) Pack() uint32 {
	var bits uint32
	switch t.Ownership {
	case Owned:
		bits = matrix.Unmanaged
	case Borrowed:
		bits = matrix.NoDataAlloc
	case BorrowedInline:
		bits = matrix.NoDataAlloc | matrix.Unmanaged
	}
	bits |= matrix.Dense | t.DType.MatrixCode()
	if t.Kind == KindView {
		return bits | viewBit
	}
	if t.Bridged {
		bits |= uint32(t.Channels) & 0xFFF
	}
	return bits
}

func newTag(cfg Config, own Ownership) Tag {
	tag := Tag{Kind: KindDense, Ownership: own, DType: cfg.DType}
	if cfg.Bridges() {
		tag.Bridged = true
		tag.Channels = cfg.Dims[0]
	}
	return tag
}

// viewTag is the base tag with the channel bits cleared and the view marker set.
func viewTag(base Tag) Tag {
	return Tag{Kind: KindView, Ownership: base.Ownership, DType: base.DType}
}
