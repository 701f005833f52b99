package tensor

import (
	"fmt"
	"strings"

	"github.com/born-ml/tensormem/internal/matrix"
	"github.com/gomlx/exceptions"
)

// MaxDims is the maximum number of axes of a tensor.
const MaxDims = 8

// MaxChannels is the largest channel count that still bridges to a legacy
// dense matrix.
const MaxChannels = matrix.MaxChannels

// Dims are per-axis extents, fastest axis first. Entries past the rank are 0.
type Dims [MaxDims]int

// MakeDims builds Dims from the given extents, fastest axis first.
func MakeDims(extents ...int) Dims {
	if len(extents) > MaxDims {
		exceptions.Panicf("tensor: %d axes exceed the maximum of %d", len(extents), MaxDims)
	}
	var d Dims
	copy(d[:], extents)
	return d
}

// Rank returns the number of axes before the first zero extent.
func (d Dims) Rank() int {
	for i, n := range d {
		if n <= 0 {
			return i
		}
	}
	return MaxDims
}

// Count returns the number of elements: the product of extents up to the rank.
func (d Dims) Count() int {
	n := 1
	for _, dim := range d[:d.Rank()] {
		n *= dim
	}
	return n
}

// Slice returns the extents up to the rank.
func (d Dims) Slice() []int {
	return append([]int(nil), d[:d.Rank()]...)
}

// String formats d as "[a b c]".
func (d Dims) String() string {
	parts := make([]string, d.Rank())
	for i, n := range d[:d.Rank()] {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// validate checks that d has at least one axis, no negative extents and no
// extent after the terminating zero.
func (d Dims) validate(what string) {
	rank := d.Rank()
	if rank == 0 {
		exceptions.Panicf("tensor: %s %v has no axes", what, d[:])
	}
	for i := rank; i < MaxDims; i++ {
		if d[i] < 0 {
			exceptions.Panicf("tensor: %s %v has negative extent %d at axis %d", what, d[:], d[i], i)
		}
		if d[i] != 0 {
			exceptions.Panicf("tensor: %s %v has extent %d at axis %d after the terminating zero", what, d[:], d[i], i)
		}
	}
}

// Format is the axis layout convention of a tensor.
type Format int

// Supported formats.
const (
	NCHW Format = 0x01
	NHWC Format = 0x02 // channel fastest
	CHWN Format = 0x04
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case NCHW:
		return "NCHW"
	case NHWC:
		return "NHWC"
	case CHWN:
		return "CHWN"
	default:
		return "unknown"
	}
}

// Location is where a tensor's data lives.
type Location int

// Memory locations.
const (
	Host Location = iota + 1
	Device
)

// String returns the location name.
func (l Location) String() string {
	switch l {
	case Host:
		return "host"
	case Device:
		return "device"
	default:
		return "unknown"
	}
}

// Residency is the set of memory kinds a caller claims for an allocation.
// A claim that contradicts the configuration is a fatal precondition.
type Residency int

// Residency flags. The zero value makes no claim.
const (
	HostMemory   Residency = 0x1
	DeviceMemory Residency = 0x2
)

// Config is the immutable shape, type and location of a tensor.
type Config struct {
	Location Location
	DeviceID int
	Format   Format
	DType    DataType
	Dims     Dims

	// Step is the padded row stride in bytes of the legacy dense matrix
	// layout. It is set by allocation and wraps for bridged tensors, 0
	// otherwise; a value supplied by the caller is ignored.
	Step int
}

// HostConfig is a shorthand for a host resident NHWC config.
func HostConfig(dtype DataType, extents ...int) Config {
	return Config{Location: Host, Format: NHWC, DType: dtype, Dims: MakeDims(extents...)}
}

// DeviceConfig is a shorthand for a device resident NHWC config.
func DeviceConfig(deviceID int, dtype DataType, extents ...int) Config {
	return Config{Location: Device, DeviceID: deviceID, Format: NHWC, DType: dtype, Dims: MakeDims(extents...)}
}

// Count returns the number of elements.
func (c Config) Count() int { return c.Dims.Count() }

// ByteSize returns the dense payload size in bytes.
func (c Config) ByteSize() int { return c.Dims.Count() * c.DType.Size() }

// Bridges reports whether c qualifies for the legacy dense matrix layout:
// host resident, channel fastest, 0 < channels <= MaxChannels, and exactly
// three meaningful axes (channels, cols, rows).
func (c Config) Bridges() bool {
	d := c.Dims
	return c.Location == Host && c.Format == NHWC &&
		d[0] > 0 && d[0] <= MaxChannels && d[1] > 0 && d[2] > 0 && d[3] == 0
}

// legacyStep returns the legacy dense matrix row stride for bridged configs
// and 0 for all others.
func (c Config) legacyStep() int {
	if !c.Bridges() {
		return 0
	}
	return matrix.Step(c.Dims[1], c.DType.MatrixCode()|uint32(c.Dims[0]))
}

// StorageSize returns the bytes a host buffer must hold for c. It is
// ByteSize, except for bridged configs whose rows are Step bytes apart as the
// legacy layout requires: when a row of channels*cols elements is not a
// multiple of 4 bytes, every row is followed by padding.
func (c Config) StorageSize() int {
	if c.Step > 0 {
		return c.Dims[2] * c.Step
	}
	return c.ByteSize()
}

// strides returns the element distance between neighbours along each axis of
// a buffer laid out for c. Rows of a bridged config are Step bytes apart.
func (c Config) strides() Dims {
	var s Dims
	n := 1
	for axis := 0; axis < c.Dims.Rank(); axis++ {
		s[axis] = n
		n *= c.Dims[axis]
		if axis == 1 && c.Step > 0 {
			n = c.Step / c.DType.Size()
		}
	}
	return s
}

func (c Config) validate() {
	if !c.DType.Valid() {
		exceptions.Panicf("tensor: invalid data type %d", int(c.DType))
	}
	switch c.Location {
	case Host:
	case Device:
		if c.DeviceID < 0 {
			exceptions.Panicf("tensor: invalid device id %d", c.DeviceID)
		}
	default:
		exceptions.Panicf("tensor: invalid memory location %d", int(c.Location))
	}
	c.Dims.validate("dims")
}

// checkResidency asserts that flags do not contradict the configured location.
func (c Config) checkResidency(flags Residency) {
	switch {
	case flags&HostMemory != 0:
		if c.Location != Host {
			exceptions.Panicf("tensor: host memory requested for a %s config", c.Location)
		}
	case flags&DeviceMemory != 0:
		if c.Location != Device {
			exceptions.Panicf("tensor: device memory requested for a %s config", c.Location)
		}
	}
}

// String returns a compact description such as "float32[4 4]@host".
func (c Config) String() string {
	loc := c.Location.String()
	if c.Location == Device {
		loc = fmt.Sprintf("device(%d)", c.DeviceID)
	}
	return fmt.Sprintf("%s%s@%s", c.DType, c.Dims, loc)
}
