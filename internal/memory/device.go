package memory

import "github.com/pkg/errors"

// Buffer is a block of device memory. It is not host addressable: contents
// move through Write and Read. Offsets and sizes are in bytes.
type Buffer interface {
	// DeviceID of the device that owns the buffer.
	DeviceID() int

	// Size in bytes, as requested at allocation.
	Size() int

	// Write copies src into the buffer starting at offset.
	Write(offset int, src []byte) error

	// Read copies len(dst) bytes starting at offset into dst.
	Read(offset int, dst []byte) error

	// Clear sets size bytes starting at offset to zero.
	Clear(offset, size int) error
}

// Device allocates device buffers. Calls are synchronous and may block on the
// device runtime.
type Device interface {
	ID() int
	Name() string
	Alloc(size int) (Buffer, error)
	Free(buf Buffer) error
	Stats() Stats
	Close() error
}

// ErrOutOfRange is returned by Buffer methods for accesses beyond the buffer.
var ErrOutOfRange = errors.New("memory: device buffer access out of range")

func checkRange(offset, size, bufSize int) error {
	if offset < 0 || size < 0 || offset+size > bufSize {
		return errors.Wrapf(ErrOutOfRange, "offset %d size %d buffer %d", offset, size, bufSize)
	}
	return nil
}
