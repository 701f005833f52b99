package memory

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmulatedRoundTrip(t *testing.T) {
	dev := NewEmulatedDevice(3, 4)
	defer func() { must.M(dev.Close()) }()

	buf := must.M1(dev.Alloc(16))
	assert.Equal(t, 3, buf.DeviceID())
	assert.Equal(t, 16, buf.Size())

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, buf.Write(4, src))

	got := make([]byte, 8)
	require.NoError(t, buf.Read(4, got))
	assert.Equal(t, src, got)

	require.NoError(t, buf.Clear(6, 4))
	require.NoError(t, buf.Read(4, got))
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 0, 7, 8}, got)

	assert.ErrorIs(t, buf.Write(12, src), ErrOutOfRange)
	assert.ErrorIs(t, buf.Read(-1, got), ErrOutOfRange)
	assert.ErrorIs(t, buf.Clear(0, 17), ErrOutOfRange)
}

func TestEmulatedFree(t *testing.T) {
	dev := NewEmulatedDevice(0, 4)
	buf := must.M1(dev.Alloc(100))
	assert.Equal(t, int64(100), dev.Stats().LiveBytes)

	require.NoError(t, dev.Free(buf))
	assert.Equal(t, int64(0), dev.Stats().LiveBytes)
	assert.Equal(t, uint64(1), dev.Stats().Frees)
	assert.Error(t, dev.Free(buf), "double free")
	assert.Error(t, buf.Write(0, []byte{1}), "use after free")

	// The released block is reused.
	_ = must.M1(dev.Alloc(60))
	assert.Equal(t, uint64(1), dev.PoolStats().Hits)

	other := NewEmulatedDevice(1, 4)
	foreign := must.M1(other.Alloc(8))
	assert.Error(t, dev.Free(foreign))
}

func TestEmulatedClosed(t *testing.T) {
	dev := NewEmulatedDevice(0, 4)
	require.NoError(t, dev.Close())
	_, err := dev.Alloc(8)
	assert.Error(t, err)
}
