// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensormem/tensor"
)

// TestDescriptorInterface verifies both descriptor kinds satisfy Descriptor.
func TestDescriptorInterface(_ *testing.T) {
	var _ tensor.Descriptor = (*tensor.Tensor)(nil)
	var _ tensor.Descriptor = (*tensor.View)(nil)
}

// TestZeroInnerRegion allocates a 4x4 float32 matrix, zeroes it, fills it,
// then zeroes the inner 2x2 block through a view.
func TestZeroInnerRegion(t *testing.T) {
	host := tensor.NewHost()
	settings := must.M1(tensor.LoadSettings())
	devices := tensor.NewRegistry(settings)
	defer func() { must.M(devices.Close()) }()

	x := tensor.NewWith(host, devices, tensor.HostConfig(tensor.Float32, 4, 4), tensor.HostMemory)
	defer x.Free()
	require.Equal(t, 64, x.ByteSize())

	tensor.Zero(x)
	data := x.AsFloat32()
	for i := range data {
		require.Zero(t, data[i])
		data[i] = float32(i)
	}

	v := tensor.NewView(x, tensor.MakeDims(1, 1), tensor.MakeDims(2, 2))
	tensor.Zero(v)
	v.Free()

	want := []float32{
		0, 1, 2, 3,
		4, 0, 0, 7,
		8, 0, 0, 11,
		12, 13, 14, 15,
	}
	assert.Equal(t, want, x.AsFloat32())

	y := tensor.Wrap(make([]byte, 64), tensor.HostConfig(tensor.Float32, 4, 4), 0)
	copy(y.AsFloat32(), want)
	assert.Equal(t, tensor.Equal, tensor.Compare(x, y))
	y.AsFloat32()[0] = 1
	assert.Equal(t, tensor.NotEqual, tensor.Compare(x, y))
	assert.Equal(t, uint64(1), host.Stats().Allocs)
}

// TestBridgedMatrix verifies the legacy matrix view of a 3-channel image.
func TestBridgedMatrix(t *testing.T) {
	x := tensor.New(tensor.HostConfig(tensor.Float32, 3, 8, 4), 0)
	defer x.Free()

	require.True(t, x.IsBridged())
	h := x.MatrixHeader()
	assert.Equal(t, 4, h.Rows)
	assert.Equal(t, 8, h.Cols)
	assert.Equal(t, 96, h.Step)
	assert.Equal(t, uint32(0x20104003), h.Type)
}
