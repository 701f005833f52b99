// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensormem/internal/tensor"
)

// Type aliases for public API

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Format is the axis layout convention of a tensor.
type Format = tensor.Format

// Format constants.
const (
	NCHW Format = tensor.NCHW
	NHWC Format = tensor.NHWC
	CHWN Format = tensor.CHWN
)

// Location is where a tensor's data lives.
type Location = tensor.Location

// Location constants.
const (
	Host   Location = tensor.Host
	Device Location = tensor.Device
)

// Residency is the memory kind a caller claims for an allocation.
type Residency = tensor.Residency

// Residency flags.
const (
	HostMemory   Residency = tensor.HostMemory
	DeviceMemory Residency = tensor.DeviceMemory
)

// Limits.
const (
	MaxDims     = tensor.MaxDims
	MaxChannels = tensor.MaxChannels
)

// Dims are per-axis extents, fastest axis first.
// Example: Dims{4, 3} is 3 rows of 4 elements.
type Dims = tensor.Dims

// Config is the shape, type and location of a tensor.
type Config = tensor.Config

// MakeDims builds Dims from extents, fastest axis first.
func MakeDims(extents ...int) Dims {
	return tensor.MakeDims(extents...)
}

// HostConfig returns a host resident NHWC config.
//
// Example:
//
//	cfg := tensor.HostConfig(tensor.Float32, 3, 8, 4) // 4 rows, 8 cols, 3 channels
func HostConfig(dtype DataType, extents ...int) Config {
	return tensor.HostConfig(dtype, extents...)
}

// DeviceConfig returns a device resident NHWC config.
func DeviceConfig(deviceID int, dtype DataType, extents ...int) Config {
	return tensor.DeviceConfig(deviceID, dtype, extents...)
}

// ParseDataType returns the data type with the given name, such as "float32".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}
