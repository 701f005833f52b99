// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides tensor descriptors over host and device memory.
//
// # Overview
//
// A tensor is a descriptor (shape, data type, location, format) plus a
// payload. This package provides:
//   - Owned allocations on the host or on a device (New)
//   - Borrowed wraps of caller memory (Wrap, WrapInline, WrapDevice)
//   - Zero-copy strided views of a region of a dense tensor (NewView)
//   - Region aware zero fill (Zero)
//   - Tolerance based equality (Compare)
//
// # Basic Usage
//
//	import "github.com/born-ml/tensormem/tensor"
//
//	func main() {
//	    x := tensor.New(tensor.HostConfig(tensor.Float32, 4, 4), tensor.HostMemory)
//	    defer x.Free()
//
//	    tensor.Zero(x)
//	    v := tensor.NewView(x, tensor.MakeDims(1, 1), tensor.MakeDims(2, 2))
//	    defer v.Free()
//	}
//
// # Axis Order
//
// Dims are listed fastest axis first: for a 4x4 matrix Dims{4, 4} the first
// extent is the number of columns. Entries past the rank are 0.
//
// # Views
//
// A view never owns memory. It aliases its base and must not outlive it;
// using a view whose base was freed panics. Views do not chain: ComposeView
// re-expresses a view of a view directly on the base.
//
// # Legacy Dense Matrices
//
// Host, NHWC tensors with exactly three axes (channels, cols, rows) and at
// most MaxChannels channels are bridged: their storage is also a valid legacy
// dense matrix, available through MatrixHeader without copying. Rows of a
// bridged tensor are Config.Step bytes apart, so uint8 and float16 tensors
// whose rows are not a multiple of 4 bytes carry padding after each row;
// Config.StorageSize gives the buffer size including it.
//
// # Devices
//
// Device memory is served by a Registry. The default registry is configured
// from TENSORMEM_* environment variables: DEVICE_BACKEND (emulated or
// webgpu), DEVICE_COUNT and POOL_CAPACITY. WebGPU is available on Windows;
// elsewhere it falls back to the emulated device.
//
// # Errors
//
// Precondition violations (malformed configurations, out of bounds views,
// use after Free) panic. Recoverable failures such as device allocation
// errors are returned as errors where the API allows it and panic otherwise.
package tensor
