// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensormem/internal/config"
	"github.com/born-ml/tensormem/internal/memory"
)

// Host is the aligned host allocator.
type Host = memory.Host

// Registry maps device ids to devices.
//
// Implementations behind a registry:
//   - emulated: host backed device memory, always available
//   - webgpu: GPU buffers via WebGPU (Windows)
type Registry = memory.Registry

// Buffer is a block of device memory.
type Buffer = memory.Buffer

// Stats are allocator counters.
type Stats = memory.Stats

// Settings configure the device registry.
type Settings = config.Settings

// NewHost returns a host allocator with its own counters.
func NewHost() *Host {
	return memory.NewHost()
}

// NewRegistry returns a registry opening devices per settings.
func NewRegistry(settings Settings) *Registry {
	return memory.NewRegistry(settings)
}

// LoadSettings reads Settings from TENSORMEM_* environment variables.
func LoadSettings() (Settings, error) {
	return config.Load()
}
