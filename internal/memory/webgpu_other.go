//go:build !windows

package memory

import "github.com/pkg/errors"

// openWebGPU fails outside windows builds: the WebGPU bindings are windows only.
func openWebGPU(id, _ int) (Device, error) {
	return nil, errors.Errorf("memory: webgpu device %d is not supported on this platform", id)
}

// WebGPUAvailable reports false outside windows builds.
func WebGPUAvailable() bool {
	return false
}
