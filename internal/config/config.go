// Package config loads process-wide settings for the tensor memory subsystem
// from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Prefix of every environment variable read by Load.
const Prefix = "TENSORMEM"

// Device backends.
const (
	BackendEmulated = "emulated"
	BackendWebGPU   = "webgpu"
)

// Settings configure the allocator backend.
type Settings struct {
	// DeviceBackend selects the device allocator: "emulated" or "webgpu".
	DeviceBackend string `envconfig:"DEVICE_BACKEND" default:"emulated"`

	// DeviceCount is the number of device ids (0..DeviceCount-1) the registry serves.
	DeviceCount int `envconfig:"DEVICE_COUNT" default:"1"`

	// PoolCapacity is the max number of released buffers kept per size category.
	PoolCapacity int `envconfig:"POOL_CAPACITY" default:"100"`
}

// Default returns the settings used when the environment is empty.
func Default() Settings {
	return Settings{
		DeviceBackend: BackendEmulated,
		DeviceCount:   1,
		PoolCapacity:  100,
	}
}

// Load reads Settings from TENSORMEM_* environment variables.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return Settings{}, errors.Wrap(err, "config: reading environment")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	switch s.DeviceBackend {
	case BackendEmulated, BackendWebGPU:
	default:
		return errors.Errorf("config: unknown device backend %q", s.DeviceBackend)
	}
	if s.DeviceCount < 0 {
		return errors.Errorf("config: device count must be >= 0, got %d", s.DeviceCount)
	}
	if s.PoolCapacity < 0 {
		return errors.Errorf("config: pool capacity must be >= 0, got %d", s.PoolCapacity)
	}
	return nil
}
