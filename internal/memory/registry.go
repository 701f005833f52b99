package memory

import (
	"sort"
	"sync"

	"github.com/born-ml/tensormem/internal/config"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Registry maps device ids to device allocators. Devices not registered
// explicitly are opened lazily according to the settings.
type Registry struct {
	settings config.Settings

	mu      sync.Mutex
	devices map[int]Device
}

// NewRegistry creates an empty registry.
func NewRegistry(settings config.Settings) *Registry {
	return &Registry{
		settings: settings,
		devices:  make(map[int]Device),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, configured from the
// environment on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		settings, err := config.Load()
		if err != nil {
			klog.Warningf("memory: %v, using default settings", err)
			settings = config.Default()
		}
		defaultRegistry = NewRegistry(settings)
	})
	return defaultRegistry
}

// Register installs dev under its id. Registering an id twice is an error.
func (r *Registry) Register(dev Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.devices[dev.ID()]; found {
		return errors.Errorf("memory: device %d already registered", dev.ID())
	}
	r.devices[dev.ID()] = dev
	return nil
}

// Get returns the device for id, opening it if needed.
func (r *Registry) Get(id int) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dev, found := r.devices[id]; found {
		return dev, nil
	}
	if id < 0 || id >= r.settings.DeviceCount {
		return nil, errors.Errorf("memory: device id %d out of range [0, %d)", id, r.settings.DeviceCount)
	}
	dev, err := r.open(id)
	if err != nil {
		return nil, err
	}
	r.devices[id] = dev
	klog.V(1).Infof("memory: opened device %s", dev.Name())
	return dev, nil
}

func (r *Registry) open(id int) (Device, error) {
	switch r.settings.DeviceBackend {
	case config.BackendWebGPU:
		dev, err := openWebGPU(id, r.settings.PoolCapacity)
		if err == nil {
			return dev, nil
		}
		klog.Warningf("memory: %v, falling back to emulated device %d", err, id)
		return NewEmulatedDevice(id, r.settings.PoolCapacity), nil
	case config.BackendEmulated:
		return NewEmulatedDevice(id, r.settings.PoolCapacity), nil
	}
	return nil, errors.Errorf("memory: unknown device backend %q", r.settings.DeviceBackend)
}

// IDs returns the ids of the opened devices, sorted.
func (r *Registry) IDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Close closes every opened device and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for id, dev := range r.devices {
		if err := dev.Close(); err != nil {
			klog.Warningf("memory: closing device %s: %v", dev.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(r.devices, id)
	}
	return firstErr
}
