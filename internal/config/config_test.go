package config

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s := must.M1(Load())
	assert.Equal(t, Default(), s)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TENSORMEM_DEVICE_BACKEND", "webgpu")
	t.Setenv("TENSORMEM_DEVICE_COUNT", "2")
	t.Setenv("TENSORMEM_POOL_CAPACITY", "8")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{DeviceBackend: BackendWebGPU, DeviceCount: 2, PoolCapacity: 8}, s)
}

func TestLoadInvalid(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		t.Setenv("TENSORMEM_DEVICE_BACKEND", "cuda")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cuda")
	})
	t.Run("count", func(t *testing.T) {
		t.Setenv("TENSORMEM_DEVICE_COUNT", "many")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("negative", func(t *testing.T) {
		t.Setenv("TENSORMEM_POOL_CAPACITY", "-1")
		_, err := Load()
		require.Error(t, err)
	})
}
