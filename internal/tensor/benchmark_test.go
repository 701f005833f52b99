package tensor

import (
	"fmt"
	"testing"

	"github.com/born-ml/tensormem/internal/config"
	"github.com/born-ml/tensormem/internal/memory"
)

func BenchmarkTensorCreation(b *testing.B) {
	host := memory.NewHost()
	reg := memory.NewRegistry(config.Default())
	defer reg.Close()

	b.Run("Host", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NewWith(host, reg, HostConfig(Float32, 100, 100), 0).Free()
		}
	})

	b.Run("Device", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NewWith(host, reg, DeviceConfig(0, Float32, 100, 100), 0).Free()
		}
	})

	b.Run("WrapInline", func(b *testing.B) {
		raw := make([]byte, 100*100*4)
		for i := 0; i < b.N; i++ {
			_ = WrapInline(raw, HostConfig(Float32, 100, 100), 0)
		}
	})
}

func BenchmarkZero(b *testing.B) {
	host := memory.NewHost()
	reg := memory.NewRegistry(config.Default())
	defer reg.Close()

	for _, size := range []int{16, 256, 1024} {
		base := NewWith(host, reg, HostConfig(Float32, size, size), 0)

		b.Run(fmt.Sprintf("Dense_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				base.Zero()
			}
		})

		v := NewView(base, MakeDims(1, 1), MakeDims(size-2, size-2))
		b.Run(fmt.Sprintf("View_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				v.Zero()
			}
		})
		v.Free()
		base.Free()
	}
}

func BenchmarkCompare(b *testing.B) {
	host := memory.NewHost()
	reg := memory.NewRegistry(config.Default())
	defer reg.Close()

	x := NewWith(host, reg, HostConfig(Float32, 256, 256), 0)
	y := NewWith(host, reg, HostConfig(Float32, 256, 256), 0)
	defer x.Free()
	defer y.Free()

	for i := 0; i < b.N; i++ {
		_ = Compare(x, y)
	}
}
