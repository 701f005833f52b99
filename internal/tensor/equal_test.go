package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func float32Tensor(t *testing.T, dims []int, values ...float32) *Tensor {
	t.Helper()
	raw := make([]byte, 4*len(values))
	x := Wrap(raw, HostConfig(Float32, dims...), HostMemory)
	copy(x.AsFloat32(), values)
	return x
}

func TestCompareFloat32(t *testing.T) {
	next := math.Nextafter32(1, 2)
	tests := []struct {
		name string
		a, b []float32
		want Result
	}{
		{"identical", []float32{1, 2, 3, 4}, []float32{1, 2, 3, 4}, Equal},
		{"one ulp", []float32{1, 2, 3, 4}, []float32{next, 2, 3, 4}, Equal},
		{"large difference", []float32{1, 2, 3, 4}, []float32{1.5, 2, 3, 4}, NotEqual},
		{"negative zero", []float32{0, 1}, []float32{float32(math.Copysign(0, -1)), 1}, Equal},
		// Within a few ulps, but the absolute difference exceeds epsilon.
		{"large magnitude", []float32{1000}, []float32{math.Nextafter32(1000, 2000)}, NotEqual},
		// Within epsilon, but across zero the values are far apart in ulps.
		{"tiny opposite signs", []float32{1e-30}, []float32{-1e-30}, NotEqual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := []int{len(tt.a)}
			a, b := float32Tensor(t, dims, tt.a...), float32Tensor(t, dims, tt.b...)
			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, tt.want, Compare(b, a), "symmetric")
			assert.Equal(t, Equal, a.Equal(a), "reflexive")
		})
	}
}

func TestCompareShapes(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}
	a := float32Tensor(t, []int{2, 3}, values...)
	b := float32Tensor(t, []int{3, 2}, values...)
	c := float32Tensor(t, []int{6}, values...)
	assert.Equal(t, NotEqual, Compare(a, b))
	assert.Equal(t, NotEqual, Compare(a, c))
	assert.Equal(t, Equal, Compare(a, float32Tensor(t, []int{2, 3}, values...)))
}

func TestCompareDataTypes(t *testing.T) {
	a := float32Tensor(t, []int{2}, 1, 2)
	b := Wrap(make([]byte, 16), HostConfig(Float64, 2), 0)
	assert.Equal(t, Incomparable, Compare(a, b))
	assert.Equal(t, -1, Compare(a, b).Code())

	i1 := Wrap(make([]byte, 8), HostConfig(Int32, 2), 0)
	i2 := Wrap(make([]byte, 8), HostConfig(Int32, 2), 0)
	assert.Panics(t, func() { Compare(i1, i2) }, "only float32 is supported")
}

func TestCompareRejectsViewsAndDevices(t *testing.T) {
	host, reg := testBackends(t)
	base := NewWith(host, reg, HostConfig(Float32, 4, 4), 0)
	defer base.Free()
	v := NewView(base, Dims{}, MakeDims(4, 4))
	assert.Panics(t, func() { Compare(v.Desc(), base) })
	assert.Panics(t, func() { Compare(base, v.Desc()) })

	dev := NewWith(host, reg, DeviceConfig(0, Float32, 4, 4), 0)
	defer dev.Free()
	assert.Panics(t, func() { Compare(dev, dev) })
}

func TestCompareBridged(t *testing.T) {
	host, reg := testBackends(t)
	a := NewWith(host, reg, HostConfig(Float32, 3, 8, 4), 0)
	b := NewWith(host, reg, HostConfig(Float32, 3, 8, 4), 0)
	defer a.Free()
	defer b.Free()
	fill(a)
	fill(b)

	assert.Equal(t, Equal, Compare(a, b))
	assert.Equal(t, 0, Compare(a, b).Code())

	b.AsFloat32()[50] += 0.5
	assert.Equal(t, NotEqual, Compare(a, b))

	flat := NewWith(host, reg, HostConfig(Float32, 96), 0)
	defer flat.Free()
	assert.Equal(t, Incomparable, Compare(a, flat))

	u8 := NewWith(host, reg, HostConfig(Uint8, 3, 8, 4), 0)
	defer u8.Free()
	assert.Equal(t, Incomparable, Compare(a, u8))

	gray := NewWith(host, reg, HostConfig(Float32, 1, 8, 4), 0)
	defer gray.Free()
	assert.Equal(t, Incomparable, Compare(a, gray), "channel counts differ")
}

func TestCompareBridgedPaddedRows(t *testing.T) {
	host, reg := testBackends(t)
	// 3x3 single channel uint8: rows are 3 bytes, step 4.
	a := NewWith(host, reg, HostConfig(Uint8, 1, 3, 3), 0)
	b := NewWith(host, reg, HostConfig(Uint8, 1, 3, 3), 0)
	defer a.Free()
	defer b.Free()
	for y := range 3 {
		for x := range 3 {
			a.Data()[y*4+x] = uint8(3*y + x + 1)
			b.Data()[y*4+x] = uint8(3*y + x + 1)
		}
	}
	require.Equal(t, Equal, Compare(a, b))

	// Padding is not part of the matrix.
	b.Data()[3] = 200
	assert.Equal(t, Equal, Compare(a, b))

	// Element 3 is the first of row 1.
	b.Data()[4] = 200
	assert.Equal(t, NotEqual, Compare(a, b))
	assert.Equal(t, NotEqual, Compare(b, a))

	b.Data()[4] = a.Data()[4]
	b.Data()[10] = 0
	assert.Equal(t, NotEqual, Compare(a, b), "last element")
}

func TestCompareBridgedFloat16(t *testing.T) {
	host, reg := testBackends(t)
	// Rows of 3 half floats are 6 bytes, step 8.
	a := NewWith(host, reg, HostConfig(Float16, 1, 3, 2), 0)
	b := NewWith(host, reg, HostConfig(Float16, 1, 3, 2), 0)
	defer a.Free()
	defer b.Free()
	require.Equal(t, 8, a.Config().Step)
	require.Len(t, a.AsFloat16(), 8)

	b.AsFloat16()[4] = float16.Fromfloat32(1)
	assert.Equal(t, NotEqual, Compare(a, b), "first element of row 1")
	b.AsFloat16()[4] = 0
	b.AsFloat16()[3] = float16.Fromfloat32(1)
	assert.Equal(t, Equal, Compare(a, b), "padding")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "equal", Equal.String())
	assert.Equal(t, "not-equal", NotEqual.String())
	assert.Equal(t, "incomparable", Incomparable.String())
	assert.Equal(t, -1, NotEqual.Code())
}
