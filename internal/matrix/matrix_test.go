package matrix

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name string
		cols int
		typ  uint32
		want int
	}{
		{"f32 c3 cols8", 8, F32 | 3, 96},
		{"f32 c1 cols5", 5, F32 | 1, 20},
		{"u8 c3 cols5", 5, U8 | 3, 16},
		{"u8 c1 cols1", 1, U8 | 1, 4},
		{"f64 c2 cols3", 3, F64 | 2, 48},
		{"f16 c1 cols3", 3, F16 | 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Step(tt.cols, tt.typ))
		})
	}
}

func TestTypeFields(t *testing.T) {
	typ := Unmanaged | Dense | F32 | 3
	assert.Equal(t, 3, Channel(typ))
	assert.Equal(t, F32, DataType(typ))
	assert.Equal(t, 4, DataTypeSize(typ))
	assert.Panics(t, func() { DataTypeSize(0x40000) })
}

func TestOrderedBits32(t *testing.T) {
	// Ordering of mapped integers follows float ordering across zero.
	values := []float32{-2, -1, -1e-30, 0, 1e-30, 1, 2}
	for i := 1; i < len(values); i++ {
		prev := OrderedBits32(math.Float32bits(values[i-1]))
		cur := OrderedBits32(math.Float32bits(values[i]))
		assert.Less(t, prev, cur, "%g vs %g", values[i-1], values[i])
	}
	assert.Equal(t, int64(0), OrderedBits32(math.Float32bits(float32(math.Copysign(0, -1)))))
}

func TestClose32(t *testing.T) {
	assert.True(t, Close32(1, 1))
	assert.True(t, Close32(1, math.Nextafter32(1, 2)))
	assert.False(t, Close32(1, 2))
	// Within epsilon but far apart in ULPs.
	assert.False(t, Close32(1e-30, -1e-30))
	// Within ULPs near 1 but beyond epsilon.
	assert.False(t, Close32(1, 1.000015))
}

func f32Header(rows, cols, ch int, values []float32) Header {
	typ := Unmanaged | Dense | F32 | uint32(ch)
	step := Step(cols, typ)
	data := make([]byte, rows*step)
	for i, v := range values {
		row, col := i/(cols*ch), i%(cols*ch)
		binary.NativeEndian.PutUint32(data[row*step+col*4:], math.Float32bits(v))
	}
	return Header{Type: typ, Rows: rows, Cols: cols, Step: step, Data: data}
}

func TestEq(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}
	a := f32Header(2, 3, 1, values)
	b := f32Header(2, 3, 1, values)
	assert.Equal(t, 0, Eq(a, b))
	assert.Equal(t, 0, Eq(b, a))

	other := append([]float32(nil), values...)
	other[4] = 50
	assert.Equal(t, -1, Eq(a, f32Header(2, 3, 1, other)))

	assert.Equal(t, -1, Eq(a, f32Header(3, 2, 1, values)), "rows/cols mismatch")
	assert.Equal(t, -1, Eq(a, f32Header(2, 1, 3, values)), "channel mismatch")
}

func TestEqPaddedRows(t *testing.T) {
	// 5 cols of 3 channels u8 = 15 bytes per row, step 16: padding must be ignored.
	typ := Unmanaged | Dense | U8 | 3
	step := Step(5, typ)
	require.Equal(t, 16, step)
	a := Header{Type: typ, Rows: 2, Cols: 5, Step: step, Data: make([]byte, 2*step)}
	b := Header{Type: typ, Rows: 2, Cols: 5, Step: step, Data: make([]byte, 2*step)}
	a.Data[15] = 7
	b.Data[15] = 9
	assert.Equal(t, 0, Eq(a, b))
	b.Data[16] = 1
	assert.Equal(t, -1, Eq(a, b))
}

func TestEqShortBuffer(t *testing.T) {
	a := f32Header(2, 3, 1, nil)
	short := a
	short.Data = a.Data[:10]
	assert.Panics(t, func() { Eq(a, short) })
}
