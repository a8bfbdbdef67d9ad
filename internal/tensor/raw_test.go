package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw_SizeMismatch(t *testing.T) {
	_, err := NewRaw("w", Shape{2, 3}, Float32, make([]byte, 20))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 24")
}

func TestNewRaw_NegativeDim(t *testing.T) {
	_, err := NewRaw("w", Shape{2, -1}, Float32, nil)
	require.Error(t, err)
}

func TestRawTensor_FlattenRowMajor(t *testing.T) {
	raw, err := FromSlice("w", Shape{2, 3}, Float32, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1}, raw.Strides())
	assert.Equal(t, 24, raw.ByteSize())

	got := raw.Float64s()
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
}

func TestRawTensor_Head(t *testing.T) {
	values := make([]float32, 32)
	for i := range values {
		values[i] = float32(i) * 0.5
	}
	raw, err := FromSlice("_conv_stem", Shape{2, 4, 4}, Float32, values)
	require.NoError(t, err)

	head := raw.Head(10)
	require.Len(t, head, 10)
	for i, v := range head {
		assert.InDelta(t, float64(i)*0.5, v.Float64(), 1e-9)
		assert.Equal(t, Float32, v.DType())
	}

	assert.Len(t, raw.Head(100), 32, "head is clamped to the element count")
	assert.Empty(t, raw.Head(-1))
}

func TestRawTensor_AtPanicsOutOfRange(t *testing.T) {
	raw, err := FromSlice("b", Shape{3}, Float32, []float32{1, 2, 3})
	require.NoError(t, err)

	assert.Panics(t, func() { raw.At(3) })
	assert.NotPanics(t, func() { raw.At(2) })
}

func TestRawTensor_Scalar(t *testing.T) {
	raw, err := FromSlice("s", Shape{}, Float64, []float64{math.Pi})
	require.NoError(t, err)
	assert.Equal(t, 1, raw.NumElements())
	assert.Equal(t, math.Pi, raw.At(0).Float64())
}

func TestRawTensor_Empty(t *testing.T) {
	raw, err := NewRaw("e", Shape{0, 4}, Float32, []byte{})
	require.NoError(t, err)
	assert.Equal(t, 0, raw.NumElements())
	assert.Empty(t, raw.Flatten())
}

func TestRawTensor_Float32s(t *testing.T) {
	raw, err := FromSlice("h", Shape{3}, Float16, []float32{0.5, -2, 1024})
	require.NoError(t, err)

	got, err := raw.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -2, 1024}, got)

	ints, err := FromSlice("i", Shape{2}, Int32, []int32{1, 2})
	require.NoError(t, err)
	_, err = ints.Float32s()
	assert.Error(t, err)
}

func TestDecode_Integers(t *testing.T) {
	tests := []struct {
		name  string
		dtype DataType
		in    []int64
	}{
		{"int8", Int8, []int64{-128, -1, 0, 127}},
		{"int16", Int16, []int64{-32768, -2, 7, 32767}},
		{"int32", Int32, []int64{math.MinInt32, -3, 0, math.MaxInt32}},
		{"int64", Int64, []int64{math.MinInt64, -4, 1, math.MaxInt64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := FromSlice("x", Shape{len(tt.in)}, tt.dtype, tt.in)
			require.NoError(t, err)
			for i, want := range tt.in {
				assert.Equal(t, want, raw.At(i).Int64())
			}
		})
	}
}

func TestDecode_Unsigned(t *testing.T) {
	raw, err := FromSlice("u", Shape{3}, Uint64, []uint64{0, 42, math.MaxUint64})
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), raw.At(2).Uint64())

	u8, err := FromSlice("u8", Shape{2}, Uint8, []uint8{0, 255})
	require.NoError(t, err)
	assert.Equal(t, 255.0, u8.At(1).Float64())
}

func TestDecode_Bool(t *testing.T) {
	raw, err := FromBools("mask", Shape{3}, []bool{true, false, true})
	require.NoError(t, err)
	assert.True(t, raw.At(0).Bool())
	assert.False(t, raw.At(1).Bool())
	assert.Equal(t, []byte{1, 0, 1}, raw.Data())
}

func TestDecode_BFloat16(t *testing.T) {
	raw, err := FromSlice("bf", Shape{4}, BFloat16, []float32{1, -0.5, 3.140625, 65536})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -0.5, 3.140625, 65536}, raw.Float64s())

	assert.Equal(t, uint16(0x3F80), Float32ToBFloat16(1))
	assert.Equal(t, float32(1), BFloat16ToFloat32(0x3F80))
	assert.True(t, math.IsNaN(float64(BFloat16ToFloat32(Float32ToBFloat16(float32(math.NaN()))))))
}

func TestDecode_Float8(t *testing.T) {
	// E4M3: 0x38 = 1.0, 0xC0 = -2.0, 0x7F = NaN, 0x01 = smallest subnormal.
	e4, err := NewRaw("e4", Shape{4}, Float8E4M3, []byte{0x38, 0xC0, 0x7F, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 1.0, e4.At(0).Float64())
	assert.Equal(t, -2.0, e4.At(1).Float64())
	assert.True(t, e4.At(2).IsNaN())
	assert.Equal(t, math.Pow(2, -9), e4.At(3).Float64())

	// E5M2: 0x3C = 1.0, 0x7C = +Inf.
	e5, err := NewRaw("e5", Shape{2}, Float8E5M2, []byte{0x3C, 0x7C})
	require.NoError(t, err)
	assert.Equal(t, 1.0, e5.At(0).Float64())
	assert.True(t, e5.At(1).IsInf())

	_, err = FromSlice("e4", Shape{1}, Float8E4M3, []float32{1})
	assert.Error(t, err, "F8 encoding is not supported")
}

func TestFromSlice_CountMismatch(t *testing.T) {
	_, err := FromSlice("w", Shape{2, 2}, Float32, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestByteLen_Overflow(t *testing.T) {
	n, err := ByteLen(Shape{2, 3}, Float32)
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	_, err = ByteLen(Shape{1<<62 + 1}, Float32)
	assert.ErrorIs(t, err, ErrSizeOverflow, "numel*4 would wrap to 4")

	_, err = Shape{1 << 32, 1 << 32}.CheckedNumElements()
	assert.ErrorIs(t, err, ErrSizeOverflow, "product would wrap to 0")

	n, err = Shape{1 << 40, 0}.CheckedNumElements()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Shape{-1}.CheckedNumElements()
	assert.Error(t, err)

	_, err = NewRaw("w", Shape{1<<62 + 1}, Float32, make([]byte, 4))
	assert.ErrorIs(t, err, ErrSizeOverflow)
}
