package safetensors

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/peek/internal/tensor"
)

func TestWriteTo_Layout(t *testing.T) {
	b, err := tensor.FromSlice("b", tensor.Shape{2}, tensor.Int64, []int64{-1, 7})
	require.NoError(t, err)
	a, err := tensor.FromSlice("a", tensor.Shape{1, 3}, tensor.BFloat16, []float32{1, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := WriteTo(&buf, []*tensor.RawTensor{b, a}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	raw := buf.Bytes()
	headerSize := binary.LittleEndian.Uint64(raw[:8])
	assert.Zero(t, headerSize%8, "header padded to 8-byte alignment")

	var header map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw[8:8+headerSize], &header))
	assert.NotContains(t, header, metadataKey, "empty metadata is omitted")

	// Alphabetical order: a occupies [0,6), b occupies [6,22).
	assert.Equal(t, []interface{}{0.0, 6.0}, header["a"]["data_offsets"])
	assert.Equal(t, []interface{}{6.0, 22.0}, header["b"]["data_offsets"])
	assert.Equal(t, "BF16", header["a"]["dtype"])
	assert.Equal(t, uint64(len(raw)), 8+headerSize+22)
}

func TestWrite_RoundTrip(t *testing.T) {
	scalar, err := tensor.FromSlice("step", tensor.Shape{}, tensor.Int32, []int32{42})
	require.NoError(t, err)
	empty, err := tensor.NewRaw("empty", tensor.Shape{0}, tensor.Float64, []byte{})
	require.NoError(t, err)
	u16, err := tensor.FromSlice("ids", tensor.Shape{3}, tensor.Uint16, []uint16{1, 65535, 3})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rt.safetensors")
	meta := map[string]string{"format": "np", "source": "unit-test"}
	require.NoError(t, Write(path, []*tensor.RawTensor{scalar, empty, u16}, meta))

	err = WithFile(path, func(f *File) error {
		assert.Equal(t, meta, f.Metadata())

		step, err := f.Tensor("step")
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{}, step.Shape())
		assert.Equal(t, int64(42), step.At(0).Int64())

		e, err := f.Tensor("empty")
		require.NoError(t, err)
		assert.Zero(t, e.NumElements())

		ids, err := f.Tensor("ids")
		require.NoError(t, err)
		assert.Equal(t, uint64(65535), ids.At(1).Uint64())
		return nil
	})
	require.NoError(t, err)
}

func TestWrite_Errors(t *testing.T) {
	a1, err := tensor.FromSlice("a", tensor.Shape{1}, tensor.Float32, []float32{1})
	require.NoError(t, err)
	a2, err := tensor.FromSlice("a", tensor.Shape{1}, tensor.Float32, []float32{2})
	require.NoError(t, err)
	reserved, err := tensor.FromSlice(metadataKey, tensor.Shape{1}, tensor.Float32, []float32{3})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dup.safetensors")
	err = Write(path, []*tensor.RawTensor{a1, a2}, nil)
	assert.ErrorContains(t, err, "duplicate")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "partial file removed")

	_, err = WriteTo(&bytes.Buffer{}, []*tensor.RawTensor{reserved}, nil)
	assert.ErrorContains(t, err, "reserved")
}
