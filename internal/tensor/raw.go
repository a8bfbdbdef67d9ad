package tensor

import (
	"fmt"
)

// RawTensor is a named tensor backed by little-endian, row-major bytes
// exactly as they appear in a container's data section.
type RawTensor struct {
	name   string
	shape  Shape
	stride []int
	dtype  DataType
	data   []byte
}

// NewRaw wraps data as a tensor. The byte length must match shape and dtype.
// The slice is not copied.
func NewRaw(name string, shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("tensor %s: unknown dtype %d", name, int(dtype))
	}
	want, err := ByteLen(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: invalid shape: %w", name, err)
	}
	if len(data) != want {
		return nil, fmt.Errorf("tensor %s: %d bytes for shape %v of %s (want %d)",
			name, len(data), shape, dtype, want)
	}

	return &RawTensor{
		name:   name,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		data:   data,
	}, nil
}

// Name returns the tensor's name within its container.
func (r *RawTensor) Name() string {
	return r.name
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's row-major element strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// At decodes the element at flat row-major index i.
// It panics if i is out of range, like a slice index.
func (r *RawTensor) At(i int) Value {
	if i < 0 || i >= r.NumElements() {
		panic(fmt.Sprintf("tensor %s: index %d out of range [0:%d]", r.name, i, r.NumElements()))
	}
	size := r.dtype.Size()
	return decode(r.dtype, r.data[i*size:(i+1)*size])
}

// Flatten returns every element in row-major order.
func (r *RawTensor) Flatten() []Value {
	return r.Head(r.NumElements())
}

// Head returns the first min(n, NumElements) elements of the flattened tensor.
func (r *RawTensor) Head(n int) []Value {
	n = max(0, min(n, r.NumElements()))
	out := make([]Value, n)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Float32s decodes every element to float32.
// Only floating point tensors are accepted.
func (r *RawTensor) Float32s() ([]float32, error) {
	if !r.dtype.IsFloat() {
		return nil, fmt.Errorf("tensor %s: dtype %s is not floating point", r.name, r.dtype)
	}
	out := make([]float32, r.NumElements())
	for i := range out {
		out[i] = float32(r.At(i).Float64())
	}
	return out, nil
}

// Float64s decodes every element to float64, whatever the dtype.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	for i := range out {
		out[i] = r.At(i).Float64()
	}
	return out
}
