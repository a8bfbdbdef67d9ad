package tensor

import (
	"errors"
	"fmt"
	"math"
)

// ErrSizeOverflow reports a shape whose element or byte count does not fit in an int.
var ErrSizeOverflow = errors.New("tensor size overflows int")

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A scalar (empty shape) has one element; any zero dimension makes it empty.
// The product is unchecked; use CheckedNumElements on untrusted shapes.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// CheckedNumElements is NumElements with overflow detection. Negative
// dimensions are rejected as well.
func (s Shape) CheckedNumElements() (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	n := 1
	for _, dim := range s {
		if dim != 0 && n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: shape %v", ErrSizeOverflow, s)
		}
		n *= dim
	}
	return n, nil
}

// ByteLen returns the byte length of a tensor of this shape and dtype,
// failing instead of wrapping when it does not fit in an int.
func ByteLen(shape Shape, dtype DataType) (int, error) {
	if !dtype.Valid() {
		return 0, fmt.Errorf("unknown dtype %d", int(dtype))
	}
	n, err := shape.CheckedNumElements()
	if err != nil {
		return 0, err
	}
	size := dtype.Size()
	if n > math.MaxInt/size {
		return 0, fmt.Errorf("%w: shape %v of %s", ErrSizeOverflow, shape, dtype)
	}
	return n * size, nil
}

// Validate checks that no dimension is negative.
// Zero-sized dimensions are legal in a container.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Unravel converts a flat row-major index into per-dimension coordinates.
func (s Shape) Unravel(index int) []int {
	coords := make([]int, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 0 {
			return coords
		}
		coords[i] = index % s[i]
		index /= s[i]
	}
	return coords
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	if len(s) == 1 {
		return fmt.Sprintf("(%d,)", s[0])
	}
	out := "("
	for i, dim := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(dim)
	}
	return out + ")"
}
