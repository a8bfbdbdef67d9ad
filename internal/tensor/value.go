package tensor

import "math"

// Value is a single decoded tensor element.
// Floats are widened to float64, integers keep their full width.
type Value struct {
	dtype DataType
	f     float64
	i     int64
	u     uint64
}

// DType returns the element's source data type.
func (v Value) DType() DataType {
	return v.dtype
}

// Float64 returns the element as float64. Bool maps to 0 or 1.
func (v Value) Float64() float64 {
	switch {
	case v.dtype.IsFloat():
		return v.f
	case v.dtype.IsSigned():
		return float64(v.i)
	default:
		return float64(v.u)
	}
}

// Int64 returns the element as int64, truncating floats toward zero.
func (v Value) Int64() int64 {
	switch {
	case v.dtype.IsFloat():
		return int64(v.f)
	case v.dtype.IsSigned():
		return v.i
	default:
		return int64(v.u) //nolint:gosec // G115: wraps like a C cast, as expected for U64 dumps.
	}
}

// Uint64 returns the element as uint64 for unsigned and bool dtypes.
func (v Value) Uint64() uint64 {
	return v.u
}

// Bool reports whether the element is non-zero.
func (v Value) Bool() bool {
	return v.Float64() != 0
}

// IsNaN reports whether a floating point element is NaN.
func (v Value) IsNaN() bool {
	return v.dtype.IsFloat() && math.IsNaN(v.f)
}

// IsInf reports whether a floating point element is infinite.
func (v Value) IsInf() bool {
	return v.dtype.IsFloat() && math.IsInf(v.f, 0)
}

// FloatValue builds a floating point Value, mostly for tests and encoders.
func FloatValue(dtype DataType, f float64) Value {
	return Value{dtype: dtype, f: f}
}

// IntValue builds a signed integer Value.
func IntValue(dtype DataType, i int64) Value {
	return Value{dtype: dtype, i: i}
}

// UintValue builds an unsigned integer or bool Value.
func UintValue(dtype DataType, u uint64) Value {
	return Value{dtype: dtype, u: u}
}
