package tensor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// decode converts one little-endian element to a Value.
func decode(dtype DataType, b []byte) Value {
	switch dtype {
	case Bool, Uint8:
		return Value{dtype: dtype, u: uint64(b[0])}
	case Int8:
		return Value{dtype: dtype, i: int64(int8(b[0]))}
	case Float8E4M3:
		return Value{dtype: dtype, f: float8E4M3ToFloat64(b[0])}
	case Float8E5M2:
		// E5M2 is the high byte of an IEEE half.
		return Value{dtype: dtype, f: float64(float16.Frombits(uint16(b[0]) << 8).Float32())}
	case Int16:
		//nolint:gosec // G115: Uint16->int16 reinterprets signed data.
		return Value{dtype: dtype, i: int64(int16(binary.LittleEndian.Uint16(b)))}
	case Uint16:
		return Value{dtype: dtype, u: uint64(binary.LittleEndian.Uint16(b))}
	case Float16:
		return Value{dtype: dtype, f: float64(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())}
	case BFloat16:
		return Value{dtype: dtype, f: float64(BFloat16ToFloat32(binary.LittleEndian.Uint16(b)))}
	case Int32:
		//nolint:gosec // G115: Uint32->int32 reinterprets signed data.
		return Value{dtype: dtype, i: int64(int32(binary.LittleEndian.Uint32(b)))}
	case Uint32:
		return Value{dtype: dtype, u: uint64(binary.LittleEndian.Uint32(b))}
	case Float32:
		return Value{dtype: dtype, f: float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))}
	case Float64:
		return Value{dtype: dtype, f: math.Float64frombits(binary.LittleEndian.Uint64(b))}
	case Int64:
		//nolint:gosec // G115: Uint64->int64 reinterprets signed data.
		return Value{dtype: dtype, i: int64(binary.LittleEndian.Uint64(b))}
	case Uint64:
		return Value{dtype: dtype, u: binary.LittleEndian.Uint64(b)}
	default:
		panic(fmt.Sprintf("decode: unknown dtype %d", int(dtype)))
	}
}

// BFloat16ToFloat32 widens a bfloat16 bit pattern; bf16 is the upper half of a float32.
func BFloat16ToFloat32(h uint16) float32 {
	return math.Float32frombits(uint32(h) << 16)
}

// Float32ToBFloat16 narrows to bfloat16 with round-to-nearest-even.
func Float32ToBFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	if math.IsNaN(float64(f)) {
		return uint16(bits>>16) | 0x40
	}
	rounding := uint32(0x7FFF) + ((bits >> 16) & 1)
	return uint16((bits + rounding) >> 16)
}

// float8E4M3ToFloat64 decodes the "fn" variant: bias 7, no infinities,
// S.1111.111 is NaN.
func float8E4M3ToFloat64(b byte) float64 {
	sign := 1.0
	if b&0x80 != 0 {
		sign = -1
	}
	exp := int((b >> 3) & 0x0F)
	mant := float64(b & 0x07)

	if exp == 0x0F && b&0x07 == 0x07 {
		return math.NaN()
	}
	if exp == 0 {
		return sign * mant / 8 * math.Pow(2, -6)
	}
	return sign * (1 + mant/8) * math.Pow(2, float64(exp-7))
}

// Number is the set of Go element types that can be encoded into a tensor.
type Number interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FromSlice encodes values as a tensor of the given dtype.
// Values are converted like a Go conversion; F8 dtypes cannot be encoded.
func FromSlice[T Number](name string, shape Shape, dtype DataType, values []T) (*RawTensor, error) {
	numel, err := shape.CheckedNumElements()
	if err != nil {
		return nil, fmt.Errorf("tensor %s: invalid shape: %w", name, err)
	}
	if numel != len(values) {
		return nil, fmt.Errorf("tensor %s: %d values for shape %v", name, len(values), shape)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("tensor %s: unknown dtype %d", name, int(dtype))
	}

	size := dtype.Size()
	data := make([]byte, len(values)*size)
	for i, v := range values {
		if err := encode(dtype, data[i*size:(i+1)*size], float64(v), int64(v), uint64(v)); err != nil {
			return nil, fmt.Errorf("tensor %s: %w", name, err)
		}
	}
	return NewRaw(name, shape, dtype, data)
}

// FromBools encodes a BOOL tensor.
func FromBools(name string, shape Shape, values []bool) (*RawTensor, error) {
	data := make([]byte, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	return NewRaw(name, shape, Bool, data)
}

func encode(dtype DataType, b []byte, f float64, i int64, u uint64) error {
	switch dtype {
	case Bool:
		if f != 0 {
			b[0] = 1
		}
	case Uint8:
		b[0] = byte(u)
	case Int8:
		b[0] = byte(i)
	case Int16:
		binary.LittleEndian.PutUint16(b, uint16(i)) //nolint:gosec // G115: two's complement encoding.
	case Uint16:
		binary.LittleEndian.PutUint16(b, uint16(u))
	case Float16:
		binary.LittleEndian.PutUint16(b, float16.Fromfloat32(float32(f)).Bits())
	case BFloat16:
		binary.LittleEndian.PutUint16(b, Float32ToBFloat16(float32(f)))
	case Int32:
		binary.LittleEndian.PutUint32(b, uint32(i)) //nolint:gosec // G115: two's complement encoding.
	case Uint32:
		binary.LittleEndian.PutUint32(b, uint32(u))
	case Float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
	case Float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	case Int64:
		binary.LittleEndian.PutUint64(b, uint64(i)) //nolint:gosec // G115: two's complement encoding.
	case Uint64:
		binary.LittleEndian.PutUint64(b, u)
	default:
		return fmt.Errorf("encoding %s is not supported", dtype)
	}
	return nil
}
