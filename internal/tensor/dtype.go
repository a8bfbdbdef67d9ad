// Package tensor provides the dtype, shape and raw byte tensor types used by peek.
package tensor

import "fmt"

// DataType represents runtime type information for tensors stored in a container.
type DataType int

// Supported data types, named after their safetensors header spelling.
const (
	Bool DataType = iota
	Uint8
	Int8
	Float8E4M3
	Float8E5M2
	Int16
	Uint16
	Float16
	BFloat16
	Int32
	Uint32
	Float32
	Float64
	Int64
	Uint64
)

var dtypeNames = [...]string{
	Bool:       "BOOL",
	Uint8:      "U8",
	Int8:       "I8",
	Float8E4M3: "F8_E4M3",
	Float8E5M2: "F8_E5M2",
	Int16:      "I16",
	Uint16:     "U16",
	Float16:    "F16",
	BFloat16:   "BF16",
	Int32:      "I32",
	Uint32:     "U32",
	Float32:    "F32",
	Float64:    "F64",
	Int64:      "I64",
	Uint64:     "U64",
}

// ParseDataType converts a safetensors dtype string ("F32", "BF16", ...) to a
// DataType. Matching is exact: the header format is case-sensitive.
func ParseDataType(s string) (DataType, error) {
	for dt, name := range dtypeNames {
		if name == s {
			return DataType(dt), nil
		}
	}
	return 0, fmt.Errorf("unknown dtype %q", s)
}

// Valid reports whether dt is one of the known data types.
func (dt DataType) Valid() bool {
	return dt >= Bool && dt <= Uint64
}

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Uint8, Int8, Float8E4M3, Float8E5M2:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns the safetensors spelling of the data type.
func (dt DataType) String() string {
	if !dt.Valid() {
		return "unknown"
	}
	return dtypeNames[dt]
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("unknown data type %d", int(dt))
	}
	return []byte(dtypeNames[dt]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// IsFloat reports whether elements are floating point.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float8E4M3, Float8E5M2, Float16, BFloat16, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether integer elements carry a sign.
func (dt DataType) IsSigned() bool {
	switch dt {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}
