package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/peek/internal/tensor"
)

// goString matches fmt's %v of the natural Go slice for the dtype:
// float32 for narrow floats, float64 for F64, int64/uint64 for integers.
func goString(dtype tensor.DataType, values []tensor.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch {
		case dtype == tensor.Bool:
			parts[i] = fmt.Sprint(v.Bool())
		case dtype == tensor.Float64:
			parts[i] = fmt.Sprint(v.Float64())
		case dtype.IsFloat():
			parts[i] = fmt.Sprint(float32(v.Float64()))
		case dtype.IsSigned():
			parts[i] = fmt.Sprint(v.Int64())
		default:
			parts[i] = fmt.Sprint(v.Uint64())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// jsonArray emits a JSON array. NaN and infinities, which JSON cannot
// carry, become the strings "NaN", "+Inf" and "-Inf".
func jsonArray(values []tensor.Value) (string, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		dt := v.DType()
		switch {
		case dt == tensor.Bool:
			out[i] = v.Bool()
		case dt.IsFloat():
			x := v.Float64()
			switch {
			case math.IsNaN(x):
				out[i] = "NaN"
			case math.IsInf(x, 1):
				out[i] = "+Inf"
			case math.IsInf(x, -1):
				out[i] = "-Inf"
			case dt == tensor.Float64:
				out[i] = x
			default:
				// float32 keeps the shortest digits of the stored value.
				out[i] = json.Number(fmt.Sprint(float32(x)))
			}
		case dt.IsSigned():
			out[i] = v.Int64()
		default:
			out[i] = v.Uint64()
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal values: %w", err)
	}
	return string(data), nil
}
