package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/peek/internal/tensor"
)

// torch print options
const (
	torchPrecision = 4
	torchLineWidth = 80
	torchPrefix    = "tensor("
)

var torchDTypes = map[tensor.DataType]string{
	tensor.Bool:       "torch.bool",
	tensor.Uint8:      "torch.uint8",
	tensor.Int8:       "torch.int8",
	tensor.Float8E4M3: "torch.float8_e4m3fn",
	tensor.Float8E5M2: "torch.float8_e5m2",
	tensor.Int16:      "torch.int16",
	tensor.Uint16:     "torch.uint16",
	tensor.Float16:    "torch.float16",
	tensor.BFloat16:   "torch.bfloat16",
	tensor.Int32:      "torch.int32",
	tensor.Uint32:     "torch.uint32",
	tensor.Float32:    "torch.float32",
	tensor.Float64:    "torch.float64",
	tensor.Int64:      "torch.int64",
	tensor.Uint64:     "torch.uint64",
}

// torchFormatter picks one element layout for the whole slice, like
// torch's _Formatter: integral floats print as "1.", wide ranges switch to
// scientific notation, everything is right aligned to a common width.
type torchFormatter struct {
	floating bool
	intMode  bool
	sciMode  bool
	maxWidth int
}

func newTorchFormatter(dtype tensor.DataType, values []tensor.Value) *torchFormatter {
	f := &torchFormatter{floating: dtype.IsFloat(), intMode: true, maxWidth: 1}

	if !f.floating {
		for _, v := range values {
			f.maxWidth = max(f.maxWidth, len(pyStr(v)))
		}
		return f
	}

	var nonzero []float64
	for _, v := range values {
		x := v.Float64()
		if !math.IsNaN(x) && !math.IsInf(x, 0) && x != 0 {
			nonzero = append(nonzero, x)
		}
	}
	if len(nonzero) == 0 {
		return f
	}

	minAbs, maxAbs := math.Inf(1), 0.0
	for _, x := range nonzero {
		minAbs = math.Min(minAbs, math.Abs(x))
		maxAbs = math.Max(maxAbs, math.Abs(x))
		if x != math.Ceil(x) {
			f.intMode = false
		}
	}

	wide := maxAbs/minAbs > 1000 || maxAbs > 1e8
	if !f.intMode {
		wide = wide || minAbs < 1e-4
	}
	f.sciMode = wide

	for _, x := range nonzero {
		var s string
		switch {
		case f.sciMode:
			s = pyExp(x, torchPrecision)
		case f.intMode:
			s = strconv.FormatFloat(x, 'f', 0, 64) + "."
		default:
			s = strconv.FormatFloat(x, 'f', torchPrecision, 64)
		}
		f.maxWidth = max(f.maxWidth, len(s))
	}
	return f
}

func (f *torchFormatter) format(v tensor.Value) string {
	if !f.floating {
		return padLeft(pyStr(v), f.maxWidth)
	}

	x := v.Float64()
	var s string
	if nf, ok := nonFinite(x); ok {
		s = nf
	} else {
		switch {
		case f.sciMode:
			s = pyExp(x, torchPrecision)
		case f.intMode:
			s = strconv.FormatFloat(x, 'f', 0, 64) + "."
		default:
			s = strconv.FormatFloat(x, 'f', torchPrecision, 64)
		}
	}
	return padLeft(s, f.maxWidth)
}

// pyStr prints a non-floating element like Python's str().
func pyStr(v tensor.Value) string {
	switch dt := v.DType(); {
	case dt == tensor.Bool:
		if v.Bool() {
			return "True"
		}
		return "False"
	case dt.IsSigned():
		return strconv.FormatInt(v.Int64(), 10)
	default:
		return strconv.FormatUint(v.Uint64(), 10)
	}
}

// pyExp formats like Python's "{:.Ne}": two-digit minimum exponent.
func pyExp(x float64, prec int) string {
	return strconv.FormatFloat(x, 'e', prec, 64)
}

// torchRepr renders a 1-D tensor repr, e.g. tensor([0.1000, 0.2000]).
func torchRepr(dtype tensor.DataType, values []tensor.Value) string {
	var b strings.Builder
	b.WriteString(torchPrefix)

	if len(values) == 0 {
		b.WriteString("[]")
	} else {
		f := newTorchFormatter(dtype, values)
		indent := len(torchPrefix)
		perLine := max(1, (torchLineWidth-indent)/(f.maxWidth+2))

		b.WriteByte('[')
		for i, v := range values {
			if i > 0 {
				if i%perLine == 0 {
					b.WriteString(",\n")
					b.WriteString(strings.Repeat(" ", indent+1))
				} else {
					b.WriteString(", ")
				}
			}
			b.WriteString(f.format(v))
		}
		b.WriteByte(']')
	}

	// float32, int64 and bool are torch's defaults and carry no suffix.
	switch dtype {
	case tensor.Float32, tensor.Int64, tensor.Bool:
	default:
		fmt.Fprintf(&b, ", dtype=%s", torchDTypes[dtype])
	}
	b.WriteByte(')')
	return b.String()
}
