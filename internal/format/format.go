// Package format renders flattened tensor values the way a given array
// framework prints them.
//
// The framework tag picks the representation:
//
//	pt    tensor([-1.0000, -0.7500, ...])   torch repr, the default
//	np    [-1.   -0.75 ...]                  numpy str()
//	go    [-1 -0.75 ...]                     fmt %v of the Go slice
//	json  [-1,-0.75,...]                     JSON array
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/peek/internal/tensor"
)

// Framework selects the textual representation of a value slice.
type Framework string

const (
	PyTorch Framework = "pt"
	NumPy   Framework = "np"
	Go      Framework = "go"
	JSON    Framework = "json"
)

// Frameworks lists every supported tag.
var Frameworks = []Framework{PyTorch, NumPy, Go, JSON}

// ParseFramework accepts a tag (pt, np, go, json) or a common alias.
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(s) {
	case "pt", "torch", "pytorch", "":
		return PyTorch, nil
	case "np", "numpy":
		return NumPy, nil
	case "go", "golang":
		return Go, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("unknown framework %q (expected pt, np, go or json)", s)
	}
}

// Sprint renders values, which all have the given dtype, as a 1-D array.
// The result has no trailing newline.
func Sprint(fw Framework, dtype tensor.DataType, values []tensor.Value) (string, error) {
	switch fw {
	case PyTorch:
		return torchRepr(dtype, values), nil
	case NumPy:
		return numpyStr(dtype, values), nil
	case Go:
		return goString(dtype, values), nil
	case JSON:
		return jsonArray(values)
	default:
		return "", fmt.Errorf("unknown framework %q", fw)
	}
}

// nonFinite spells NaN and infinities the way Python does.
func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	default:
		return "", false
	}
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
