package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/peek/internal/tensor"
)

// numpy print options
const (
	numpyPrecision = 8
	numpyLineWidth = 75
)

// numpyStr renders like print(ndarray): space separated, decimal points
// aligned, shortest digits up to eight fractional places.
func numpyStr(dtype tensor.DataType, values []tensor.Value) string {
	var words []string
	switch {
	case len(values) == 0:
		return "[]"
	case dtype == tensor.Bool:
		words = make([]string, len(values))
		for i, v := range values {
			words[i] = padLeft(pyStr(v), 5)
		}
	case dtype.IsFloat():
		words = numpyFloats(dtype, values)
	default:
		words = make([]string, len(values))
		width := 0
		for i, v := range values {
			words[i] = pyStr(v)
			width = max(width, len(words[i]))
		}
		for i := range words {
			words[i] = padLeft(words[i], width)
		}
	}
	return wrapWords(words, " ", numpyLineWidth)
}

// floatBits is the precision shortest-repr digits are computed at.
func floatBits(dtype tensor.DataType) int {
	if dtype == tensor.Float64 {
		return 64
	}
	return 32
}

func numpyFloats(dtype tensor.DataType, values []tensor.Value) []string {
	bits := floatBits(dtype)

	minAbs, maxAbs := math.Inf(1), 0.0
	for _, v := range values {
		x := math.Abs(v.Float64())
		if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		minAbs = math.Min(minAbs, x)
		maxAbs = math.Max(maxAbs, x)
	}
	sci := maxAbs >= 1e8 || (maxAbs > 0 && (minAbs < 1e-4 || maxAbs/minAbs > 1e3))

	words := make([]string, len(values))
	if sci {
		// Shared mantissa precision: the longest shortest-repr mantissa.
		prec := 0
		for _, v := range values {
			x := v.Float64()
			if _, ok := nonFinite(x); ok {
				continue
			}
			mant := strconv.FormatFloat(x, 'e', -1, bits)
			mant = mant[:strings.IndexByte(mant, 'e')]
			if dot := strings.IndexByte(mant, '.'); dot >= 0 {
				prec = max(prec, min(numpyPrecision, len(mant)-dot-1))
			}
		}
		width := 0
		for i, v := range values {
			x := v.Float64()
			if nf, ok := nonFinite(x); ok {
				words[i] = nf
			} else {
				words[i] = strconv.FormatFloat(x, 'e', prec, bits)
				if prec == 0 {
					words[i] = strings.Replace(words[i], "e", ".e", 1)
				}
			}
			width = max(width, len(words[i]))
		}
		for i := range words {
			words[i] = padLeft(words[i], width)
		}
		return words
	}

	ints := make([]string, len(values))
	fracs := make([]string, len(values))
	padInt, padFrac := 0, 0
	for i, v := range values {
		x := v.Float64()
		if nf, ok := nonFinite(x); ok {
			ints[i] = nf
			fracs[i] = "-"
			padInt = max(padInt, len(nf))
			continue
		}
		s := strconv.FormatFloat(x, 'f', -1, bits)
		if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > numpyPrecision {
			s = strings.TrimRight(strconv.FormatFloat(x, 'f', numpyPrecision, bits), "0")
		}
		whole, frac, _ := strings.Cut(s, ".")
		ints[i], fracs[i] = whole, frac
		padInt = max(padInt, len(whole))
		padFrac = max(padFrac, len(frac))
	}

	for i := range values {
		if fracs[i] == "-" {
			// nan and inf take the integer column and blank the rest.
			words[i] = padLeft(ints[i], padInt+1+padFrac)
			continue
		}
		words[i] = padLeft(ints[i], padInt) + "." + fracs[i] + strings.Repeat(" ", padFrac-len(fracs[i]))
	}
	return words
}

// wrapWords joins words inside brackets, breaking lines at width with a
// one-space continuation indent. Padding inside the last word is kept.
func wrapWords(words []string, sep string, width int) string {
	var b strings.Builder
	line := "["
	for i, w := range words {
		limit := width
		if i == len(words)-1 {
			limit-- // closing bracket
		}
		if len(line)+len(w) > limit && strings.TrimSpace(line) != "[" {
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteByte('\n')
			line = " "
		}
		line += w
		if i < len(words)-1 {
			line += sep
		}
	}
	b.WriteString(line)
	b.WriteByte(']')
	return b.String()
}
