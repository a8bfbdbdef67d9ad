package safetensors

import (
	"fmt"
	"strings"

	"github.com/born-ml/peek/internal/metrics"
	"github.com/born-ml/peek/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 1_000_000         // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict checks every tensor and requires the byte ranges to
	// tile the data section exactly (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks each tensor on its own: name, shape, size and bounds.
	ValidationNormal
	// ValidationNone skips validation. Reads are still bounds checked.
	ValidationNone
)

// String returns the level name.
func (l ValidationLevel) String() string {
	switch l {
	case ValidationStrict:
		return "strict"
	case ValidationNormal:
		return "normal"
	case ValidationNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseValidationLevel parses "strict", "normal" or "none".
func ParseValidationLevel(s string) (ValidationLevel, error) {
	switch strings.ToLower(s) {
	case "strict", "":
		return ValidationStrict, nil
	case "normal":
		return ValidationNormal, nil
	case "none":
		return ValidationNone, nil
	default:
		return 0, fmt.Errorf("unknown validation level %q", s)
	}
}

// invalid records the failure and builds the error.
func invalid(typ, name, name2, details string) error {
	metrics.RecordValidationError(typ)
	return &ValidationError{Type: typ, Tensor: name, Tensor2: name2, Details: details}
}

// ValidateTensorName rejects empty, oversized and NUL-carrying names.
func ValidateTensorName(name string) error {
	if name == "" {
		return invalid("invalid_name", name, "", "empty name")
	}
	if len(name) > MaxTensorNameLen {
		return invalid("name_too_long", name, "", fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen))
	}
	if strings.Contains(name, "\x00") {
		return invalid("invalid_name", name, "", "contains null byte")
	}
	return nil
}

// ValidateTensor checks one entry against the data section size.
func ValidateTensor(name string, info TensorInfo, dataSize int64) error {
	if err := ValidateTensorName(name); err != nil {
		return err
	}
	if err := info.Shape.Validate(); err != nil {
		return invalid("invalid_shape", name, "", err.Error())
	}

	begin, end := info.DataOffsets[0], info.DataOffsets[1]
	if begin < 0 || end < begin {
		return invalid("negative_offset", name, "",
			fmt.Sprintf("data_offsets [%d, %d] (negative size not allowed)", begin, end))
	}

	size, err := tensor.ByteLen(info.Shape, info.DType)
	if err != nil {
		return invalid("size_overflow", name, "", err.Error())
	}
	if want := int64(size); info.ByteLen() != want {
		return invalid("size_mismatch", name, "",
			fmt.Sprintf("%d bytes for shape %v of %s (want %d)", info.ByteLen(), info.Shape, info.DType, want))
	}

	if end > dataSize {
		return invalid("out_of_bounds", name, "",
			fmt.Sprintf("end %d > data_size %d", end, dataSize))
	}
	return nil
}

// ValidateHeader performs header validation at the requested level.
func ValidateHeader(h Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return invalid("too_many_tensors", "", "", fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount))
	}

	sorted := h.ByOffset()
	for _, t := range sorted {
		if err := ValidateTensor(t.Name, t.TensorInfo, dataSize); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		return validateLayout(sorted, dataSize)
	}
	return nil
}

// validateLayout requires the tensors, in offset order, to cover
// [0, dataSize) with no overlaps and no holes.
func validateLayout(sorted []NamedTensorInfo, dataSize int64) error {
	var expected int64
	prev := ""
	for _, t := range sorted {
		begin, end := t.DataOffsets[0], t.DataOffsets[1]
		switch {
		case begin < expected:
			return invalid("offset_overlap", prev, t.Name,
				fmt.Sprintf("region starting at %d overlaps previous region ending at %d", begin, expected))
		case begin > expected:
			return invalid("offset_gap", t.Name, "",
				fmt.Sprintf("starts at %d, previous region ends at %d", begin, expected))
		}
		expected = end
		prev = t.Name
	}

	if expected != dataSize {
		return invalid("trailing_data", "", "",
			fmt.Sprintf("tensors cover %d bytes of a %d byte data section", expected, dataSize))
	}
	return nil
}
