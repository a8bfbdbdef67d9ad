package safetensors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/born-ml/peek/internal/tensor"
)

const metadataKey = "__metadata__"

// TensorInfo describes a tensor in the header.
type TensorInfo struct {
	DType       tensor.DataType `json:"dtype"`
	Shape       tensor.Shape    `json:"shape"`
	DataOffsets [2]int64        `json:"data_offsets"` // [begin, end) within the data section
}

// ByteLen returns end - begin.
func (i TensorInfo) ByteLen() int64 {
	return i.DataOffsets[1] - i.DataOffsets[0]
}

// NumElements returns the element count implied by the shape.
func (i TensorInfo) NumElements() int {
	return i.Shape.NumElements()
}

// NamedTensorInfo pairs a TensorInfo with its name.
type NamedTensorInfo struct {
	Name string
	TensorInfo
}

// wireTensorInfo keeps dtype as a string so unknown dtypes surface as ErrUnknownDType.
type wireTensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Header is the decoded JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON implements custom JSON unmarshaling for Header.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == metadataKey {
			continue
		}
		var wire wireTensorInfo
		if err := json.Unmarshal(value, &wire); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		dtype, err := tensor.ParseDataType(wire.DType)
		if err != nil {
			return fmt.Errorf("%w: tensor %s: %q", ErrUnknownDType, key, wire.DType)
		}
		shape := tensor.Shape(wire.Shape)
		if shape == nil {
			shape = tensor.Shape{}
		}
		h.Tensors[key] = TensorInfo{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: wire.DataOffsets,
		}
	}

	return nil
}

// MarshalJSON writes tensors and metadata as one flat object.
func (h Header) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		out[metadataKey] = h.Metadata
	}
	for name, info := range h.Tensors {
		if info.Shape == nil {
			info.Shape = tensor.Shape{}
		}
		out[name] = info
	}
	return json.Marshal(out)
}

// Names returns tensor names in alphabetical order.
func (h Header) Names() []string {
	names := make([]string, 0, len(h.Tensors))
	for name := range h.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByOffset returns tensors ordered by their position in the data section.
func (h Header) ByOffset() []NamedTensorInfo {
	out := make([]NamedTensorInfo, 0, len(h.Tensors))
	for name, info := range h.Tensors {
		out = append(out, NamedTensorInfo{Name: name, TensorInfo: info})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].DataOffsets, out[j].DataOffsets
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// parseHeader decodes raw header bytes. The header must be a JSON object.
func parseHeader(raw []byte) (Header, error) {
	var h Header
	trimmed := bytes.TrimRight(raw, " ")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return h, fmt.Errorf("%w: header is not a JSON object", ErrInvalidHeader)
	}
	if err := json.Unmarshal(trimmed, &h); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return h, nil
}
