package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/peek/internal/tensor"
)

// headerAlign is the alignment of the data section; the JSON header is
// space padded so 8+N is a multiple of it.
const headerAlign = 8

// WriteTo writes tensors in safetensors format.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name.
func WriteTo(w io.Writer, tensors []*tensor.RawTensor, metadata map[string]string) (int64, error) {
	sorted := make([]*tensor.RawTensor, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	header := Header{Metadata: metadata, Tensors: make(map[string]TensorInfo, len(sorted))}
	var currentOffset int64
	for _, raw := range sorted {
		if raw.Name() == metadataKey {
			return 0, fmt.Errorf("tensor name %q is reserved", metadataKey)
		}
		if err := ValidateTensorName(raw.Name()); err != nil {
			return 0, err
		}
		if _, dup := header.Tensors[raw.Name()]; dup {
			return 0, fmt.Errorf("duplicate tensor name %q", raw.Name())
		}
		size := int64(raw.ByteSize())
		header.Tensors[raw.Name()] = TensorInfo{
			DType:       raw.DType(),
			Shape:       raw.Shape().Clone(),
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal header: %w", err)
	}
	for (8+len(headerJSON))%headerAlign != 0 {
		headerJSON = append(headerJSON, ' ')
	}

	var written int64
	headerSize := uint64(len(headerJSON))
	if err := binary.Write(w, binary.LittleEndian, headerSize); err != nil {
		return written, fmt.Errorf("failed to write header size: %w", err)
	}
	written += 8

	n, err := w.Write(headerJSON)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write header: %w", err)
	}

	for _, raw := range sorted {
		n, err := w.Write(raw.Data())
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write tensor %s: %w", raw.Name(), err)
		}
	}

	return written, nil
}

// Write creates path and writes tensors to it. A partially written file is removed.
func Write(path string, tensors []*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	bw := bufio.NewWriter(file)
	if _, err := WriteTo(bw, tensors, metadata); err != nil {
		return err
	}
	return bw.Flush()
}
