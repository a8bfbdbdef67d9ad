package safetensors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Checksum returns the hex SHA-256 of a tensor's bytes. The data is
// streamed from the container rather than loaded whole.
func (f *File) Checksum(name string) (string, error) {
	if f.closed {
		return "", ErrClosed
	}
	info, err := f.TensorInfo(name)
	if err != nil {
		return "", err
	}
	begin, end := info.DataOffsets[0], info.DataOffsets[1]
	if begin < 0 || end < begin || end > f.dataSize {
		return "", fmt.Errorf("invalid data offsets for tensor %s: [%d, %d] with data size %d: %w",
			name, begin, end, f.dataSize, ErrInvalidHeader)
	}

	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(f.src, f.dataOffset+begin, end-begin)); err != nil {
		return "", fmt.Errorf("failed to hash tensor %s: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
