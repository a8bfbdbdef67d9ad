package safetensors

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/born-ml/peek/internal/logger"
	"github.com/born-ml/peek/internal/metrics"
	"github.com/born-ml/peek/internal/tensor"
)

type options struct {
	mmap  bool
	level ValidationLevel
}

// Option configures Open.
type Option func(*options)

// WithMmap selects memory mapping (default) or plain positioned reads.
func WithMmap(enabled bool) Option {
	return func(o *options) { o.mmap = enabled }
}

// WithValidation sets how thoroughly the header is checked on open.
func WithValidation(level ValidationLevel) Option {
	return func(o *options) { o.level = level }
}

// File is an open safetensors container. Only the header is read on Open;
// tensor bytes are read on demand. Always Close a File (use defer), or use WithFile.
type File struct {
	path       string
	src        source
	header     Header
	headerSize uint64
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64
	closed     bool
}

// Open opens a container and parses its header.
func Open(path string, opts ...Option) (*File, error) {
	o := options{mmap: true, level: ValidationStrict}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	src, err := openSource(path, o.mmap)
	if err != nil {
		return nil, err
	}

	f := &File{path: path, src: src}
	if err := f.readHeader(o.level); err != nil {
		_ = src.Close() // Best effort close on error
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	metrics.RecordFileOpened(src.Kind())
	metrics.RecordHeaderParse(time.Since(start))
	logger.Log.Debug("opened container",
		"path", path,
		"source", src.Kind(),
		"tensors", len(f.header.Tensors),
		"header_bytes", f.headerSize,
		"data_bytes", f.dataSize,
	)
	return f, nil
}

// WithFile opens path, runs fn and closes the file on every exit path,
// including a panic in fn.
func WithFile(path string, fn func(*File) error, opts ...Option) (err error) {
	f, err := Open(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

func (f *File) readHeader(level ValidationLevel) error {
	size := f.src.Size()
	if size < 8 {
		return fmt.Errorf("%w: %d bytes (minimum 8 bytes required)", ErrHeaderTooSmall, size)
	}

	// Read header size (8 bytes, little-endian uint64)
	var lenBuf [8]byte
	if _, err := f.src.ReadAt(lenBuf[:], 0); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	headerSize := binary.LittleEndian.Uint64(lenBuf[:])

	if headerSize > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	//nolint:gosec // G115: headerSize bounded by MaxHeaderSize above.
	if int64(headerSize) > size-8 {
		return fmt.Errorf("%w: header size %d exceeds file size %d", ErrHeaderTooSmall, headerSize, size)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := f.src.ReadAt(headerBytes, 8); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	header, err := parseHeader(headerBytes)
	if err != nil {
		return err
	}

	f.header = header
	f.headerSize = headerSize
	f.dataOffset = int64(8 + headerSize) //nolint:gosec // G115: bounded by file size.
	f.dataSize = size - f.dataOffset

	return ValidateHeader(header, f.dataSize, level)
}

// Close releases the file handle or mapping. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.src.Close()
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Source returns "mmap" or "file".
func (f *File) Source() string {
	return f.src.Kind()
}

// Header returns the decoded header.
func (f *File) Header() Header {
	return f.header
}

// HeaderSize returns the JSON header length in bytes.
func (f *File) HeaderSize() uint64 {
	return f.headerSize
}

// DataSize returns the length of the data section.
func (f *File) DataSize() int64 {
	return f.dataSize
}

// Metadata returns the "__metadata__" map from the header (may be nil).
func (f *File) Metadata() map[string]string {
	return f.header.Metadata
}

// Len returns the number of tensors.
func (f *File) Len() int {
	return len(f.header.Tensors)
}

// TensorNames returns all tensor names in alphabetical order.
func (f *File) TensorNames() []string {
	return f.header.Names()
}

// TensorInfo returns information about a specific tensor.
func (f *File) TensorInfo(name string) (TensorInfo, error) {
	info, ok := f.header.Tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("%w: %q in %s", ErrTensorNotFound, name, f.path)
	}
	return info, nil
}

// ReadTensorData reads the raw bytes of a tensor.
func (f *File) ReadTensorData(name string) ([]byte, error) {
	info, err := f.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	return f.readRange(name, info, info.ByteLen())
}

// readRange reads the first n bytes of a tensor's region.
func (f *File) readRange(name string, info TensorInfo, n int64) ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}

	begin, end := info.DataOffsets[0], info.DataOffsets[1]
	if begin < 0 || end < begin || end > f.dataSize {
		return nil, fmt.Errorf("invalid data offsets for tensor %s: [%d, %d] with data size %d: %w",
			name, begin, end, f.dataSize, ErrInvalidHeader)
	}
	if n < 0 || n > end-begin {
		return nil, fmt.Errorf("read of %d bytes exceeds tensor %s region [%d, %d]: %w",
			n, name, begin, end, ErrInvalidHeader)
	}

	data := make([]byte, n)
	if n > 0 {
		if _, err := f.src.ReadAt(data, f.dataOffset+begin); err != nil {
			return nil, fmt.Errorf("failed to read tensor data for %s: %w", name, err)
		}
	}
	metrics.RecordTensorRead(info.DType.String(), len(data))
	return data, nil
}

// Tensor loads a whole tensor.
func (f *File) Tensor(name string) (*tensor.RawTensor, error) {
	info, err := f.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := f.readRange(name, info, info.ByteLen())
	if err != nil {
		return nil, err
	}
	return tensor.NewRaw(name, info.Shape, info.DType, data)
}

// Head returns the first n elements of the flattened tensor, reading only
// the bytes it needs. A tensor with fewer than n elements yields all of
// them, or ErrShortTensor when strict is set.
func (f *File) Head(name string, n int, strict bool) ([]tensor.Value, error) {
	info, err := f.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid element count %d", n)
	}

	// The whole-tensor size check still applies, so a corrupt entry is not half read.
	size, err := tensor.ByteLen(info.Shape, info.DType)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w: %w", name, ErrInvalidHeader, err)
	}
	if info.ByteLen() != int64(size) {
		return nil, fmt.Errorf("tensor %s: %d bytes for shape %v of %s (want %d): %w",
			name, info.ByteLen(), info.Shape, info.DType, size, ErrInvalidHeader)
	}

	numel := size / info.DType.Size()
	if numel < n && strict {
		return nil, fmt.Errorf("%w: %s has %d elements, %d requested", ErrShortTensor, name, numel, n)
	}
	k := min(n, numel)

	data, err := f.readRange(name, info, int64(k*info.DType.Size()))
	if err != nil {
		return nil, err
	}
	prefix, err := tensor.NewRaw(name, tensor.Shape{k}, info.DType, data)
	if err != nil {
		return nil, err
	}
	return prefix.Flatten(), nil
}

// Tensors returns tensor descriptions in data section order.
func (f *File) Tensors() []NamedTensorInfo {
	return f.header.ByOffset()
}
