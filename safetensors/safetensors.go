// Package safetensors reads and writes safetensors containers.
//
// This package wraps the internal implementation and exports a small public
// API for opening containers, reading tensors and writing new files.
//
// Example usage:
//
//	import "github.com/born-ml/peek/safetensors"
//
//	f, err := safetensors.Open("net.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	info, err := f.TensorInfo("_conv_stem")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// First ten values of the flattened tensor.
//	values, err := f.Head("_conv_stem", 10, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := safetensors.Sprint(safetensors.PyTorch, info.DType, values)
//	fmt.Println(out)
package safetensors

import (
	"github.com/born-ml/peek/internal/format"
	"github.com/born-ml/peek/internal/safetensors"
	"github.com/born-ml/peek/internal/tensor"
)

// File is an open container. Only the header is read on Open.
type File = safetensors.File

// TensorInfo describes one tensor entry of the header.
type TensorInfo = safetensors.TensorInfo

// Option configures Open.
type Option = safetensors.Option

// ValidationLevel controls how thoroughly headers are checked.
type ValidationLevel = safetensors.ValidationLevel

// Validation levels.
const (
	ValidationStrict = safetensors.ValidationStrict
	ValidationNormal = safetensors.ValidationNormal
	ValidationNone   = safetensors.ValidationNone
)

// Tensor and element types.
type (
	RawTensor = tensor.RawTensor
	Value     = tensor.Value
	DataType  = tensor.DataType
	Shape     = tensor.Shape
)

// Framework selects an output representation for Sprint.
type Framework = format.Framework

// Output representations.
const (
	PyTorch = format.PyTorch
	NumPy   = format.NumPy
	Go      = format.Go
	JSON    = format.JSON
)

// Sentinel errors, for use with errors.Is.
var (
	ErrTensorNotFound = safetensors.ErrTensorNotFound
	ErrShortTensor    = safetensors.ErrShortTensor
	ErrInvalidHeader  = safetensors.ErrInvalidHeader
	ErrClosed         = safetensors.ErrClosed
)

// Open opens a container and parses its header.
// By default the file is memory mapped and strictly validated.
func Open(path string, opts ...Option) (*File, error) {
	return safetensors.Open(path, opts...)
}

// WithFile opens path, runs fn and always closes the file.
func WithFile(path string, fn func(*File) error, opts ...Option) error {
	return safetensors.WithFile(path, fn, opts...)
}

// WithMmap selects memory mapping (default) or positioned reads.
func WithMmap(enabled bool) Option {
	return safetensors.WithMmap(enabled)
}

// WithValidation sets the header validation level.
func WithValidation(level ValidationLevel) Option {
	return safetensors.WithValidation(level)
}

// Write stores tensors in a new container at path.
func Write(path string, tensors []*RawTensor, metadata map[string]string) error {
	return safetensors.Write(path, tensors, metadata)
}

// ParseFramework accepts a tag (pt, np, go, json) or an alias such as numpy.
func ParseFramework(s string) (Framework, error) {
	return format.ParseFramework(s)
}

// Sprint renders values the way the given framework prints a 1-D array.
func Sprint(fw Framework, dtype DataType, values []Value) (string, error) {
	return format.Sprint(fw, dtype, values)
}
