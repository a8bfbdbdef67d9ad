package safetensors

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrTensorNotFound = errors.New("tensor not found")
	ErrShortTensor    = errors.New("tensor has fewer elements than requested")
	ErrHeaderTooLarge = errors.New("header exceeds maximum size")
	ErrHeaderTooSmall = errors.New("file too small for header")
	ErrInvalidHeader  = errors.New("invalid header")
	ErrUnknownDType   = errors.New("unknown dtype")
	ErrClosed         = errors.New("file is closed")
)

// ValidationError provides detailed information about validation failures.
// It matches ErrInvalidHeader under errors.Is.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Primary tensor name involved
	Tensor2 string // Secondary tensor name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap lets callers test any validation failure with errors.Is(err, ErrInvalidHeader).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidHeader
}
