// Package safetensors reads and writes safetensors containers.
//
// File layout:
//
//	[8 bytes: header size N (uint64 LE)]
//	[N bytes: JSON header, optionally space padded]
//	[tensor data: raw little-endian, row-major bytes]
//
// The JSON header maps tensor names to {dtype, shape, data_offsets}, where
// data_offsets are [begin, end) relative to the start of the data section,
// plus an optional "__metadata__" object of string pairs.
//
// Example:
//
//	err := safetensors.WithFile("net.safetensors", func(f *safetensors.File) error {
//	    head, err := f.Head("_conv_stem", 10, false)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(head)
//	    return nil
//	})
//
// Files are memory mapped by default (golang.org/x/exp/mmap); WithMmap(false)
// falls back to positioned reads on an *os.File. Tensor data is read lazily.
package safetensors
