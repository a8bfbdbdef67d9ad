package safetensors

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// source is the byte store behind a File.
type source interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Kind() string
}

// mmapSource serves reads from a read-only memory mapping.
type mmapSource struct {
	*mmap.ReaderAt
}

func (s mmapSource) Size() int64  { return int64(s.Len()) }
func (s mmapSource) Kind() string { return "mmap" }

// fileSource serves positioned reads from an open file.
type fileSource struct {
	*os.File
	size int64
}

func (s *fileSource) Size() int64  { return s.size }
func (s *fileSource) Kind() string { return "file" }

func openSource(path string, useMmap bool) (source, error) {
	if useMmap {
		r, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to mmap file: %w", err)
		}
		return mmapSource{r}, nil
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &fileSource{File: file, size: stat.Size()}, nil
}
