package source

import (
	"bytes"
	"os"
)

// File is a local file opened for reading.
type File struct {
	*os.File
	size int64
}

// Open opens the named file for reading.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{File: f, size: fi.Size()}, nil
}

// NewFile wraps an already open file. The size is taken once, at call time.
func NewFile(f *os.File) (*File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &File{File: f, size: fi.Size()}, nil
}

// Size returns the size of the file when it was opened.
func (f *File) Size() int64 {
	return f.size
}

// Bytes is an in-memory source.
type Bytes struct {
	*bytes.Reader
}

// NewBytes returns a source reading from b.
func NewBytes(b []byte) *Bytes {
	return &Bytes{Reader: bytes.NewReader(b)}
}

func (b *Bytes) Close() error {
	return nil
}
