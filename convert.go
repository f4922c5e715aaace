package gzinga

import (
	"io"

	"github.com/klauspost/pgzip"
)

// Convert a gzip stream into an indexed container, checkpointing every
// blockSize uncompressed bytes (DefaultBlockSize if blockSize <= 0). The
// input may itself be a multi-member gzip; it is decoded in parallel. The
// container can then be read with Reader.SeekOffset.
func Convert(w io.Writer, r io.Reader, blockSize int, opts ...Option) (*Index, error) {
	fz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer fz.Close()

	oz, err := NewBlockWriter(w, blockSize, opts...)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(oz, fz); err != nil {
		return nil, err
	}
	if err = oz.Close(); err != nil {
		return nil, err
	}
	return oz.Index(), nil
}
