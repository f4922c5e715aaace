package gzinga

import (
	"io"
)

// Source is a seekable byte source holding a container. Any backing store can
// satisfy it: a local file, an in-memory buffer or an object in a remote
// store (see the source package). The current position is
// Seek(0, io.SeekCurrent).
type Source interface {
	io.Reader
	io.Seeker
	io.Closer

	// Size returns the total length of the source in bytes.
	Size() int64
}

func position(src Source) (int64, error) {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, ioError("position", err)
	}
	return pos, nil
}

func seekTo(src Source, off int64) error {
	if _, err := src.Seek(off, io.SeekStart); err != nil {
		return ioError("seek", err)
	}
	return nil
}

// readFull blocks until buf is full or the source is exhausted. A short count
// at end of stream is not an error.
func readFull(src io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(src, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	if err != nil {
		return n, ioError("read", err)
	}
	return n, nil
}
