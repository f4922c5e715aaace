package gzinga

import (
	"io"
)

const cWINDOW_SIZE = 4096

// RsyncableWriter segments the container at data-dependent offsets, keyed
// by the uncompressed offset of each member.
type RsyncableWriter struct {
	*Writer
	window []byte
	idx    int
	sum    int
}

// Create a new compressing writer that will generate an indexed container,
// segmenting the compressed stream in a way to be efficient when transferred
// over rsync with slight differences in the uncompressed stream.
//
// Segmenting happens at data-dependent offsets that make the compressed
// stream resynchronize after localized changes in the uncompressed stream.
// In other words, we use the same algorithm of "gzip --rsyncable", but every
// cut is a checkpoint.
func NewRsyncableWriter(w io.Writer, opts ...Option) (*RsyncableWriter, error) {
	zw, err := NewWriter(w, opts...)
	if err != nil {
		return nil, err
	}
	return &RsyncableWriter{
		Writer: zw,
		window: make([]byte, cWINDOW_SIZE),
	}, nil
}

func (w *RsyncableWriter) Write(data []byte) (int, error) {
	written := 0
	for len(data) > 0 {
		cut := w.scan(data)
		n, err := w.Writer.Write(data[:cut])
		written += n
		if err != nil {
			return written, err
		}
		data = data[cut:]
		if w.idx == 0 {
			if err := w.Checkpoint(w.Offset()); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// scan feeds data into the rolling sum and returns how many bytes belong to
// the current member. When a cut point is found the window is reset, which
// leaves idx at zero.
func (w *RsyncableWriter) scan(data []byte) int {
	i := 0
	for w.idx < cWINDOW_SIZE && i < len(data) {
		w.window[w.idx] = data[i]
		w.sum += int(data[i])
		w.idx++
		i++
	}
	for i < len(data) {
		w.sum -= int(w.window[w.idx%cWINDOW_SIZE])
		w.window[w.idx%cWINDOW_SIZE] = data[i]
		w.sum += int(data[i])
		w.idx++
		i++
		if w.sum%cWINDOW_SIZE == 0 {
			w.sum = 0
			w.idx = 0
			return i
		}
	}
	return i
}
