package gzinga

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/crc32"
)

// OffsetWriter is implemented by writers that can report the current point
// in the uncompressed stream. The block and rsyncable writers use that
// position as the checkpoint key, so Reader.SeekOffset can later jump back to
// it.
type OffsetWriter interface {
	io.WriteCloser

	// Returns the number of uncompressed bytes written so far.
	Offset() int64
}

type countWriter struct {
	io.Writer
	off int64
}

func (cw *countWriter) Write(data []byte) (int, error) {
	n, err := cw.Writer.Write(data)
	cw.off += int64(n)
	return n, err
}

// Writer produces an indexed container: a concatenation of gzip members
// where every header comment carries the index of all checkpoints so far,
// followed by a final header with no member after it.
//
// A Writer is not safe for concurrent use. After any error the Writer is
// unusable and the sink must not be written to again.
type Writer struct {
	opts   options
	buf    *bufio.Writer
	cw     *countWriter
	fw     *flate.Writer
	digest uint32
	size   uint32
	total  int64
	index  *Index
	hdr    []byte

	payloadStart int64
	err          error
	closed       bool
}

// NewWriter writes the initial header to w and starts the first member.
// The sink is not closed by Writer.Close.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)
	buf := bufio.NewWriterSize(w, o.bufferSize)
	cw := &countWriter{Writer: buf}
	fw, err := flate.NewWriter(cw, o.level)
	if err != nil {
		return nil, err
	}
	zw := &Writer{
		opts:  o,
		buf:   buf,
		cw:    cw,
		fw:    fw,
		index: newIndex(),
	}
	if _, err := zw.writeHeader(); err != nil {
		return nil, err
	}
	zw.payloadStart = cw.off
	return zw, nil
}

// Write compresses data into the current member.
func (zw *Writer) Write(data []byte) (int, error) {
	if err := zw.usable(); err != nil {
		return 0, err
	}
	n, err := zw.fw.Write(data)
	zw.digest = crc32.Update(zw.digest, crc32.IEEETable, data[:n])
	zw.size += uint32(n)
	zw.total += int64(n)
	if err != nil {
		zw.err = ioError("write", err)
		return n, zw.err
	}
	return n, nil
}

// Checkpoint closes the current member, records key at the offset where the
// next header starts, writes that header with the whole index, and starts a
// new member. The output is flushed to the sink.
//
// Keys must be unique; writing the same key twice is not guarded.
func (zw *Writer) Checkpoint(key int64) error {
	if err := zw.usable(); err != nil {
		return err
	}
	memberBytes, err := zw.finishMember()
	var headerBytes int64
	if err == nil {
		zw.index.add(key, zw.cw.off)
		headerBytes, err = zw.writeHeader()
	}
	if err == nil {
		err = zw.flush()
	}
	zw.opts.metrics.RecordCheckpoint(memberBytes, headerBytes, err)
	zw.opts.logger.LogCheckpoint(key, zw.cw.off-headerBytes, zw.index.Len(), err)
	if err != nil {
		return err
	}
	zw.startMember()
	return nil
}

// Close closes the current member, even if it is empty, then writes the
// final header holding the complete index and flushes everything to the
// sink. Close must be called exactly once.
func (zw *Writer) Close() error {
	if err := zw.usable(); err != nil {
		return err
	}
	zw.closed = true
	_, err := zw.finishMember()
	if err == nil {
		_, err = zw.writeHeader()
	}
	if err == nil {
		err = zw.flush()
	}
	zw.opts.logger.LogClose(zw.cw.off, zw.index.Len(), err)
	zw.buf = nil
	return err
}

// Index returns a snapshot of the checkpoints written so far.
func (zw *Writer) Index() *Index {
	return zw.index.clone()
}

// Offset returns the number of uncompressed bytes written so far.
func (zw *Writer) Offset() int64 {
	return zw.total
}

// Written returns the number of container bytes produced so far. Data still
// held by the compressor for the open member is not counted.
func (zw *Writer) Written() int64 {
	return zw.cw.off
}

func (zw *Writer) usable() error {
	if zw.err != nil {
		return zw.err
	}
	if zw.closed {
		return ErrClosed
	}
	return nil
}

func (zw *Writer) writeHeader() (int64, error) {
	zw.hdr = appendHeader(zw.hdr[:0], zw.opts.os, zw.index)
	n, err := zw.cw.Write(zw.hdr)
	if err != nil {
		zw.err = ioError("write header", err)
		return int64(n), zw.err
	}
	return int64(n), nil
}

// finishMember drains the compressor and appends the trailer. The trailer
// lands in the tail of the output buffer when there is room for it.
func (zw *Writer) finishMember() (int64, error) {
	if err := zw.fw.Close(); err != nil {
		zw.err = ioError("finish member", err)
		return 0, zw.err
	}
	var trailer [trailerLen]byte
	if _, err := zw.cw.Write(appendTrailer(trailer[:0], zw.digest, zw.size)); err != nil {
		zw.err = ioError("write trailer", err)
		return 0, zw.err
	}
	return zw.cw.off - zw.payloadStart, nil
}

func (zw *Writer) startMember() {
	zw.fw.Reset(zw.cw)
	zw.digest = 0
	zw.size = 0
	zw.payloadStart = zw.cw.off
}

func (zw *Writer) flush() error {
	if err := zw.buf.Flush(); err != nil {
		zw.err = ioError("flush", err)
		return zw.err
	}
	return nil
}
