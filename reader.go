package gzinga

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/crc32"
)

type memberState int

const (
	// stateHeader: the cursor sits on a header (or at end of stream).
	stateHeader memberState = iota
	// stateMember: inflating the payload of one member.
	stateMember
	// stateTrailer: the payload is exhausted, the trailer is next.
	stateTrailer
	// stateEOF: a header with no member after it, or no data at all.
	stateEOF
)

// A Reader decompresses an indexed container, member after member, and can
// jump straight to the member recorded for a checkpoint key.
//
// Every member gets its own inflater: nothing is carried over from one
// member to the next, or across a seek. A Reader owns the cursor of its
// Source and is not safe for concurrent use; open one Reader per Source to
// read in parallel.
type Reader struct {
	src     Source
	opts    options
	pattern []byte
	index   *Index

	br       *bufio.Reader
	cr       *countReader
	pos      int64
	state    memberState
	inflater io.ReadCloser
	digest   uint32
	size     uint32
	limit    int64 // stop at the first header at or past limit; -1 for none
	closed   bool
}

// NewReader validates that src starts with a container header, loads the
// index from the tail of the stream unless WithoutBootstrap is given, and
// positions the reader on the first member.
func NewReader(src Source, opts ...Option) (*Reader, error) {
	zr := &Reader{
		src:   src,
		opts:  buildOptions(opts),
		index: newIndex(),
		limit: -1,
	}
	zr.br = bufio.NewReader(src)
	zr.cr = &countReader{R: zr.br, Cnt: &zr.pos}

	pattern, err := readPattern(src)
	if err != nil {
		return nil, err
	}
	zr.pattern = pattern

	if zr.opts.bootstrap {
		start := time.Now()
		ix, res, err := bootstrap(src, matcher{pattern: pattern}, zr.opts.scanWindow)
		d := time.Since(start)
		zr.opts.metrics.RecordBootstrap(res.windows, ix.Len(), d, err)
		zr.opts.logger.LogBootstrap(res.windows, ix.Len(), res.headerAt, d, err)
		if err != nil {
			return nil, err
		}
		zr.index = ix
	}

	if err := zr.reposition(0); err != nil {
		return nil, err
	}
	return zr, nil
}

// NewStreamReader decompresses r sequentially. It needs no seeking, so it
// works on pipes, and it accepts any gzip stream, indexed or not. The
// returned Reader has an empty index and cannot Seek; Close does not close r.
func NewStreamReader(r io.Reader, opts ...Option) *Reader {
	zr := &Reader{
		opts:  buildOptions(opts),
		index: newIndex(),
		limit: -1,
	}
	zr.br = bufio.NewReader(r)
	zr.cr = &countReader{R: zr.br, Cnt: &zr.pos}
	return zr
}

// readPattern checks that src starts with a header this package writes and
// returns its fixed prefix, which is the pattern searched for by the
// bootstrap and the boundary locator. The source position is left untouched.
func readPattern(src Source) ([]byte, error) {
	pos, err := position(src)
	if err != nil {
		return nil, err
	}
	if err := seekTo(src, 0); err != nil {
		return nil, err
	}
	var hdr [headerLen]byte
	n, err := readFull(src, hdr[:])
	if err != nil {
		return nil, err
	}
	if err := seekTo(src, pos); err != nil {
		return nil, err
	}
	if n < headerLen || !isHeaderPattern(hdr[:]) {
		return nil, formatError(0, "not a recognized container")
	}
	return hdr[:], nil
}

// Index returns the checkpoints loaded at open time. It is empty when the
// reader was opened WithoutBootstrap or the container has no checkpoints.
func (zr *Reader) Index() *Index {
	return zr.index
}

// Seek moves the reader to the member recorded for key and consumes its
// header, so that the next Read returns the first byte of that member. A key
// that is not in the index rewinds to the start of the container; that is
// not an error.
func (zr *Reader) Seek(key int64) error {
	if zr.closed {
		return ErrClosed
	}
	off, found := zr.index.Lookup(key)
	err := zr.reposition(off)
	if err == nil {
		err = zr.enterMember(true)
	}
	zr.opts.metrics.RecordSeek(found, err)
	zr.opts.logger.LogSeek(key, off, found, err)
	return err
}

// SeekOffset moves the reader to the given offset of the uncompressed
// stream. It relies on keys being uncompressed offsets, as written by
// BlockWriter and RsyncableWriter: it seeks to the closest checkpoint at or
// before off and discards the bytes in between.
func (zr *Reader) SeekOffset(off int64) error {
	if zr.closed {
		return ErrClosed
	}
	if off < 0 {
		return ErrOutOfRange
	}
	var err error
	e, found := zr.index.floor(off)
	if found {
		err = zr.Seek(e.Key)
	} else if err = zr.reposition(0); err == nil {
		err = zr.enterMember(true)
	}
	if err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, zr, off-e.Key); err != nil {
		if err == io.EOF {
			return ErrOutOfRange
		}
		return err
	}
	return nil
}

// Position returns the offset in the source of the next byte the reader
// will consume. It is a member header offset, and so can be given back to
// RestorePosition, only at member boundaries: right after NewReader or
// RestorePosition, and once a SplitReader has reached the end of its split.
// A value taken inside a member, including just after Seek, cannot be
// restored.
func (zr *Reader) Position() int64 {
	return zr.pos
}

// RestorePosition moves the source cursor back to pos, which must be the
// offset of a member header (for instance a value returned by Position
// between members, an index offset or a split boundary). The next Read
// starts a fresh member there.
func (zr *Reader) RestorePosition(pos int64) error {
	if zr.closed {
		return ErrClosed
	}
	return zr.reposition(pos)
}

func (zr *Reader) reposition(pos int64) error {
	if zr.src == nil {
		return ErrUnseekable
	}
	if err := seekTo(zr.src, pos); err != nil {
		return err
	}
	zr.br.Reset(zr.src)
	zr.pos = pos
	zr.dropMember()
	zr.state = stateHeader
	return nil
}

func (zr *Reader) dropMember() {
	if zr.inflater != nil {
		zr.inflater.Close()
		zr.inflater = nil
	}
}

// enterMember consumes one header and prepares a new inflater for the member
// that follows it. A header that ends the stream moves to stateEOF. When
// required is set, a clean end of stream instead of a header is a format
// error: the caller was promised a header at this offset.
func (zr *Reader) enterMember(required bool) error {
	at := zr.pos
	if _, err := readHeader(zr.cr); err != nil {
		if err != io.EOF {
			return err
		}
		if required {
			return formatError(at, "no header at offset")
		}
		zr.state = stateEOF
		return nil
	}
	if _, err := zr.br.Peek(1); err != nil {
		if err == io.EOF {
			zr.state = stateEOF
			return nil
		}
		return ioError("read member", err)
	}
	zr.inflater = flate.NewReader(zr.cr)
	zr.digest = 0
	zr.size = 0
	zr.state = stateMember
	return nil
}

func (zr *Reader) readTrailer() error {
	var trailer [trailerLen]byte
	if _, err := io.ReadFull(zr.cr, trailer[:]); err != nil {
		return ioError("read trailer", unexpected(err))
	}
	if binary.LittleEndian.Uint32(trailer[:4]) != zr.digest ||
		binary.LittleEndian.Uint32(trailer[4:]) != zr.size {
		return ErrChecksum
	}
	zr.dropMember()
	zr.state = stateHeader
	return nil
}

// Read decompresses data from the current member onward, crossing member
// boundaries until the end of the container.
func (zr *Reader) Read(data []byte) (int, error) {
	if zr.closed {
		return 0, ErrClosed
	}
	if len(data) == 0 {
		return 0, nil
	}
	for {
		switch zr.state {
		case stateHeader:
			if zr.limit >= 0 && zr.pos >= zr.limit {
				return 0, io.EOF
			}
			if err := zr.enterMember(false); err != nil {
				return 0, err
			}
		case stateMember:
			n, err := zr.inflater.Read(data)
			zr.digest = crc32.Update(zr.digest, crc32.IEEETable, data[:n])
			zr.size += uint32(n)
			if err == io.EOF {
				zr.state = stateTrailer
			} else if err != nil {
				return n, zr.inflateError(err)
			}
			if n > 0 {
				return n, nil
			}
		case stateTrailer:
			if err := zr.readTrailer(); err != nil {
				return 0, err
			}
		case stateEOF:
			return 0, io.EOF
		}
	}
}

func (zr *Reader) inflateError(err error) error {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		return &FormatError{Offset: zr.pos, Reason: err.Error()}
	}
	return ioError("inflate", err)
}

// Close releases the inflater and closes the source.
func (zr *Reader) Close() error {
	if zr.closed {
		return nil
	}
	zr.closed = true
	zr.dropMember()
	if zr.src == nil {
		return nil
	}
	return zr.src.Close()
}
