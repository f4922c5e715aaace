package gzinga

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/klauspost/crc32"
)

// appendHeader serializes a member header carrying the whole index in its
// comment field.
func appendHeader(buf []byte, os byte, ix *Index) []byte {
	buf = append(buf, headerPattern(os)...)
	buf = ix.appendComment(buf)
	return append(buf, 0)
}

func appendTrailer(buf []byte, digest, size uint32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, digest)
	return binary.LittleEndian.AppendUint32(buf, size)
}

// countReader tracks how many bytes were consumed from the buffered reader,
// so that the reader always knows the raw offset of the next byte it will
// decode regardless of what bufio has read ahead.
type countReader struct {
	R   *bufio.Reader
	Cnt *int64
}

func (cr *countReader) Read(data []byte) (n int, err error) {
	n, err = cr.R.Read(data)
	(*cr.Cnt) += int64(n)
	return
}

func (cr *countReader) ReadByte() (byte, error) {
	ch, err := cr.R.ReadByte()
	if err == nil {
		(*cr.Cnt)++
	}
	return ch, err
}

func (cr *countReader) ReadBytes(delim byte) ([]byte, error) {
	b, err := cr.R.ReadBytes(delim)
	(*cr.Cnt) += int64(len(b))
	return b, err
}

func unexpected(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// readHeader consumes one member header and returns its comment without the
// terminating zero. It accepts every optional field of RFC 1952 so that
// members produced by other writers can be skipped. A clean end of stream
// before the first header byte is reported as io.EOF.
func readHeader(cr *countReader) ([]byte, error) {
	start := *cr.Cnt
	var hdr [headerLen]byte
	if _, err := io.ReadFull(cr, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ioError("read header", err)
	}
	if hdr[0] != gzipID1 || hdr[1] != gzipID2 {
		return nil, formatError(start, "not in GZIP format")
	}
	if hdr[2] != gzipDeflate {
		return nil, formatError(start, "unsupported compression method")
	}
	flg := hdr[3]
	digest := crc32.ChecksumIEEE(hdr[:])

	if flg&flagExtra != 0 {
		var l [2]byte
		if _, err := io.ReadFull(cr, l[:]); err != nil {
			return nil, ioError("read extra length", unexpected(err))
		}
		digest = crc32.Update(digest, crc32.IEEETable, l[:])
		extra := make([]byte, binary.LittleEndian.Uint16(l[:]))
		if _, err := io.ReadFull(cr, extra); err != nil {
			return nil, ioError("read extra field", unexpected(err))
		}
		digest = crc32.Update(digest, crc32.IEEETable, extra)
	}

	if flg&flagName != 0 {
		name, err := cr.ReadBytes(0)
		if err != nil {
			return nil, ioError("read name", unexpected(err))
		}
		digest = crc32.Update(digest, crc32.IEEETable, name)
	}

	var comment []byte
	if flg&flagComment != 0 {
		b, err := cr.ReadBytes(0)
		if err != nil {
			return nil, ioError("read comment", unexpected(err))
		}
		digest = crc32.Update(digest, crc32.IEEETable, b)
		comment = b[:len(b)-1]
	}

	if flg&flagHdrCrc != 0 {
		var c [2]byte
		if _, err := io.ReadFull(cr, c[:]); err != nil {
			return nil, ioError("read header crc", unexpected(err))
		}
		if binary.LittleEndian.Uint16(c[:]) != uint16(digest) {
			return nil, formatError(start, "corrupt GZIP header")
		}
	}
	return comment, nil
}
