package gzinga

import (
	"bufio"
	"io"
)

type scanResult struct {
	windows  int
	headerAt int64 // -1 when no header was found
}

// bootstrap rebuilds the index from the last header of the container, which
// holds every checkpoint. It scans windows backward from the tail so that
// only the end of the stream is read in the common case. The source
// position is restored before returning.
func bootstrap(src Source, m matcher, window int) (*Index, scanResult, error) {
	res := scanResult{headerAt: -1}
	pos, err := position(src)
	if err != nil {
		return nil, res, err
	}
	ix, err := scanTail(src, m, window, &res)
	if serr := seekTo(src, pos); err == nil {
		err = serr
	}
	if err != nil {
		return nil, res, err
	}
	return ix, res, nil
}

func scanTail(src Source, m matcher, window int, res *scanResult) (*Index, error) {
	size := src.Size()
	end := size
	start := end - int64(window)
	if start < 0 {
		start = 0
	}
	buf := make([]byte, end-start)
	for {
		if err := seekTo(src, start); err != nil {
			return nil, err
		}
		want := end - start
		n, err := readFull(src, buf[:want])
		if err != nil {
			return nil, err
		}
		res.windows++
		if int64(n) < want {
			return nil, ioError("read tail", io.ErrUnexpectedEOF)
		}
		if i := m.lastIndex(buf[:n]); i >= 0 {
			res.headerAt = start + int64(i)
			return readIndexAt(src, res.headerAt+int64(m.len()))
		}
		if start == 0 {
			// Nothing to bootstrap from: a plain container with no
			// checkpoints still opens, with an empty index.
			return newIndex(), nil
		}
		// Slide back, keeping enough overlap to catch a header that
		// straddled the start of the previous window.
		end = start + int64(m.len())
		if end > size {
			end = size
		}
		start = end - int64(window)
		if start < 0 {
			start = 0
		}
	}
}

// readIndexAt reads the zero-terminated comment that starts at off and
// parses it.
func readIndexAt(src Source, off int64) (*Index, error) {
	if err := seekTo(src, off); err != nil {
		return nil, err
	}
	comment, err := bufio.NewReader(src).ReadBytes(0)
	if err != nil {
		return nil, ioError("read index", unexpected(err))
	}
	return parseComment(comment[:len(comment)-1])
}
