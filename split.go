package gzinga

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"
)

// Split is a byte range of a container that starts on a member header and
// ends on the next one chosen by the locator (or at the end of the
// container). Each Split can be decompressed on its own.
type Split struct {
	Start int64
	End   int64
}

// Len returns the number of container bytes covered by the split.
func (s Split) Len() int64 {
	return s.End - s.Start
}

// LocateNextBoundary returns the offset of the first member header at or
// after loc, or the size of src if there is none. The source position is
// left unchanged.
//
// The search matches the fixed header bytes, so compressed payload that
// happens to contain them yields a false boundary; the format has no
// escaping to prevent it.
func LocateNextBoundary(src Source, loc int64, opts ...Option) (int64, error) {
	o := buildOptions(opts)
	pattern, err := readPattern(src)
	if err != nil {
		return 0, err
	}
	return locateBoundary(src, matcher{pattern: pattern}, loc, o)
}

func locateBoundary(src Source, m matcher, loc int64, o options) (int64, error) {
	pos, err := position(src)
	if err != nil {
		return 0, err
	}
	boundary, scanned, windows, err := scanForward(src, m, loc, o.scanWindow)
	if serr := seekTo(src, pos); err == nil {
		err = serr
	}
	o.metrics.RecordBoundary(scanned, err)
	o.logger.LogBoundary(loc, boundary, windows, err)
	return boundary, err
}

func scanForward(src Source, m matcher, loc int64, window int) (boundary, scanned int64, windows int, err error) {
	if size := src.Size(); loc >= size {
		return size, 0, 0, nil
	}
	if loc < 0 {
		loc = 0
	}
	buf := make([]byte, window)
	start := loc
	for {
		if err := seekTo(src, start); err != nil {
			return 0, scanned, windows, err
		}
		n, err := readFull(src, buf)
		if err != nil {
			return 0, scanned, windows, err
		}
		scanned += int64(n)
		windows++
		if j := m.index(buf[:n]); j >= 0 {
			return start + int64(j), scanned, windows, nil
		}
		if n < window {
			return start + int64(n), scanned, windows, nil
		}
		start += int64(window - m.len())
	}
}

// Splits carves the container into consecutive, boundary-aligned ranges of
// roughly splitSize bytes. The ranges cover the whole container without
// overlapping; a member larger than splitSize stays whole in one range.
func Splits(src Source, splitSize int64, opts ...Option) ([]Split, error) {
	if splitSize <= 0 {
		splitSize = DefaultScanWindow
	}
	o := buildOptions(opts)
	pattern, err := readPattern(src)
	if err != nil {
		return nil, err
	}
	m := matcher{pattern: pattern}
	total := src.Size()

	var out []Split
	start := int64(0)
	for loc := splitSize; start < total; loc += splitSize {
		if loc <= start {
			loc = start + 1
		}
		end := total
		if loc < total {
			end, err = locateBoundary(src, m, loc, o)
			if err != nil {
				return nil, err
			}
		}
		if end > start {
			out = append(out, Split{Start: start, End: end})
			start = end
		}
	}
	return out, nil
}

// SplitReader decompresses the members whose headers lie inside a Split.
type SplitReader struct {
	zr       *Reader
	split    Split
	lastRead int64
}

// NewSplitReader opens src for sequential access over the members of sp.
// Any byte range is accepted: both ends are moved forward to the next member
// header, so adjacent ranges never share a member. Reads stop at the aligned
// end; Split reports the aligned range.
func NewSplitReader(src Source, sp Split, opts ...Option) (*SplitReader, error) {
	ropts := make([]Option, 0, len(opts)+1)
	ropts = append(ropts, opts...)
	ropts = append(ropts, WithoutBootstrap())
	zr, err := NewReader(src, ropts...)
	if err != nil {
		return nil, err
	}

	m := matcher{pattern: zr.pattern}
	start, err := locateBoundary(src, m, sp.Start, zr.opts)
	if err != nil {
		return nil, err
	}
	end, err := locateBoundary(src, m, max(sp.End, start), zr.opts)
	if err != nil {
		return nil, err
	}

	if err := zr.RestorePosition(start); err != nil {
		return nil, err
	}
	zr.limit = end
	if start < end {
		if err := zr.enterMember(true); err != nil {
			return nil, err
		}
	}
	return &SplitReader{zr: zr, split: Split{Start: start, End: end}, lastRead: start}, nil
}

func (sr *SplitReader) Read(data []byte) (int, error) {
	sr.lastRead = sr.zr.Position()
	return sr.zr.Read(data)
}

// Pos returns the container offset the reader was at before the most recent
// Read, which is how far the split has progressed.
func (sr *SplitReader) Pos() int64 {
	return sr.lastRead
}

// Split returns the range this reader covers.
func (sr *SplitReader) Split() Split {
	return sr.split
}

// Close closes the underlying reader and its source.
func (sr *SplitReader) Close() error {
	return sr.zr.Close()
}

// Opener returns a new, independent handle on the same container. Every
// split processed by ReadSplits gets its own.
type Opener func() (Source, error)

// ReadSplits decompresses splits in parallel, at most concurrency at a time
// (unlimited if concurrency <= 0), calling fn with a reader for each one. The
// first error cancels ctx for the remaining splits and is returned.
func ReadSplits(ctx context.Context, open Opener, splits []Split, concurrency int, fn func(ctx context.Context, sp Split, r io.Reader) error, opts ...Option) error {
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, sp := range splits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := open()
			if err != nil {
				return err
			}
			sr, err := NewSplitReader(src, sp, opts...)
			if err != nil {
				src.Close()
				return err
			}
			defer sr.Close()
			return fn(ctx, sr.Split(), sr)
		})
	}
	return g.Wait()
}
