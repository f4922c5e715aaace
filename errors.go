package gzinga

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when a header is missing or malformed where one is
	// required, or when the stream is not a recognized container.
	ErrFormat = errors.New("gzinga: invalid format")

	// ErrParse is returned when the index stored in a header comment cannot
	// be decoded.
	ErrParse = errors.New("gzinga: malformed index")

	// ErrIO wraps failures of the underlying source or sink, including a
	// premature end of stream inside a fixed-length field.
	ErrIO = errors.New("gzinga: i/o failure")

	// ErrChecksum is returned when a member trailer does not match the data
	// that was decompressed. It also satisfies errors.Is(err, ErrFormat).
	ErrChecksum = fmt.Errorf("%w: member checksum mismatch", ErrFormat)

	// ErrOutOfRange is returned by Reader.SeekOffset for offsets outside the
	// uncompressed stream.
	ErrOutOfRange = errors.New("gzinga: offset out of range")

	// ErrUnseekable is returned when a Reader opened with NewStreamReader is
	// asked to move.
	ErrUnseekable = errors.New("gzinga: stream is not seekable")

	// ErrClosed is returned by a Writer or Reader used after Close.
	ErrClosed = errors.New("gzinga: already closed")
)

// FormatError describes where and why a header failed validation.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("gzinga: invalid format at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// ParseError reports the comment token that could not be decoded.
//
// The strconv failure (if any) can be accessed via errors.Unwrap.
type ParseError struct {
	Token string
	cause error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gzinga: malformed index token %q: %v", e.Token, e.cause)
	}
	return fmt.Sprintf("gzinga: malformed index token %q", e.Token)
}

func (e *ParseError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.cause}
}

func ioError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func formatError(off int64, reason string) error {
	return &FormatError{Offset: off, Reason: reason}
}
