package gzinga

import (
	"bytes"
	"runtime"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	flagText    = 1 << 0
	flagHdrCrc  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4

	// Fixed part of every header this package writes: magic, method, flags,
	// four zero mtime bytes, extra flags and OS.
	headerLen  = 10
	trailerLen = 8

	osFAT     = 0
	osUnix    = 3
	osUnknown = 7
)

// defaultOS is the OS byte stamped in the headers written on this platform.
var defaultOS = func() byte {
	switch runtime.GOOS {
	case "windows":
		return osFAT
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos", "aix":
		return osUnix
	default:
		return osUnknown
	}
}()

// headerPattern returns the searchable 10-byte header prefix for a given OS
// byte. The comment flag is always set and nothing else is.
func headerPattern(os byte) []byte {
	return []byte{gzipID1, gzipID2, gzipDeflate, flagComment, 0, 0, 0, 0, 0, os}
}

// isHeaderPattern reports whether b starts with a header prefix this package
// could have written, for any OS byte.
func isHeaderPattern(b []byte) bool {
	if len(b) < headerLen {
		return false
	}
	return bytes.Equal(b[:headerLen-1], headerPattern(0)[:headerLen-1])
}

// matcher finds exact occurrences of a header pattern inside a buffer.
// Payload bytes that happen to equal the pattern match too: the format has
// no escaping.
type matcher struct {
	pattern []byte
}

// index returns the position of the first occurrence, or -1.
func (m matcher) index(buf []byte) int {
	return bytes.Index(buf, m.pattern)
}

// lastIndex returns the position of the last complete occurrence, or -1.
func (m matcher) lastIndex(buf []byte) int {
	return bytes.LastIndex(buf, m.pattern)
}

func (m matcher) len() int {
	return len(m.pattern)
}
