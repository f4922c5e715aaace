package gzinga

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	err := ioError("read", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, err, ioError("again", err))
	assert.NoError(t, ioError("noop", nil))

	err = formatError(12, "not in GZIP format")
	assert.ErrorIs(t, err, ErrFormat)
	assert.EqualError(t, err, "gzinga: invalid format at offset 12: not in GZIP format")

	assert.ErrorIs(t, ErrChecksum, ErrFormat)
	assert.False(t, errors.Is(ErrFormat, ErrChecksum))

	perr := &ParseError{Token: "garbage"}
	assert.ErrorIs(t, perr, ErrParse)
	assert.EqualError(t, perr, `gzinga: malformed index token "garbage"`)
}
