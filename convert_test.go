package gzinga

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	data := corpus(rnd, 200*1000)

	// Two members, as produced by concatenating gzip files.
	var in bytes.Buffer
	half := len(data) / 2
	for _, part := range [][]byte{data[:half], data[half:]} {
		gz := gzip.NewWriter(&in)
		gz.Name = "divina.txt"
		_, err := gz.Write(part)
		require.NoError(t, err)
		require.NoError(t, gz.Close())
	}

	var out bytes.Buffer
	ix, err := Convert(&out, &in, 8192)
	require.NoError(t, err)
	assert.Equal(t, (len(data)-1)/8192, ix.Len())

	src := newMemSource(out.Bytes())
	require.True(t, IsValidContainer(src))
	zr, err := NewReader(src)
	require.NoError(t, err)
	assert.Equal(t, ix.Entries(), zr.Index().Entries())

	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, zr.SeekOffset(100000))
	buf := make([]byte, 1000)
	_, err = io.ReadFull(zr, buf)
	require.NoError(t, err)
	assert.Equal(t, data[100000:101000], buf)
}

func TestConvertNotGzip(t *testing.T) {
	var out bytes.Buffer
	_, err := Convert(&out, bytes.NewReader([]byte("not compressed")), 0)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}
