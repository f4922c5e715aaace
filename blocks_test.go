package gzinga

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corpus generates compressible text of roughly n bytes.
func corpus(rnd *rand.Rand, n int) []byte {
	words := []string{"nel ", "mezzo ", "del ", "cammin ", "di ", "nostra ", "vita\n", "mi ", "ritrovai ", "per ", "una ", "selva ", "oscura\n"}
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rnd.Intn(len(words))])
	}
	return b.Bytes()
}

func newOffsetWriter(t *testing.T, w io.Writer, rsyncable bool) OffsetWriter {
	var ow OffsetWriter
	var err error
	if rsyncable {
		ow, err = NewRsyncableWriter(w)
	} else {
		ow, err = NewBlockWriter(w, 16*1024)
	}
	require.NoError(t, err)
	return ow
}

func testOffsetWriter(t *testing.T, rsyncable bool) {
	seed := time.Now().UnixNano()
	t.Log("using seed:", seed)
	rnd := rand.New(rand.NewSource(seed))
	in := bytes.NewReader(corpus(rnd, 600*1024))

	var out bytes.Buffer
	ow := newOffsetWriter(t, &out, rsyncable)

	type offsets struct {
		Off int64
		Sum string
	}
	var pos []offsets

	for {
		skip := rnd.Int63n(10000) + 1
		_, err := io.CopyN(ow, in, skip)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		off := ow.Offset()
		hash := sha1.New()
		io.CopyN(io.MultiWriter(ow, hash), in, 64)
		sum := hash.Sum(nil)

		pos = append(pos, offsets{Off: off, Sum: hex.EncodeToString(sum)})
	}
	require.NoError(t, ow.Close())

	zr, err := NewReader(newMemSource(out.Bytes()))
	require.NoError(t, err)
	assert.Greater(t, zr.Index().Len(), 0)

	for _, idx := range rnd.Perm(len(pos)) {
		p := pos[idx]
		require.NoError(t, zr.SeekOffset(p.Off))
		hash := sha1.New()
		io.CopyN(hash, zr, 64)
		assert.Equal(t, p.Sum, hex.EncodeToString(hash.Sum(nil)), "offset %d", p.Off)
	}
}

func TestBlockWriterSeekOffset(t *testing.T) {
	for i := 0; i < 5; i++ {
		testOffsetWriter(t, false)
	}
}

func TestRsyncableWriterSeekOffset(t *testing.T) {
	for i := 0; i < 5; i++ {
		testOffsetWriter(t, true)
	}
}

func TestBlockWriterKeys(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	data := corpus(rnd, 100*1000)

	var out bytes.Buffer
	bw, err := NewBlockWriter(&out, 10000)
	require.NoError(t, err)
	// Odd-sized writes must still cut members at exact multiples.
	for rest := data; len(rest) > 0; {
		n := rnd.Intn(7000) + 1
		if n > len(rest) {
			n = len(rest)
		}
		_, err := bw.Write(rest[:n])
		require.NoError(t, err)
		rest = rest[n:]
	}
	require.NoError(t, bw.Close())

	keys := bw.Index().Keys()
	want := make([]int64, 0, len(data)/10000)
	for k := int64(10000); k < int64(len(data)); k += 10000 {
		want = append(want, k)
	}
	assert.Equal(t, want, keys)

	zr, err := NewReader(newMemSource(out.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBlockWriterExactMultiple(t *testing.T) {
	var out bytes.Buffer
	bw, err := NewBlockWriter(&out, 100)
	require.NoError(t, err)
	_, err = bw.Write(bytes.Repeat([]byte("x"), 300))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	// No checkpoint is taken for the block that would start at the end.
	assert.Equal(t, []int64{100, 200}, bw.Index().Keys())
}

func TestSeekOffsetBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	data := corpus(rnd, 50*1000)

	var out bytes.Buffer
	bw, err := NewBlockWriter(&out, 4096)
	require.NoError(t, err)
	_, err = bw.Write(data)
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	zr, err := NewReader(newMemSource(out.Bytes()))
	require.NoError(t, err)

	// Before the first checkpoint the reader decodes from the start.
	require.NoError(t, zr.SeekOffset(10))
	buf := make([]byte, 20)
	_, err = io.ReadFull(zr, buf)
	require.NoError(t, err)
	assert.Equal(t, data[10:30], buf)

	require.NoError(t, zr.SeekOffset(int64(len(data))))
	n, err := zr.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	assert.ErrorIs(t, zr.SeekOffset(int64(len(data))+1), ErrOutOfRange)
	assert.ErrorIs(t, zr.SeekOffset(-1), ErrOutOfRange)
}

func TestRsyncableWriterCuts(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	data := make([]byte, 1<<20)
	rnd.Read(data)

	var out bytes.Buffer
	rw, err := NewRsyncableWriter(&out)
	require.NoError(t, err)
	_, err = rw.Write(data)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	keys := rw.Index().Keys()
	require.NotEmpty(t, keys)
	prev := int64(0)
	for _, k := range keys {
		// Every cut happens after a full window has been summed.
		assert.GreaterOrEqual(t, k-prev, int64(cWINDOW_SIZE))
		prev = k
	}

	// Cuts only depend on the data, not on how it is fed to the writer.
	var out2 bytes.Buffer
	rw2, err := NewRsyncableWriter(&out2)
	require.NoError(t, err)
	for i := 0; i < len(data); i += 777 {
		end := i + 777
		if end > len(data) {
			end = len(data)
		}
		_, err := rw2.Write(data[i:end])
		require.NoError(t, err)
	}
	require.NoError(t, rw2.Close())
	assert.Equal(t, keys, rw2.Index().Keys())
}
