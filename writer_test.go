package gzinga

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const line = "hello, world\n"

// memSource is an in-memory Source that remembers whether it was closed.
type memSource struct {
	*bytes.Reader
	closed bool
}

func newMemSource(data []byte) *memSource {
	return &memSource{Reader: bytes.NewReader(data)}
}

func (m *memSource) Close() error {
	m.closed = true
	return nil
}

// writeLines writes lines copies of line, checkpointing every lines with a
// key counting the checkpoints from 1.
func writeLines(t testing.TB, lines, every int, opts ...Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, opts...)
	require.NoError(t, err)
	for i := 1; i <= lines; i++ {
		_, err := io.WriteString(zw, line)
		require.NoError(t, err)
		if i%every == 0 {
			require.NoError(t, zw.Checkpoint(int64(i/every)))
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type member struct {
	key  int64
	data []byte
}

// writeMembers writes a first chunk with no key, then one checkpoint per
// member followed by its data.
func writeMembers(t testing.TB, first []byte, members []member, opts ...Option) ([]byte, *Index) {
	t.Helper()
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, opts...)
	require.NoError(t, err)
	_, err = zw.Write(first)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, zw.Checkpoint(m.key))
		_, err = zw.Write(m.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes(), zw.Index()
}

func randomMembers(rnd *rand.Rand, n int) ([]byte, []member, []byte) {
	payload := func() []byte {
		b := make([]byte, rnd.Intn(5000))
		for i := range b {
			// Small alphabet so that the data compresses.
			b[i] = byte('a' + rnd.Intn(6))
		}
		return b
	}
	first := payload()
	all := append([]byte{}, first...)
	used := make(map[int64]bool)
	var members []member
	for len(members) < n {
		key := rnd.Int63n(1_000_000) - 500_000
		if used[key] {
			continue
		}
		used[key] = true
		m := member{key: key, data: payload()}
		members = append(members, m)
		all = append(all, m.data...)
	}
	return first, members, all
}

// finalHeaderLen is the size of the header that closes a container.
func finalHeaderLen(ix *Index) int {
	return headerLen + len(ix.String()) + 1
}

func TestWriterRoundTrip(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Log("using seed:", seed)
	rnd := rand.New(rand.NewSource(seed))

	for _, n := range []int{0, 1, 7, 60} {
		first, members, all := randomMembers(rnd, n)
		data, wix := writeMembers(t, first, members)

		zr, err := NewReader(newMemSource(data))
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, all, got)

		ix := zr.Index()
		require.Equal(t, n, ix.Len())
		assert.Equal(t, wix.Entries(), ix.Entries())
		prev := int64(0)
		for i, e := range ix.Entries() {
			assert.Equal(t, members[i].key, e.Key)
			assert.Greater(t, e.Offset, prev)
			assert.Equal(t, headerPattern(defaultOS), data[e.Offset:e.Offset+headerLen])
			prev = e.Offset
		}
	}
}

func TestWriterLines(t *testing.T) {
	data := writeLines(t, 10000, 100)

	zr, err := NewReader(newMemSource(data))
	require.NoError(t, err)
	ix := zr.Index()
	assert.Equal(t, 100, ix.Len())
	assert.True(t, ix.Contains(1))
	assert.True(t, ix.Contains(100))
	assert.False(t, ix.Contains(200))

	remaining := func(key int64) int64 {
		require.NoError(t, zr.Seek(key))
		n, err := io.Copy(io.Discard, zr)
		require.NoError(t, err)
		return n
	}
	at50, at60 := remaining(50), remaining(60)
	assert.Greater(t, at50, at60)
	assert.Equal(t, int64(5000*len(line)), at50)
	assert.Equal(t, int64(4000*len(line)), at60)
	assert.Equal(t, int64(0), remaining(100))
}

func TestWriterGzipCompatible(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	first, members, all := randomMembers(rnd, 20)
	data, ix := writeMembers(t, first, members)

	// Every member but the closing header is an ordinary gzip member.
	body := data[:len(data)-finalHeaderLen(ix)]
	gz, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, all, got)
	assert.Equal(t, ix.String(), gz.Header.Comment)

	tail := data[len(body):]
	assert.Equal(t, headerPattern(defaultOS), tail[:headerLen])
	assert.Equal(t, ix.String(), string(tail[headerLen:len(tail)-1]))
	assert.Equal(t, byte(0), tail[len(tail)-1])
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := NewReader(newMemSource(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, zr.Index().Len())
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriterOS(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, WithOS(osFAT))
	require.NoError(t, err)
	_, err = io.WriteString(zw, line)
	require.NoError(t, err)
	require.NoError(t, zw.Checkpoint(1))
	_, err = io.WriteString(zw, line)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	data := buf.Bytes()
	assert.Equal(t, byte(osFAT), data[headerLen-1])

	zr, err := NewReader(newMemSource(data))
	require.NoError(t, err)
	assert.True(t, zr.Index().Contains(1))
	require.NoError(t, zr.Seek(1))
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, line, string(got))
}

func TestWriterDuplicateKey(t *testing.T) {
	data, ix := writeMembers(t, []byte("a"), []member{
		{key: 1, data: []byte("b")},
		{key: 2, data: []byte("c")},
		{key: 1, data: []byte("d")},
	})
	assert.Equal(t, []int64{1, 2}, ix.Keys())

	zr, err := NewReader(newMemSource(data))
	require.NoError(t, err)
	require.NoError(t, zr.Seek(1))
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "d", string(got))
}

func TestWriterIndexSnapshot(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, zw.Checkpoint(1))
	snap := zw.Index()
	require.NoError(t, zw.Checkpoint(2))
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 2, zw.Index().Len())
	require.NoError(t, zw.Close())
}

func TestWriterCounters(t *testing.T) {
	var buf bytes.Buffer
	m := &BasicMetricsCollector{}
	zw, err := NewWriter(&buf, WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, int64(headerLen+1), zw.Written())

	_, err = io.WriteString(zw, line)
	require.NoError(t, err)
	assert.Equal(t, int64(len(line)), zw.Offset())

	require.NoError(t, zw.Checkpoint(7))
	off, ok := zw.Index().Lookup(7)
	require.True(t, ok)
	// The checkpoint flushes, so everything written is in the sink.
	assert.Equal(t, int64(buf.Len()), zw.Written())
	assert.Equal(t, zw.Written()-int64(finalHeaderLen(zw.Index())), off)

	require.NoError(t, zw.Close())
	assert.Equal(t, int64(1), m.Checkpoints.Load())
	assert.Equal(t, int64(0), m.CheckpointErrors.Load())
	assert.Equal(t, off-int64(headerLen+1), m.MemberBytes.Load())
	assert.Equal(t, int64(finalHeaderLen(zw.Index())), m.HeaderBytes.Load())
}

func TestWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	size := buf.Len()

	_, err = zw.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, zw.Checkpoint(1), ErrClosed)
	assert.ErrorIs(t, zw.Close(), ErrClosed)
	assert.Equal(t, size, buf.Len())
}

type failWriter struct {
	err error
}

func (w failWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestWriterSinkError(t *testing.T) {
	errDisk := errors.New("disk full")
	m := &BasicMetricsCollector{}
	zw, err := NewWriter(failWriter{errDisk}, WithMetrics(m))
	require.NoError(t, err)

	_, err = io.WriteString(zw, line)
	require.NoError(t, err)

	err = zw.Checkpoint(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, int64(1), m.CheckpointErrors.Load())

	// The writer stays broken.
	_, werr := zw.Write([]byte(line))
	assert.Equal(t, err, werr)
	assert.Equal(t, err, zw.Checkpoint(2))
	assert.Equal(t, err, zw.Close())
}

func TestWriterBadLevel(t *testing.T) {
	_, err := NewWriter(io.Discard, WithLevel(42))
	assert.Error(t, err)
}
